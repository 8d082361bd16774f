package library

import (
	"errors"
	"path/filepath"
	"testing"

	"libraryman/store"
)

func tempCatalog(t *testing.T, entries ...CatalogEntry) *Catalog {
	t.Helper()
	c := NewCatalog(filepath.Join(t.TempDir(), "catalog.txt"))
	if err := c.EnsureExists(); err != nil {
		t.Fatalf("ensure exists: %v", err)
	}
	for _, e := range entries {
		if err := c.add(e); err != nil {
			t.Fatalf("add %s: %v", e.ID, err)
		}
	}
	return c
}

func TestCatalogGet(t *testing.T) {
	c := tempCatalog(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 3})

	e, err := c.Get("B1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.Title != "1984" || e.TotalCopies != 3 || e.IssuedCount != 0 {
		t.Fatalf("unexpected entry %+v", e)
	}

	if _, err := c.Get("B9"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSearchSemantics(t *testing.T) {
	c := tempCatalog(t,
		CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1},
		CatalogEntry{ID: "B2", Title: "Animal Farm", Author: "George Orwell", TotalCopies: 1},
		CatalogEntry{ID: "B3", Title: "The Art of War", Author: "Sun Tzu", TotalCopies: 1},
	)

	// Empty keyword returns everything in file order.
	all, err := c.Search("")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(all) != 3 || all[0].ID != "B1" || all[2].ID != "B3" {
		t.Fatalf("empty search should return file order, got %+v", all)
	}

	// Author substring.
	orwell, err := c.Search("Orwell")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(orwell) != 2 {
		t.Fatalf("want 2 Orwell entries, got %d", len(orwell))
	}

	// Case-sensitive: no match for lowercase.
	if got, _ := c.Search("orwell"); len(got) != 0 {
		t.Fatalf("search is case-sensitive, got %+v", got)
	}

	// Id substring.
	if got, _ := c.Search("B3"); len(got) != 1 || got[0].Title != "The Art of War" {
		t.Fatalf("id search failed: %+v", got)
	}

	// Title substring spanning one field only.
	if got, _ := c.Search("Art"); len(got) != 1 {
		t.Fatalf("title search failed: %+v", got)
	}
}

func TestAvailability(t *testing.T) {
	e := CatalogEntry{ID: "B1", TotalCopies: 2, IssuedCount: 1}
	if !e.Available() {
		t.Fatalf("one copy left should be available")
	}
	e.IssuedCount = 2
	if e.Available() {
		t.Fatalf("all copies out should be unavailable")
	}
}
