package library

import (
	"fmt"
	"strings"

	"libraryman/store"
)

// Catalog is the flat-file store of CatalogEntry records.
type Catalog struct {
	store *store.Store[CatalogEntry]
}

// NewCatalog builds a catalog over the store file at path.
func NewCatalog(path string) *Catalog {
	return &Catalog{store: store.New(path, catalogCodec{})}
}

// EnsureExists creates an empty catalog file on first run.
func (c *Catalog) EnsureExists() error { return c.store.EnsureExists() }

// Get returns the entry with the given id, or ErrNotFound.
func (c *Catalog) Get(id string) (CatalogEntry, error) {
	entry, err := c.store.Find(func(e CatalogEntry) bool { return e.ID == id })
	if err == store.ErrNotFound {
		return CatalogEntry{}, fmt.Errorf("catalog entry %s: %w", id, store.ErrNotFound)
	}
	return entry, err
}

// All returns every entry in file order.
func (c *Catalog) All() ([]CatalogEntry, error) { return c.store.ReadAll() }

// Search returns the entries where keyword is a contiguous substring of the
// id, title, or author field, case-sensitive, in file order. The empty
// keyword matches every entry.
func (c *Catalog) Search(keyword string) ([]CatalogEntry, error) {
	return c.store.FindAll(func(e CatalogEntry) bool {
		return strings.Contains(e.ID, keyword) ||
			strings.Contains(e.Title, keyword) ||
			strings.Contains(e.Author, keyword)
	})
}

// add appends a new entry. The caller checks id uniqueness first.
func (c *Catalog) add(e CatalogEntry) error { return c.store.Append(e) }

// adjustIssued rewrites the entry for id with its issued count moved by
// delta, clamped at zero. Only the engine calls this.
func (c *Catalog) adjustIssued(id string, delta int) error {
	return c.store.Rewrite(func(entries []CatalogEntry) ([]CatalogEntry, error) {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			n := entries[i].IssuedCount + delta
			if n < 0 {
				n = 0
			}
			entries[i].IssuedCount = n
			return entries, nil
		}
		return nil, fmt.Errorf("catalog entry %s: %w", id, store.ErrNotFound)
	})
}
