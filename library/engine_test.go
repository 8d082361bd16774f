package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"libraryman/store"
)

func tempEngine(t *testing.T, entries ...CatalogEntry) *Engine {
	t.Helper()
	dir := t.TempDir()
	catalog := NewCatalog(filepath.Join(dir, "catalog.txt"))
	ledger := NewLedger(filepath.Join(dir, "ledger.txt"))
	vendors := NewVendors(filepath.Join(dir, "vendors.txt"))
	for _, s := range []interface{ EnsureExists() error }{catalog, ledger, vendors} {
		if err := s.EnsureExists(); err != nil {
			t.Fatalf("ensure exists: %v", err)
		}
	}
	for _, e := range entries {
		if err := catalog.add(e); err != nil {
			t.Fatalf("add %s: %v", e.ID, err)
		}
	}
	return NewEngine(catalog, ledger, vendors, 0)
}

func TestIssueAndReturn(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 2})

	if err := e.Issue("S1", "B1"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	entry, err := e.catalog.Get("B1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.IssuedCount != 1 {
		t.Fatalf("issued count = %d, want 1", entry.IssuedCount)
	}

	block, err := e.ledger.Block("S1")
	if err != nil {
		t.Fatalf("block: %v", err)
	}
	loan, ok := block.Loan("B1")
	if !ok {
		t.Fatalf("ledger should hold the loan")
	}
	if loan.Title != "1984" || loan.Author != "George Orwell" {
		t.Fatalf("loan should copy title and author, got %+v", loan)
	}

	if err := e.Return("S1", "B1"); err != nil {
		t.Fatalf("return: %v", err)
	}
	entry, _ = e.catalog.Get("B1")
	if entry.IssuedCount != 0 {
		t.Fatalf("return should restore issued count, got %d", entry.IssuedCount)
	}
	if _, err := e.ledger.Block("S1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("empty block should be removed, got %v", err)
	}
}

func TestIssueConflictAndUnavailable(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1})

	if err := e.Issue("S1", "B1"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Same pair again: conflict.
	if err := e.Issue("S1", "B1"); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	// Another session, no copies left: unavailable, and both stores stay
	// untouched.
	if err := e.Issue("S2", "B1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("want ErrUnavailable, got %v", err)
	}
	entry, _ := e.catalog.Get("B1")
	if entry.IssuedCount != 1 {
		t.Fatalf("failed issue must not change the catalog, got %d", entry.IssuedCount)
	}
	if _, err := e.ledger.Block("S2"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("failed issue must not create a ledger block, got %v", err)
	}
}

func TestIssueUnknownBook(t *testing.T) {
	e := tempEngine(t)
	if err := e.Issue("S1", "B9"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestReturnWithoutLoan(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1})
	if err := e.Return("S1", "B1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

// TestCirculationScenario walks the full single-copy circulation flow: one
// session holds the only copy, a second session is refused until the first
// returns it.
func TestCirculationScenario(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1})

	if err := e.Issue("S1", "B1"); err != nil {
		t.Fatalf("S1 issue: %v", err)
	}
	if err := e.Issue("S2", "B1"); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("S2 should be refused, got %v", err)
	}
	if err := e.Return("S1", "B1"); err != nil {
		t.Fatalf("S1 return: %v", err)
	}
	if err := e.Issue("S2", "B1"); err != nil {
		t.Fatalf("S2 issue after return: %v", err)
	}

	entry, _ := e.catalog.Get("B1")
	if entry.IssuedCount != 1 {
		t.Fatalf("issued count = %d, want 1", entry.IssuedCount)
	}
	if _, err := e.ledger.Block("S1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("S1 block should be gone")
	}
	if block, err := e.ledger.Block("S2"); err != nil || len(block.Loans) != 1 {
		t.Fatalf("S2 block should hold the loan: %v %+v", err, block)
	}
}

func TestDueBooks(t *testing.T) {
	e := tempEngine(t,
		CatalogEntry{ID: "B1", Title: "Old", Author: "A", TotalCopies: 1},
		CatalogEntry{ID: "B2", Title: "Recent", Author: "A", TotalCopies: 1},
	)

	base := time.Now()
	// First issue happens 16 days ago, the second one yesterday.
	e.now = func() time.Time { return base.Add(-16 * 24 * time.Hour) }
	if err := e.Issue("S1", "B1"); err != nil {
		t.Fatalf("issue old: %v", err)
	}
	e.now = func() time.Time { return base.Add(-24 * time.Hour) }
	if err := e.Issue("S1", "B2"); err != nil {
		t.Fatalf("issue recent: %v", err)
	}

	e.now = func() time.Time { return base }
	due, err := e.DueBooks("S1")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].BookID != "B1" {
		t.Fatalf("only the 16-day-old loan is due, got %+v", due)
	}

	// A session with no block has nothing due.
	none, err := e.DueBooks("S9")
	if err != nil || len(none) != 0 {
		t.Fatalf("want empty due list, got %v %+v", err, none)
	}
}

func TestPurchase(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1})
	if err := e.vendors.Seed([]VendorEntry{
		{ID: "V1", Title: "Animal Farm", Author: "George Orwell", Vendor: "Harcourt Books"},
	}); err != nil {
		t.Fatalf("seed vendors: %v", err)
	}

	entry, err := e.Purchase("V1", "B2", 4)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if entry.Title != "Animal Farm" || entry.TotalCopies != 4 || entry.IssuedCount != 0 {
		t.Fatalf("unexpected entry %+v", entry)
	}

	got, err := e.catalog.Get("B2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != entry {
		t.Fatalf("catalog should hold the purchased entry, got %+v", got)
	}

	// Unknown vendor id.
	if _, err := e.Purchase("V9", "B3", 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	// Existing catalog id.
	if _, err := e.Purchase("V1", "B1", 1); !errors.Is(err, ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
	// Bad quantity.
	if _, err := e.Purchase("V1", "B3", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
}

// TestPurchaseRejectsUnstorableIDs covers ids that cannot occupy a single
// catalog line: written as-is they would corrupt the file for every later
// read, so they must be refused before anything is written.
func TestPurchaseRejectsUnstorableIDs(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1})
	if err := e.vendors.Seed([]VendorEntry{
		{ID: "V1", Title: "Animal Farm", Author: "George Orwell", Vendor: "Harcourt Books"},
	}); err != nil {
		t.Fatalf("seed vendors: %v", err)
	}

	for _, id := range []string{"", "B\n2", "B\r2", "B\n2\n3"} {
		if _, err := e.Purchase("V1", id, 1); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("id %q: want ErrInvalidInput, got %v", id, err)
		}
	}

	// Nothing was written: both stores decode cleanly and the catalog still
	// holds exactly its original entry.
	entries, err := e.catalog.All()
	if err != nil {
		t.Fatalf("catalog must stay readable: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "B1" {
		t.Fatalf("rejected purchases must not touch the catalog, got %+v", entries)
	}
	if _, err := e.ledger.All(); err != nil {
		t.Fatalf("ledger must stay readable: %v", err)
	}
}

func TestPartialTransactionHaltsEngine(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 1})

	// Force the catalog half of the transaction to fail after the ledger
	// half landed by deleting the catalog entry behind the engine's back
	// between the availability check and the count rewrite. Simplest
	// equivalent: drop the entry, then drive the rewrite directly.
	if err := e.ledger.addLoan("S1", Loan{BookID: "B1", Title: "1984", Author: "George Orwell", IssuedAt: time.Now()}); err != nil {
		t.Fatalf("add loan: %v", err)
	}
	err := e.halt("issue", "B1", errors.New("disk full"))

	var pt *PartialTransactionError
	if !errors.As(err, &pt) {
		t.Fatalf("want PartialTransactionError, got %v", err)
	}
	if e.Halted() == nil {
		t.Fatalf("engine should report the halt")
	}

	// Every further mutation is refused with the same error.
	if err := e.Issue("S2", "B1"); !errors.As(err, &pt) {
		t.Fatalf("issue after halt: want PartialTransactionError, got %v", err)
	}
	if err := e.Return("S1", "B1"); !errors.As(err, &pt) {
		t.Fatalf("return after halt: want PartialTransactionError, got %v", err)
	}
	if _, err := e.Purchase("V1", "B2", 1); !errors.As(err, &pt) {
		t.Fatalf("purchase after halt: want PartialTransactionError, got %v", err)
	}
}

// TestHaltedDuringMutations reads the halt state concurrently with issues;
// run with -race, this catches any unsynchronized access to it.
func TestHaltedDuringMutations(t *testing.T) {
	e := tempEngine(t, CatalogEntry{ID: "B1", Title: "1984", Author: "George Orwell", TotalCopies: 4})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		session := fmt.Sprintf("S%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := e.Issue(session, "B1"); err != nil {
				t.Errorf("issue for %s: %v", session, err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = e.Halted()
		}()
	}
	wg.Wait()

	if err := e.Halted(); err != nil {
		t.Fatalf("no transaction failed, engine must not be halted: %v", err)
	}
	entry, _ := e.catalog.Get("B1")
	if entry.IssuedCount != 4 {
		t.Fatalf("issued count = %d, want 4", entry.IssuedCount)
	}
}

// TestMultiBookLedger checks block growth and shrink across several loans.
func TestMultiBookLedger(t *testing.T) {
	e := tempEngine(t,
		CatalogEntry{ID: "B1", Title: "One", Author: "A", TotalCopies: 1},
		CatalogEntry{ID: "B2", Title: "Two", Author: "A", TotalCopies: 1},
		CatalogEntry{ID: "B3", Title: "Three", Author: "A", TotalCopies: 1},
	)

	for _, id := range []string{"B1", "B2", "B3"} {
		if err := e.Issue("S1", id); err != nil {
			t.Fatalf("issue %s: %v", id, err)
		}
	}

	block, err := e.ledger.Block("S1")
	if err != nil || len(block.Loans) != 3 {
		t.Fatalf("want 3 loans, got %v %+v", err, block)
	}

	// Return the middle one; the other two stay in order.
	if err := e.Return("S1", "B2"); err != nil {
		t.Fatalf("return B2: %v", err)
	}
	block, _ = e.ledger.Block("S1")
	if len(block.Loans) != 2 || block.Loans[0].BookID != "B1" || block.Loans[1].BookID != "B3" {
		t.Fatalf("unexpected loans %+v", block.Loans)
	}
}
