package library

import "time"

// CatalogEntry is one book title in the catalog with its copy counts.
type CatalogEntry struct {
	ID          string
	Title       string
	Author      string
	TotalCopies int
	IssuedCount int
}

// Available reports whether at least one copy can still be issued.
func (e CatalogEntry) Available() bool { return e.TotalCopies > e.IssuedCount }

// Loan is one checked-out book inside a ledger block.
type Loan struct {
	BookID   string
	Title    string
	Author   string
	IssuedAt time.Time
}

// LedgerBlock holds every book currently checked out under one session
// token. A block with zero loans is never written back to the ledger.
type LedgerBlock struct {
	Session string
	Loans   []Loan
}

// Loan returns the loan for bookID, if present.
func (b LedgerBlock) Loan(bookID string) (Loan, bool) {
	for _, l := range b.Loans {
		if l.BookID == bookID {
			return l, true
		}
	}
	return Loan{}, false
}

// VendorEntry is one title offered by a vendor, purchasable into the
// catalog. The vendor catalog is read-only at runtime.
type VendorEntry struct {
	ID     string
	Title  string
	Author string
	Vendor string
}
