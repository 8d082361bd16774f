package library

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"libraryman/logging"
)

// DefaultDueThreshold is how long a book may stay out before it counts as
// due: 15 days.
const DefaultDueThreshold = 1_296_000 * time.Second

// Engine coordinates the issue ledger and the catalog so that issue, return,
// and purchase behave as single logical operations. It is the only component
// allowed to mutate issued counts or ledger blocks.
//
// The two stores have no shared rollback, so the engine orders every
// transaction ledger-first and catalog-second. If the catalog write fails
// after the ledger write landed, the engine records a PartialTransactionError
// and refuses all further mutation for the life of the process; the operator
// reconciles the two files by hand.
type Engine struct {
	catalog *Catalog
	ledger  *Ledger
	vendors *Vendors

	dueAfter time.Duration
	now      func() time.Time

	// mu spans both stores for the duration of a transaction, so an
	// interleaved issue/return can never observe one store updated and the
	// other not. Each store additionally holds its own lock for its
	// read-transform-write window.
	mu     sync.Mutex
	halted error
}

// NewEngine wires the engine over its three stores. dueAfter <= 0 selects
// DefaultDueThreshold.
func NewEngine(catalog *Catalog, ledger *Ledger, vendors *Vendors, dueAfter time.Duration) *Engine {
	if dueAfter <= 0 {
		dueAfter = DefaultDueThreshold
	}
	return &Engine{
		catalog:  catalog,
		ledger:   ledger,
		vendors:  vendors,
		dueAfter: dueAfter,
		now:      time.Now,
	}
}

// Halted returns the sticky PartialTransactionError if one has occurred.
func (e *Engine) Halted() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.halted
}

// Issue checks bookID out to session: the session's ledger block gains a
// loan line and the catalog entry's issued count goes up by one.
func (e *Engine) Issue(session, bookID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.halted != nil {
		return e.halted
	}

	block, err := e.ledger.Block(session)
	if err != nil && !isNotFound(err) {
		return err
	}
	if _, ok := block.Loan(bookID); ok {
		return fmt.Errorf("book %s already issued to this session: %w", bookID, ErrConflict)
	}

	entry, err := e.catalog.Get(bookID)
	if err != nil {
		return err
	}
	if !entry.Available() {
		return fmt.Errorf("book %s: %w", bookID, ErrUnavailable)
	}

	loan := Loan{BookID: entry.ID, Title: entry.Title, Author: entry.Author, IssuedAt: e.now()}
	if err := e.ledger.addLoan(session, loan); err != nil {
		return err
	}
	if err := e.catalog.adjustIssued(bookID, +1); err != nil {
		return e.halt("issue", bookID, err)
	}
	logging.Infof("issued book %s", bookID)
	return nil
}

// Return checks bookID back in for session: the loan line leaves the ledger
// (the whole block, if it was the last loan) and the catalog entry's issued
// count goes down by one, never below zero.
func (e *Engine) Return(session, bookID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.halted != nil {
		return e.halted
	}

	if err := e.ledger.removeLoan(session, bookID); err != nil {
		return err
	}
	if err := e.catalog.adjustIssued(bookID, -1); err != nil {
		return e.halt("return", bookID, err)
	}
	logging.Infof("returned book %s", bookID)
	return nil
}

// DueBooks returns the session's loans older than the due threshold. Pure
// read; a session with no block has nothing due.
func (e *Engine) DueBooks(session string) ([]Loan, error) {
	block, err := e.ledger.Block(session)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	now := e.now()
	var due []Loan
	for _, loan := range block.Loans {
		if now.Sub(loan.IssuedAt) > e.dueAfter {
			due = append(due, loan)
		}
	}
	return due, nil
}

// Purchase copies a vendor offering into the catalog as a new entry with
// quantity copies and nothing issued.
func (e *Engine) Purchase(vendorID, newID string, quantity int) (CatalogEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.halted != nil {
		return CatalogEntry{}, e.halted
	}
	if quantity < 1 {
		return CatalogEntry{}, fmt.Errorf("quantity must be at least 1: %w", ErrInvalidInput)
	}
	// The id becomes a line of the catalog file; anything that cannot occupy
	// exactly one line would make the store undecodable.
	if newID == "" || strings.ContainsAny(newID, "\n\r") {
		return CatalogEntry{}, fmt.Errorf("catalog id %q must be a single non-empty line: %w", newID, ErrInvalidInput)
	}

	offer, err := e.vendors.Get(vendorID)
	if err != nil {
		return CatalogEntry{}, err
	}
	if _, err := e.catalog.Get(newID); err == nil {
		return CatalogEntry{}, fmt.Errorf("catalog id %s already exists: %w", newID, ErrConflict)
	} else if !isNotFound(err) {
		return CatalogEntry{}, err
	}

	entry := CatalogEntry{ID: newID, Title: offer.Title, Author: offer.Author, TotalCopies: quantity}
	if err := e.catalog.add(entry); err != nil {
		return CatalogEntry{}, err
	}
	logging.Infof("purchased %d copies of %s from %s as %s", quantity, offer.Title, offer.Vendor, newID)
	return entry, nil
}

// halt records a partial transaction and poisons the engine.
func (e *Engine) halt(op, bookID string, err error) error {
	pt := &PartialTransactionError{Op: op, BookID: bookID, Err: err}
	e.halted = pt
	logging.Errorf("%v; further mutation disabled until the stores are reconciled", pt)
	return pt
}
