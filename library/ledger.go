package library

import (
	"fmt"

	"libraryman/store"
)

// Ledger is the flat-file store of per-session checkout blocks.
type Ledger struct {
	store *store.Store[LedgerBlock]
}

// NewLedger builds the issue ledger over the store file at path.
func NewLedger(path string) *Ledger {
	return &Ledger{store: store.New(path, ledgerCodec{})}
}

// EnsureExists creates an empty ledger file on first run.
func (l *Ledger) EnsureExists() error { return l.store.EnsureExists() }

// Block returns the checkout block for session, or ErrNotFound when the
// session has no books out.
func (l *Ledger) Block(session string) (LedgerBlock, error) {
	block, err := l.store.Find(func(b LedgerBlock) bool { return b.Session == session })
	if err == store.ErrNotFound {
		return LedgerBlock{}, fmt.Errorf("ledger block for session: %w", store.ErrNotFound)
	}
	return block, err
}

// HasLoans reports whether session has any books out.
func (l *Ledger) HasLoans(session string) (bool, error) {
	_, err := l.Block(session)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// All returns every block in file order.
func (l *Ledger) All() ([]LedgerBlock, error) { return l.store.ReadAll() }

// addLoan extends the session's block with loan, creating the block on the
// session's first issue. A duplicate (session, book) pair is ErrConflict;
// the ledger never holds two loans for the same pair.
func (l *Ledger) addLoan(session string, loan Loan) error {
	return l.store.Rewrite(func(blocks []LedgerBlock) ([]LedgerBlock, error) {
		for i := range blocks {
			if blocks[i].Session != session {
				continue
			}
			if _, ok := blocks[i].Loan(loan.BookID); ok {
				return nil, fmt.Errorf("book %s already issued to this session: %w", loan.BookID, ErrConflict)
			}
			blocks[i].Loans = append(blocks[i].Loans, loan)
			return blocks, nil
		}
		return append(blocks, LedgerBlock{Session: session, Loans: []Loan{loan}}), nil
	})
}

// removeLoan deletes the loan for (session, bookID), dropping the whole
// block when it becomes empty. Missing pair is ErrNotFound.
func (l *Ledger) removeLoan(session, bookID string) error {
	return l.store.Rewrite(func(blocks []LedgerBlock) ([]LedgerBlock, error) {
		for i := range blocks {
			if blocks[i].Session != session {
				continue
			}
			for j, loan := range blocks[i].Loans {
				if loan.BookID != bookID {
					continue
				}
				blocks[i].Loans = append(blocks[i].Loans[:j], blocks[i].Loans[j+1:]...)
				if len(blocks[i].Loans) == 0 {
					blocks = append(blocks[:i], blocks[i+1:]...)
				}
				return blocks, nil
			}
		}
		return nil, fmt.Errorf("no loan of %s for this session: %w", bookID, store.ErrNotFound)
	})
}
