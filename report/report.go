// Package report snapshots the flat stores into a SQLite database for
// offline reporting. The flat files stay the system of record; the export
// only reads them and fully rebuilds the report file each time.
package report

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"libraryman/library"
	"libraryman/logging"
)

const schemaVersion = 1

// Summary is the row counts of an exported report database.
type Summary struct {
	Books int
	Loans int
}

// Export writes a fresh report database at path from the given catalog
// entries and ledger blocks. Any previous report file is replaced.
func Export(path string, entries []library.CatalogEntry, blocks []library.LedgerBlock) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old report: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return fmt.Errorf("open report db: %w", err)
	}
	defer db.Close()

	if err := applySchema(db); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	insertBook, err := tx.Prepare(`INSERT INTO books(id,title,author,total_copies,issued_count) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insertBook.Close()
	for _, e := range entries {
		if _, err := insertBook.Exec(e.ID, e.Title, e.Author, e.TotalCopies, e.IssuedCount); err != nil {
			return fmt.Errorf("insert book %s: %w", e.ID, err)
		}
	}

	insertLoan, err := tx.Prepare(`INSERT INTO loans(session,book_id,title,author,issued_at) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insertLoan.Close()
	for _, b := range blocks {
		for _, l := range b.Loans {
			if _, err := insertLoan.Exec(b.Session, l.BookID, l.Title, l.Author, l.IssuedAt.Unix()); err != nil {
				return fmt.Errorf("insert loan %s/%s: %w", b.Session, l.BookID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logging.Infof("exported report to %s", path)
	return nil
}

func applySchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`,
		`CREATE TABLE IF NOT EXISTS books (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            total_copies INTEGER NOT NULL,
            issued_count INTEGER NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS loans (
            session TEXT NOT NULL,
            book_id TEXT NOT NULL REFERENCES books(id),
            title TEXT NOT NULL,
            author TEXT NOT NULL,
            issued_at INTEGER NOT NULL,
            UNIQUE(session, book_id)
        );`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply report schema: %w", err)
		}
	}
	_, err := db.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion)
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// Summarize counts the rows in an exported report database.
func Summarize(path string) (Summary, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return Summary{}, fmt.Errorf("open report db: %w", err)
	}
	defer db.Close()

	var s Summary
	if err := db.QueryRow(`SELECT COUNT(*) FROM books`).Scan(&s.Books); err != nil {
		return Summary{}, err
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM loans`).Scan(&s.Loans); err != nil {
		return Summary{}, err
	}
	return s, nil
}
