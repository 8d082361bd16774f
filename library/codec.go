package library

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"libraryman/store"
)

// singleLine refuses field values that would span or terminate a line group
// once written, leaving the store undecodable.
func singleLine(field, v string) error {
	if strings.ContainsAny(v, "\n\r") {
		return fmt.Errorf("%s %q must not contain line breaks", field, v)
	}
	return nil
}

// catalogCodec maps a CatalogEntry to its 5-line group:
// id, title, author, total copies, issued count.
type catalogCodec struct{}

func (catalogCodec) Decode(r *store.LineReader) (CatalogEntry, error) {
	g, err := store.ReadGroup(r, 5)
	if err != nil {
		return CatalogEntry{}, err
	}
	total, err := strconv.Atoi(g[3])
	if err != nil {
		return CatalogEntry{}, store.Corruptf(r, "total copies %q is not a number", g[3])
	}
	issued, err := strconv.Atoi(g[4])
	if err != nil {
		return CatalogEntry{}, store.Corruptf(r, "issued count %q is not a number", g[4])
	}
	return CatalogEntry{ID: g[0], Title: g[1], Author: g[2], TotalCopies: total, IssuedCount: issued}, nil
}

func (catalogCodec) Encode(w io.Writer, e CatalogEntry) error {
	for _, f := range [][2]string{{"catalog id", e.ID}, {"title", e.Title}, {"author", e.Author}} {
		if err := singleLine(f[0], f[1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n%d\n%d\n", e.ID, e.Title, e.Author, e.TotalCopies, e.IssuedCount)
	return err
}

// vendorCodec maps a VendorEntry to its 4-line group:
// id, title, author, vendor name.
type vendorCodec struct{}

func (vendorCodec) Decode(r *store.LineReader) (VendorEntry, error) {
	g, err := store.ReadGroup(r, 4)
	if err != nil {
		return VendorEntry{}, err
	}
	return VendorEntry{ID: g[0], Title: g[1], Author: g[2], Vendor: g[3]}, nil
}

func (vendorCodec) Encode(w io.Writer, e VendorEntry) error {
	for _, f := range [][2]string{{"vendor id", e.ID}, {"title", e.Title}, {"author", e.Author}, {"vendor", e.Vendor}} {
		if err := singleLine(f[0], f[1]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n%s\n", e.ID, e.Title, e.Author, e.Vendor)
	return err
}

// ledgerCodec maps a LedgerBlock to its variable-length group: one session
// token line, then four lines per loan (book id, title, author, issue epoch
// seconds), terminated by a blank line. A final block may end at EOF without
// its separator.
type ledgerCodec struct{}

func (ledgerCodec) Decode(r *store.LineReader) (LedgerBlock, error) {
	session, err := r.Next()
	if err != nil {
		return LedgerBlock{}, err
	}
	if session == "" {
		return LedgerBlock{}, store.Corruptf(r, "empty session token line")
	}
	block := LedgerBlock{Session: session}
	for {
		line, err := r.Next()
		if err == io.EOF {
			return block, nil
		}
		if err != nil {
			return LedgerBlock{}, err
		}
		if line == "" {
			return block, nil
		}
		g, err := store.ReadGroup(r, 3)
		if err == io.EOF {
			return LedgerBlock{}, store.Corruptf(r, "loan record truncated after book id %q", line)
		}
		if err != nil {
			return LedgerBlock{}, err
		}
		epoch, err := strconv.ParseInt(g[2], 10, 64)
		if err != nil {
			return LedgerBlock{}, store.Corruptf(r, "issue time %q is not a number", g[2])
		}
		block.Loans = append(block.Loans, Loan{
			BookID:   line,
			Title:    g[0],
			Author:   g[1],
			IssuedAt: time.Unix(epoch, 0),
		})
	}
}

func (ledgerCodec) Encode(w io.Writer, b LedgerBlock) error {
	// Validate the whole block before the first write so a refusal never
	// leaves a partial group behind.
	if b.Session == "" {
		return fmt.Errorf("session token must not be empty")
	}
	if err := singleLine("session token", b.Session); err != nil {
		return err
	}
	for _, l := range b.Loans {
		// A blank book-id line would read back as the block terminator.
		if l.BookID == "" {
			return fmt.Errorf("book id must not be empty")
		}
		for _, f := range [][2]string{{"book id", l.BookID}, {"title", l.Title}, {"author", l.Author}} {
			if err := singleLine(f[0], f[1]); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "%s\n", b.Session); err != nil {
		return err
	}
	for _, l := range b.Loans {
		if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n%d\n", l.BookID, l.Title, l.Author, l.IssuedAt.Unix()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
