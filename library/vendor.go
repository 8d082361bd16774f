package library

import (
	"fmt"

	"libraryman/store"
)

// Vendors is the read-only flat-file store of vendor offerings. The file is
// populated offline by the seed tool; the application only reads it.
type Vendors struct {
	store *store.Store[VendorEntry]
}

// NewVendors builds the vendor catalog over the store file at path.
func NewVendors(path string) *Vendors {
	return &Vendors{store: store.New(path, vendorCodec{})}
}

// EnsureExists creates an empty vendor file on first run.
func (v *Vendors) EnsureExists() error { return v.store.EnsureExists() }

// Get returns the vendor entry with the given id, or ErrNotFound.
func (v *Vendors) Get(id string) (VendorEntry, error) {
	entry, err := v.store.Find(func(e VendorEntry) bool { return e.ID == id })
	if err == store.ErrNotFound {
		return VendorEntry{}, fmt.Errorf("vendor entry %s: %w", id, store.ErrNotFound)
	}
	return entry, err
}

// All returns every vendor entry in file order.
func (v *Vendors) All() ([]VendorEntry, error) { return v.store.ReadAll() }

// Seed appends entries to the vendor file. Offline tooling only; nothing in
// the running application writes the vendor catalog.
func (v *Vendors) Seed(entries []VendorEntry) error {
	if err := v.store.EnsureExists(); err != nil {
		return err
	}
	for _, e := range entries {
		if err := v.store.Append(e); err != nil {
			return err
		}
	}
	return nil
}
