package main

import (
	"os"
	"path/filepath"
	"testing"

	"libraryman/library"
)

var testFixtures = []library.VendorEntry{
	{ID: "V001", Title: "1984", Author: "George Orwell", Vendor: "Harcourt Books"},
	{ID: "V002", Title: "Animal Farm", Author: "George Orwell", Vendor: "Harcourt Books"},
}

func TestSeedVendorsFreshFile(t *testing.T) {
	vendors := library.NewVendors(filepath.Join(t.TempDir(), "vendors.txt"))

	seeded, skipped, err := seedVendors(vendors, testFixtures)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 2 || skipped != 0 {
		t.Fatalf("want 2 seeded, 0 skipped; got %d/%d", seeded, skipped)
	}

	all, err := vendors.All()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("want 2 entries, got %d", len(all))
	}
}

func TestSeedVendorsSkipsExisting(t *testing.T) {
	vendors := library.NewVendors(filepath.Join(t.TempDir(), "vendors.txt"))
	if err := vendors.Seed(testFixtures[:1]); err != nil {
		t.Fatalf("pre-seed: %v", err)
	}

	seeded, skipped, err := seedVendors(vendors, testFixtures)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 1 || skipped != 1 {
		t.Fatalf("want 1 seeded, 1 skipped; got %d/%d", seeded, skipped)
	}

	all, err := vendors.All()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("re-running the seeder must not duplicate entries, got %d", len(all))
	}
}

func TestSeedVendorsCorruptFileAborts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendors.txt")
	// Truncated group: not a multiple of four lines.
	if err := os.WriteFile(path, []byte("V001\n1984\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if _, _, err := seedVendors(library.NewVendors(path), testFixtures); err == nil {
		t.Fatalf("a corrupt vendor file must abort seeding, not read as empty")
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatalf("aborted seeding must not append to the corrupt file")
	}
}
