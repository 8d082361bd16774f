// Command seed populates the vendor catalog from a fixture table and
// provisions admin accounts out of band. The running application treats
// both stores as read-only (vendor catalog) or verify-only (admin store),
// so this tool is the only writer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"libraryman/auth"
	"libraryman/library"
)

var vendorFixtures = []library.VendorEntry{
	{ID: "V001", Title: "1984", Author: "George Orwell", Vendor: "Harcourt Books"},
	{ID: "V002", Title: "Animal Farm", Author: "George Orwell", Vendor: "Harcourt Books"},
	{ID: "V003", Title: "The Art of War", Author: "Sun Tzu", Vendor: "Everyman Press"},
	{ID: "V004", Title: "The Fellowship of the Ring", Author: "J.R.R. Tolkien", Vendor: "Allen and Unwin"},
	{ID: "V005", Title: "The Two Towers", Author: "J.R.R. Tolkien", Vendor: "Allen and Unwin"},
	{ID: "V006", Title: "The Return of the King", Author: "J.R.R. Tolkien", Vendor: "Allen and Unwin"},
	{ID: "V007", Title: "Romeo and Juliet", Author: "William Shakespeare", Vendor: "Everyman Press"},
	{ID: "V008", Title: "The Three Musketeers", Author: "Alexandre Dumas", Vendor: "Everyman Press"},
	{ID: "V009", Title: "The Diary of a Young Girl", Author: "Anne Frank", Vendor: "Contact Publishing"},
	{ID: "V010", Title: "The Three Little Pigs", Author: "Traditional", Vendor: "Everyman Press"},
}

func main() {
	dataDir := flag.String("data", "./data", "data directory holding the store files")
	admin := flag.String("admin", "", "admin account to provision, as user:password")
	skipVendors := flag.Bool("skip-vendors", false, "do not seed the vendor catalog")
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating data dir: %v\n", err)
		os.Exit(1)
	}

	if !*skipVendors {
		vendors := library.NewVendors(filepath.Join(*dataDir, "vendors.txt"))

		fmt.Println("Seeding vendor catalog...")
		seeded, skipped, err := seedVendors(vendors, vendorFixtures)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding vendors: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Vendor catalog: %d seeded, %d skipped.\n", seeded, skipped)
	}

	if *admin != "" {
		username, password, ok := strings.Cut(*admin, ":")
		if !ok {
			fmt.Fprintln(os.Stderr, "Error: -admin expects user:password")
			os.Exit(1)
		}
		mgr := auth.NewManager(
			filepath.Join(*dataDir, "users.txt"),
			filepath.Join(*dataDir, "admins.txt"),
			filepath.Join(*dataDir, "session.txt"),
		)
		if err := mgr.EnsureStores(); err != nil {
			fmt.Fprintf(os.Stderr, "Error preparing stores: %v\n", err)
			os.Exit(1)
		}
		if err := mgr.SeedAdmin(username, password); err != nil {
			fmt.Fprintf(os.Stderr, "Error provisioning admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Provisioned admin account %s.\n", username)
	}
}

// seedVendors appends every fixture not already present. A missing vendor
// file is a fresh install and starts empty; any other read failure (a corrupt
// file included) aborts instead of re-appending duplicates over it.
func seedVendors(vendors *library.Vendors, fixtures []library.VendorEntry) (seeded, skipped int, err error) {
	existing := map[string]bool{}
	all, err := vendors.All()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, 0, fmt.Errorf("read vendor catalog: %w", err)
	}
	for _, e := range all {
		existing[e.ID] = true
	}

	for _, entry := range fixtures {
		if existing[entry.ID] {
			fmt.Printf("Skipping %s (%s): already present\n", entry.ID, entry.Title)
			skipped++
			continue
		}
		if err := vendors.Seed([]library.VendorEntry{entry}); err != nil {
			return seeded, skipped, fmt.Errorf("seed %s: %w", entry.ID, err)
		}
		fmt.Printf("Seeded %s: %s by %s (%s)\n", entry.ID, entry.Title, entry.Author, entry.Vendor)
		seeded++
	}
	return seeded, skipped, nil
}
