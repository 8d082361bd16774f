package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libraryman/auth"
	"libraryman/config"
	"libraryman/library"
)

// App bundles the wired components behind every command.
type App struct {
	cfg     config.Config
	auth    *auth.Manager
	catalog *library.Catalog
	ledger  *library.Ledger
	vendors *library.Vendors
	engine  *library.Engine
}

// openApp loads configuration, creates any missing store files, and wires
// the credential manager and transaction engine.
func openApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(cmd, cfgFile)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	app := &App{
		cfg: cfg,
		auth: auth.NewManager(
			cfg.StorePath(cfg.Stores.Users),
			cfg.StorePath(cfg.Stores.Admins),
			cfg.StorePath(cfg.Stores.Session),
		),
		catalog: library.NewCatalog(cfg.StorePath(cfg.Stores.Catalog)),
		ledger:  library.NewLedger(cfg.StorePath(cfg.Stores.Ledger)),
		vendors: library.NewVendors(cfg.StorePath(cfg.Stores.Vendors)),
	}
	if err := app.auth.EnsureStores(); err != nil {
		return nil, err
	}
	if err := app.catalog.EnsureExists(); err != nil {
		return nil, err
	}
	if err := app.ledger.EnsureExists(); err != nil {
		return nil, err
	}
	if err := app.vendors.EnsureExists(); err != nil {
		return nil, err
	}
	app.engine = library.NewEngine(app.catalog, app.ledger, app.vendors,
		time.Duration(cfg.Loan.DueSeconds)*time.Second)
	return app, nil
}

// session resolves the active session or explains how to get one.
func (a *App) session() (auth.Session, error) {
	sess, err := a.auth.CurrentSession()
	if err != nil {
		return auth.Session{}, fmt.Errorf("%w (use 'login' first)", err)
	}
	return sess, nil
}

// readPassword securely reads a password with masking.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // newline after masked input
	return strings.TrimSpace(string(bytePassword)), nil
}

func printBooks(entries []library.CatalogEntry) {
	if len(entries) == 0 {
		fmt.Println("No books found.")
		return
	}
	fmt.Printf("%-10s %-35s %-25s %-8s %-8s\n", "ID", "Title", "Author", "Copies", "Out")
	fmt.Println(strings.Repeat("-", 90))
	for _, e := range entries {
		fmt.Printf("%-10s %-35s %-25s %-8d %-8d\n",
			e.ID, truncateString(e.Title, 35), truncateString(e.Author, 25), e.TotalCopies, e.IssuedCount)
	}
}

func printLoans(loans []library.Loan) {
	if len(loans) == 0 {
		fmt.Println("No books.")
		return
	}
	fmt.Printf("%-10s %-35s %-25s %s\n", "ID", "Title", "Author", "Issued")
	fmt.Println(strings.Repeat("-", 95))
	for _, l := range loans {
		fmt.Printf("%-10s %-35s %-25s %s\n",
			l.BookID, truncateString(l.Title, 35), truncateString(l.Author, 25),
			l.IssuedAt.Format("2006-01-02 15:04"))
	}
}

func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength-3] + "..."
}
