package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"libraryman/auth"
	"libraryman/report"
)

// runShell is the interactive menu loop. Every command maps onto the same
// component calls the cobra subcommands use.
func runShell(cmd *cobra.Command) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("Welcome to the Library Management System!")
	fmt.Println("Available commands:")
	fmt.Println("  Account: register, login, admin login, logout, whoami, remove account")
	fmt.Println("  Books: list books, search, issue, return, due")
	fmt.Println("  Admin: purchase, vendors, export")
	fmt.Println("  System: exit")

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		command := strings.TrimSpace(scanner.Text())

		switch command {
		case "register":
			handleRegister(scanner, app)
		case "login":
			handleLogin(scanner, app, false)
		case "admin login":
			handleLogin(scanner, app, true)
		case "logout":
			handleLogout(app)
		case "whoami":
			handleWhoami(app)
		case "remove account":
			handleRemoveAccount(app)
		case "list books":
			handleListBooks(app)
		case "search":
			handleSearch(scanner, app)
		case "issue":
			handleIssue(scanner, app)
		case "return":
			handleReturn(scanner, app)
		case "due":
			handleDue(app)
		case "purchase":
			handlePurchase(scanner, app)
		case "vendors":
			handleVendors(app)
		case "export":
			handleExport(app)
		case "exit":
			fmt.Println("Goodbye!")
			return nil
		case "":
			// ignore blank input
		default:
			fmt.Println("Unknown command. Type one of the available commands listed above.")
		}
	}
	return nil
}

func handleRegister(sc *bufio.Scanner, app *App) {
	fmt.Print("Username: ")
	if !sc.Scan() {
		return
	}
	username := strings.TrimSpace(sc.Text())

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	if err := app.auth.Register(username, password, confirm); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Registered user %s. Use 'login' to start a session.\n", username)
}

func handleLogin(sc *bufio.Scanner, app *App, admin bool) {
	fmt.Print("Username: ")
	if !sc.Scan() {
		return
	}
	username := strings.TrimSpace(sc.Text())

	password, err := readPassword("Password: ")
	if err != nil {
		fmt.Printf("Error reading password: %v\n", err)
		return
	}

	var sess auth.Session
	if admin {
		sess, err = app.auth.AdminLogin(username, password)
	} else {
		sess, err = app.auth.Login(username, password)
	}
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}
	if sess.Admin {
		fmt.Printf("Logged in as admin %s.\n", sess.Username)
	} else {
		fmt.Printf("Logged in as %s.\n", sess.Username)
	}
}

func handleLogout(app *App) {
	if err := app.auth.Logout(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("Logged out.")
}

func handleWhoami(app *App) {
	sess, err := app.auth.CurrentSession()
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	if sess.Admin {
		fmt.Printf("%s (admin)\n", sess.Username)
	} else {
		fmt.Println(sess.Username)
	}
}

func handleRemoveAccount(app *App) {
	sess, err := app.session()
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	if sess.Admin {
		fmt.Println("Admin accounts are managed offline.")
		return
	}
	hasLoans, err := app.ledger.HasLoans(sess.Token)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if hasLoans {
		fmt.Println("Account still has books out; return them first.")
		return
	}
	if err := app.auth.RemoveAccount(sess.Username); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := app.auth.Logout(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Removed account %s.\n", sess.Username)
}

func handleListBooks(app *App) {
	entries, err := app.catalog.All()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printBooks(entries)
}

func handleSearch(sc *bufio.Scanner, app *App) {
	fmt.Print("Keyword: ")
	if !sc.Scan() {
		return
	}
	keyword := strings.TrimSpace(sc.Text())

	entries, err := app.catalog.Search(keyword)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	printBooks(entries)
}

func handleIssue(sc *bufio.Scanner, app *App) {
	sess, err := app.session()
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	fmt.Print("Book ID: ")
	if !sc.Scan() {
		return
	}
	bookID := strings.TrimSpace(sc.Text())

	if err := app.engine.Issue(sess.Token, bookID); err != nil {
		fmt.Printf("Error issuing book: %v\n", err)
		return
	}
	fmt.Printf("Issued book %s to %s.\n", bookID, sess.Username)
}

func handleReturn(sc *bufio.Scanner, app *App) {
	sess, err := app.session()
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	fmt.Print("Book ID: ")
	if !sc.Scan() {
		return
	}
	bookID := strings.TrimSpace(sc.Text())

	if err := app.engine.Return(sess.Token, bookID); err != nil {
		fmt.Printf("Error returning book: %v\n", err)
		return
	}
	fmt.Printf("Returned book %s.\n", bookID)
}

func handleDue(app *App) {
	sess, err := app.session()
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	due, err := app.engine.DueBooks(sess.Token)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(due) == 0 {
		fmt.Println("Nothing due.")
		return
	}
	printLoans(due)
}

func handlePurchase(sc *bufio.Scanner, app *App) {
	sess, err := app.session()
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}
	if !sess.Admin {
		fmt.Println("Purchase requires an admin session.")
		return
	}

	fmt.Print("Vendor ID: ")
	if !sc.Scan() {
		return
	}
	vendorID := strings.TrimSpace(sc.Text())

	fmt.Print("New catalog ID: ")
	if !sc.Scan() {
		return
	}
	newID := strings.TrimSpace(sc.Text())

	fmt.Print("Quantity: ")
	if !sc.Scan() {
		return
	}
	quantityStr := strings.TrimSpace(sc.Text())
	quantity, err := strconv.Atoi(quantityStr)
	if err != nil {
		fmt.Printf("Invalid quantity: %s\n", quantityStr)
		return
	}

	entry, err := app.engine.Purchase(vendorID, newID, quantity)
	if err != nil {
		fmt.Printf("Error purchasing: %v\n", err)
		return
	}
	fmt.Printf("Added %q by %s as %s with %d copies.\n", entry.Title, entry.Author, entry.ID, entry.TotalCopies)
}

func handleVendors(app *App) {
	entries, err := app.vendors.All()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("Vendor catalog is empty. Run cmd/seed to populate it.")
		return
	}
	fmt.Printf("%-10s %-35s %-25s %s\n", "ID", "Title", "Author", "Vendor")
	fmt.Println(strings.Repeat("-", 95))
	for _, e := range entries {
		fmt.Printf("%-10s %-35s %-25s %s\n",
			e.ID, truncateString(e.Title, 35), truncateString(e.Author, 25), e.Vendor)
	}
}

func handleExport(app *App) {
	if err := runExport(app, app.cfg.Report.Path); err != nil {
		fmt.Printf("Error exporting: %v\n", err)
	}
}

// runExport snapshots the catalog and ledger into the SQLite report.
func runExport(app *App, path string) error {
	entries, err := app.catalog.All()
	if err != nil {
		return err
	}
	blocks, err := app.ledger.All()
	if err != nil {
		return err
	}
	if err := report.Export(path, entries, blocks); err != nil {
		return err
	}
	summary, err := report.Summarize(path)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d books and %d loans to %s.\n", summary.Books, summary.Loans, path)
	return nil
}
