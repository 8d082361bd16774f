package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd)
		},
	}
}

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Register a new user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return err
			}
			if err := app.auth.Register(args[0], password, confirm); err != nil {
				return err
			}
			fmt.Printf("Registered user %s. Use 'login' to start a session.\n", args[0])
			return nil
		},
	}
}

func newLoginCmd() *cobra.Command {
	var admin bool
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and activate a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}
			if admin {
				s, err := app.auth.AdminLogin(args[0], password)
				if err != nil {
					return err
				}
				fmt.Printf("Logged in as admin %s.\n", s.Username)
				return nil
			}
			s, err := app.auth.Login(args[0], password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s.\n", s.Username)
			return nil
		},
	}
	cmd.Flags().BoolVar(&admin, "admin", false, "authenticate against the admin store")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			if err := app.auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.session()
			if err != nil {
				return err
			}
			if sess.Admin {
				fmt.Printf("%s (admin)\n", sess.Username)
			} else {
				fmt.Println(sess.Username)
			}
			return nil
		},
	}
}

func newBooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "books [keyword]",
		Short: "List the catalog, or search it by id, title, or author substring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			entries, err := app.catalog.Search(keyword)
			if err != nil {
				return err
			}
			printBooks(entries)
			return nil
		},
	}
}

func newIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "issue <book-id>",
		Short: "Check a book out under the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.session()
			if err != nil {
				return err
			}
			if err := app.engine.Issue(sess.Token, args[0]); err != nil {
				return err
			}
			fmt.Printf("Issued book %s to %s.\n", args[0], sess.Username)
			return nil
		},
	}
}

func newReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id>",
		Short: "Return a book held by the active session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.session()
			if err != nil {
				return err
			}
			if err := app.engine.Return(sess.Token, args[0]); err != nil {
				return err
			}
			fmt.Printf("Returned book %s.\n", args[0])
			return nil
		},
	}
}

func newDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List the active session's overdue books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.session()
			if err != nil {
				return err
			}
			due, err := app.engine.DueBooks(sess.Token)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Println("Nothing due.")
				return nil
			}
			printLoans(due)
			return nil
		},
	}
}

func newPurchaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purchase <vendor-id> <new-catalog-id> <quantity>",
		Short: "Buy a vendor title into the catalog (admin session required)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.session()
			if err != nil {
				return err
			}
			if !sess.Admin {
				return fmt.Errorf("purchase requires an admin session")
			}
			quantity, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[2])
			}
			entry, err := app.engine.Purchase(args[0], args[1], quantity)
			if err != nil {
				return err
			}
			fmt.Printf("Added %q by %s as %s with %d copies.\n", entry.Title, entry.Author, entry.ID, entry.TotalCopies)
			return nil
		},
	}
}

func newRemoveAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-account",
		Short: "Delete the active session's account (no outstanding loans allowed)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			sess, err := app.session()
			if err != nil {
				return err
			}
			if sess.Admin {
				return fmt.Errorf("admin accounts are managed offline")
			}
			hasLoans, err := app.ledger.HasLoans(sess.Token)
			if err != nil {
				return err
			}
			if hasLoans {
				return fmt.Errorf("account still has books out; return them first")
			}
			if err := app.auth.RemoveAccount(sess.Username); err != nil {
				return err
			}
			if err := app.auth.Logout(); err != nil {
				return err
			}
			fmt.Printf("Removed account %s.\n", sess.Username)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Snapshot the catalog and ledger into a SQLite report database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd)
			if err != nil {
				return err
			}
			path := app.cfg.Report.Path
			if len(args) == 1 {
				path = args[0]
			}
			return runExport(app, path)
		},
	}
}
