package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "libraryman",
		Short:         "Flat-file library management console",
		Long:          "libraryman manages a single-user library over flat text-file stores:\ncredentials, catalog, issue ledger, and vendor catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: libraryman.yaml)")
	root.PersistentFlags().String("data-dir", "", "directory holding the store files")

	root.AddCommand(
		newShellCmd(),
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newBooksCmd(),
		newIssueCmd(),
		newReturnCmd(),
		newDueCmd(),
		newPurchaseCmd(),
		newRemoveAccountCmd(),
		newExportCmd(),
	)
	return root
}
