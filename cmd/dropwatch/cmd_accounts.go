package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"dropwatch/internal/operations"
	"dropwatch/pkg/contracts/domain"
)

var (
	accountsAccount string
	accountsFolder  string
	accountsSkip    []string
	accountsTasks   bool
)

// accountsCmd lists the accounts a run would scan
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the accounts and folders a run would scan",
	Long: `Parse the credentials file, apply the same validation and filters as
"dropwatch run" and print what would be scanned. Passwords are never shown.`,
	Example: `  dropwatch accounts
  dropwatch accounts --tasks --account acme`,
	Args: cobra.NoArgs,
	RunE: listAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)

	accountsCmd.Flags().StringVar(&accountsAccount, "account", "", "Only list accounts whose name contains this text")
	accountsCmd.Flags().StringVar(&accountsFolder, "folder", "", "Only list folders whose label contains this text")
	accountsCmd.Flags().StringArrayVar(&accountsSkip, "skip", nil, "Skip accounts whose name contains this text (repeatable)")
	accountsCmd.Flags().BoolVarP(&accountsTasks, "tasks", "t", false, "List every folder task instead of one line per account")
}

func listAccounts(cmd *cobra.Command, args []string) error {
	a, err := setup(time.Now(), false)
	if err != nil {
		return err
	}
	defer a.close()

	accounts, err := a.loadAccounts()
	if err != nil {
		return err
	}
	filter := operations.Filter{Account: accountsAccount, Folder: accountsFolder, Skip: accountsSkip}
	accounts = operations.FilterAccounts(accounts, filter, a.logger)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if accountsTasks {
		printTasks(w, accounts)
	} else {
		printAccounts(w, accounts)
	}
	return w.Flush()
}

func printAccounts(w *tabwriter.Writer, accounts []domain.Account) {
	fmt.Fprintln(w, "ACCOUNT\tADDRESS\tUSER\tPASSWORD\tFOLDERS\tTASKS")
	for _, acct := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
			acct.Name, acct.Address(), acct.Username, acct.Secret, len(acct.Folders), len(acct.Tasks()))
	}
}

func printTasks(w *tabwriter.Writer, accounts []domain.Account) {
	fmt.Fprintln(w, "ACCOUNT\tFOLDER\tPATH\tPREFIX")
	for _, acct := range accounts {
		for _, task := range acct.Tasks() {
			path, prefix := task.Path, task.Prefix
			if task.Unconfigured {
				path = "(not configured)"
			}
			if prefix == "" {
				prefix = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", task.Account, task.Label, path, prefix)
		}
	}
}
