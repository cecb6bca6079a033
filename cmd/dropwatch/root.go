package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dropwatch/pkg/contracts"
)

var (
	configFile      string
	credentialsFile string

	rootCmd = &cobra.Command{
		Use:   "dropwatch",
		Short: "Report the newest file in each watched SFTP folder",
		Long: `dropwatch connects to every account in the credentials file, finds the
newest file in each configured folder and writes a daily report workbook.

Folders that could not be inspected are listed in a separate errors
workbook. Running without a subcommand is the same as "dropwatch run".`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runScan,
	}
)

// Execute runs the root command. SIGINT and SIGTERM cancel the scan in
// progress; any error exits with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetVersionTemplate(`dropwatch {{.Version}}
`)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: dropwatch.yaml next to the binary or in ./configs)")
	rootCmd.PersistentFlags().StringVar(&credentialsFile, "credentials", "", "Credentials file (default: credentials.txt next to the binary)")

	addRunFlags(rootCmd, &rootRunOptions)
}
