package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbox/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "cashbox",
		Short:   "Cash-box shift ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "data directory")
	flags.StringVarP(&opts.user, "user", "u", "", "operator name (defaults to operator.default_user)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured level instead of errors only")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(opts),
		newOpenCommand(opts),
		newCloseCommand(opts),
		newEntryCommand(opts, "income"),
		newEntryCommand(opts, "expense"),
		newTransferCommand(opts),
		newLedgerCommand(opts),
		newSummaryCommand(opts),
		newSessionsCommand(opts),
		newCountCommand(opts),
		newVerifyCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
