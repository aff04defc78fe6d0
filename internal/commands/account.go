package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbox/internal/accounts"
	"github.com/cleared-dev/cashbox/internal/model"
)

func newAccountCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank accounts",
	}
	cmd.AddCommand(
		newAccountAddCommand(opts),
		newAccountListCommand(opts),
		newAccountToggleCommand(opts, "disable", true),
		newAccountToggleCommand(opts, "enable", false),
	)
	return cmd
}

func newAccountAddCommand(opts *globalOptions) *cobra.Command {
	var acct model.BankAccount
	var salesOnly, purchasesOnly bool

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			roster, err := accounts.Load(root)
			if err != nil {
				return err
			}

			acct.ID = args[0]
			if acct.Currency == "" {
				acct.Currency = cfg.Currency.Base
			}
			acct.UsableForSales = !purchasesOnly
			acct.UsableForPurchases = !salesOnly
			if err := roster.Add(acct); err != nil {
				return err
			}
			if err := roster.Save(root); err != nil {
				return err
			}
			if _, err := autoCommit(root, cfg, "account: add "+acct.ID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added account %s\n", acct.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&acct.Alias, "alias", "", "display name")
	cmd.Flags().StringVar(&acct.BankName, "bank", "", "bank name")
	cmd.Flags().StringVar(&acct.Currency, "currency", "", "account currency (defaults to the base currency)")
	cmd.Flags().BoolVar(&salesOnly, "sales-only", false, "only receives sales")
	cmd.Flags().BoolVar(&purchasesOnly, "purchases-only", false, "only pays purchases")
	cmd.MarkFlagsMutuallyExclusive("sales-only", "purchases-only")

	return cmd
}

func newAccountListCommand(opts *globalOptions) *cobra.Command {
	var usage string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bank accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.root()
			if err != nil {
				return err
			}
			roster, err := accounts.Load(root)
			if err != nil {
				return err
			}

			var list []model.BankAccount
			switch usage {
			case "":
				list = roster.All()
			case "sales":
				list = roster.ForSales()
			case "purchases":
				list = roster.ForPurchases()
			default:
				return fmt.Errorf("--for must be sales or purchases, got %q", usage)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tBANK\tCURRENCY\tSALES\tPURCHASES\tSTATUS")
			for _, a := range list {
				status := "active"
				if a.Disabled {
					status = "disabled"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.DisplayName(), a.BankName, a.Currency, yesNo(a.UsableForSales), yesNo(a.UsableForPurchases), status)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&usage, "for", "", "only active accounts usable for sales or purchases")
	return cmd
}

func newAccountToggleCommand(opts *globalOptions, verb string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("%s a bank account", capitalize(verb)),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			roster, err := accounts.Load(root)
			if err != nil {
				return err
			}
			if err := roster.SetDisabled(args[0], disabled); err != nil {
				return err
			}
			if err := roster.Save(root); err != nil {
				return err
			}
			if _, err := autoCommit(root, cfg, fmt.Sprintf("account: %s %s", verb, args[0])); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s %sd\n", args[0], verb)
			return nil
		},
	}
}
