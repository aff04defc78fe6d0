package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbox/internal/cashbox"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// newEntryCommand builds "income" or "expense".
func newEntryCommand(opts *globalOptions, direction string) *cobra.Command {
	var method, account, ref, category, currency string

	cmd := &cobra.Command{
		Use:   direction + " <amount> <concept...>",
		Short: fmt.Sprintf("Record %s %s", article(direction), direction),
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse("amount", args[0])
			if err != nil {
				return err
			}
			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			if account != "" && !cmd.Flags().Changed("method") {
				method = string(model.MethodBankTransfer)
			}

			e, err := ws.svc.RecordEntry(cashbox.RecordParams{
				Direction:   model.Direction(direction),
				Method:      model.Method(method),
				Concept:     strings.Join(args[1:], " "),
				Amount:      amount,
				Currency:    currency,
				Category:    category,
				AccountID:   account,
				ReferenceID: ref,
				User:        opts.user,
			})
			if err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), e)
			return nil
		},
	}

	cmd.Flags().StringVarP(&method, "method", "m", string(model.MethodCash), "payment method (cash, card, bank_transfer, digital_wallet, deposit, store_credit)")
	cmd.Flags().StringVarP(&account, "account", "a", "", "bank account ID (omit for the till)")
	cmd.Flags().StringVar(&ref, "ref", "", "operation reference (required for non-cash)")
	cmd.Flags().StringVar(&category, "category", "", "category (default VARIABLE)")
	cmd.Flags().StringVar(&currency, "currency", "", "currency (defaults to the target's)")
	return cmd
}

func article(word string) string {
	if strings.ContainsRune("aeiou", rune(word[0])) {
		return "an"
	}
	return "a"
}

func newTransferCommand(opts *globalOptions) *cobra.Command {
	var rate, ref, opNumber string

	cmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Move funds between the till (CASH) and bank accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse("amount", args[2])
			if err != nil {
				return err
			}
			params := cashbox.TransferParams{
				From:            args[0],
				To:              args[1],
				Amount:          amount,
				Reference:       ref,
				OperationNumber: opNumber,
				User:            opts.user,
			}
			if rate != "" {
				if params.Rate, err = money.Parse("rate", rate); err != nil {
					return err
				}
			}

			ws, err := opts.open(nil, false)
			if err != nil {
				return err
			}
			res, err := ws.svc.TransferFunds(params)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printEntry(out, res.Debit)
			printEntry(out, res.Credit)
			return nil
		},
	}

	cmd.Flags().StringVar(&rate, "rate", "", "exchange rate when currencies differ")
	cmd.Flags().StringVar(&ref, "ref", "", "free-form reference")
	cmd.Flags().StringVar(&opNumber, "op", "", "bank operation number (required)")
	return cmd
}
