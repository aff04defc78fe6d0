package ledger

import (
	"fmt"

	"github.com/cleared-dev/cashbox/internal/id"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	EntryID     string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d [%s]: %s", e.Invariant, e.EntryID, e.Description)
}

// AccountChecker tests whether a bank account ID exists in the roster.
type AccountChecker interface {
	Exists(id string) bool
}

// ValidateEntries enforces the ledger file invariants over a full entry log.
func ValidateEntries(entries []model.Entry, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	// Invariant 1: Seq strictly increasing and matching the entry ID.
	var prev uint64
	for _, e := range entries {
		if e.Seq <= prev {
			errs = append(errs, ValidationError{
				Invariant:   1,
				EntryID:     e.ID,
				Description: fmt.Sprintf("seq %d does not follow %d", e.Seq, prev),
			})
		}
		prev = e.Seq
		if seq, err := id.ParseEntryID(e.ID); err != nil || seq != e.Seq {
			errs = append(errs, ValidationError{
				Invariant:   1,
				EntryID:     e.ID,
				Description: fmt.Sprintf("entry ID does not match seq %d", e.Seq),
			})
		}
	}

	for _, e := range entries {
		// Invariant 2: Known direction.
		if !e.Direction.Valid() {
			errs = append(errs, ValidationError{
				Invariant:   2,
				EntryID:     e.ID,
				Description: fmt.Sprintf("invalid direction %q", e.Direction),
			})
		}

		// Invariant 3: Non-negative amount within the currency's precision.
		if e.Amount.IsNegative() {
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     e.ID,
				Description: fmt.Sprintf("negative amount %s", e.Amount),
			})
		}
		if e.Currency == "" {
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     e.ID,
				Description: "missing currency",
			})
		} else if money.HasExcessPrecision(e.Amount, e.Currency) {
			errs = append(errs, ValidationError{
				Invariant:   3,
				EntryID:     e.ID,
				Description: fmt.Sprintf("amount %s has more than %d decimal places", e.Amount, money.MinorUnits(e.Currency)),
			})
		}

		// Invariant 4: Valid account references.
		if e.AccountID != "" && accounts != nil && !accounts.Exists(e.AccountID) {
			errs = append(errs, ValidationError{
				Invariant:   4,
				EntryID:     e.ID,
				Description: fmt.Sprintf("unknown account %q", e.AccountID),
			})
		}

		// Invariant 5: Opening adjustments record the balance they set.
		if e.IsOpeningAdjustment() && !e.BalanceAfter.Valid {
			errs = append(errs, ValidationError{
				Invariant:   5,
				EntryID:     e.ID,
				Description: "opening adjustment without balance_after",
			})
		}
	}

	// Invariant 6: Transfers come in pairs, one expense and one income.
	type pair struct {
		first   string
		out, in int
	}
	pairs := make(map[string]*pair)
	var order []string
	for _, e := range entries {
		if e.TransferID == "" {
			continue
		}
		p, ok := pairs[e.TransferID]
		if !ok {
			p = &pair{first: e.ID}
			pairs[e.TransferID] = p
			order = append(order, e.TransferID)
		}
		if e.Direction == model.Expense {
			p.out++
		} else {
			p.in++
		}
	}
	for _, tid := range order {
		p := pairs[tid]
		if p.out != 1 || p.in != 1 {
			errs = append(errs, ValidationError{
				Invariant:   6,
				EntryID:     p.first,
				Description: fmt.Sprintf("transfer %s has %d expense and %d income entries", tid, p.out, p.in),
			})
		}
	}

	return errs
}
