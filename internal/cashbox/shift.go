package cashbox

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/activitylog"
	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/balance"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/reconcile"
	"github.com/cleared-dev/cashbox/internal/shift"
)

// CashCount is the physical count of the till: either a total or a per-face
// breakdown. When both are given they must agree.
type CashCount struct {
	Total         decimal.NullDecimal `json:"total"`
	Denominations []money.Count       `json:"denominations"`
}

// OpenParams are the inputs of OpenShift.
type OpenParams struct {
	Cash                 CashCount                  `json:"cash"`
	DeclaredBankBalances map[string]decimal.Decimal `json:"declared_bank_balances"`
	Notes                string                     `json:"notes"`
	User                 string                     `json:"user"`
	// Acknowledge accepts reported discrepancies and commits anyway.
	Acknowledge bool `json:"acknowledge"`
}

// CloseParams are the inputs of CloseShift. ExpectedCash and ExpectedDigital
// override the values computed from the ledger when set.
type CloseParams struct {
	Cash                 CashCount                  `json:"cash"`
	DeclaredBankBalances map[string]decimal.Decimal `json:"declared_bank_balances"`
	ExpectedCash         decimal.NullDecimal        `json:"expected_cash"`
	ExpectedDigital      decimal.NullDecimal        `json:"expected_digital"`
	Notes                string                     `json:"notes"`
	User                 string                     `json:"user"`
	Acknowledge          bool                       `json:"acknowledge"`
}

// OpenResult reports a committed shift open.
type OpenResult struct {
	Session     model.Session
	Report      reconcile.Report
	Adjustments []model.Entry
}

// CloseResult reports a committed shift close.
type CloseResult struct {
	Session model.Session
	Report  reconcile.Report
}

// openPlan is everything OpenShift would write.
type openPlan struct {
	counted     decimal.Decimal
	system      map[string]decimal.Decimal
	report      reconcile.Report
	adjustments []model.Entry
}

// PreviewOpen reconciles the declared balances without writing anything.
func (s *Service) PreviewOpen(p OpenParams) (reconcile.Report, []model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, err := s.planOpen(p, s.now())
	if err != nil {
		return reconcile.Report{}, nil, err
	}
	return plan.report, plan.adjustments, nil
}

// OpenShift starts a shift. Discrepancies beyond tolerance return a
// *reconcile.Warning unless p.Acknowledge is set. Declared balances that
// differ from the system are written as opening adjustments before the
// shift window begins.
func (s *Service) OpenShift(p OpenParams) (OpenResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	plan, err := s.planOpen(p, now)
	if err != nil {
		return OpenResult{}, err
	}
	if !plan.report.Clean() && !p.Acknowledge {
		s.log.Warn("open blocked by discrepancies", zap.Int("count", len(plan.report.Discrepancies)))
		return OpenResult{}, &reconcile.Warning{Report: plan.report}
	}

	var adjustments []model.Entry
	if len(plan.adjustments) > 0 {
		if adjustments, err = s.ledger.Append(plan.adjustments...); err != nil {
			return OpenResult{}, fmt.Errorf("writing opening adjustments: %w", err)
		}
		s.countAppended(adjustments)
	}

	user := s.user(p.User)
	session, err := s.machine.Open(shift.Opening{
		At:            now,
		User:          user,
		Seq:           s.ledger.NextSeq(),
		CountedCash:   plan.counted,
		SystemBank:    plan.system,
		ConfirmedBank: p.DeclaredBankBalances,
		Notes:         strings.TrimSpace(p.Notes),
	})
	if err != nil {
		if len(adjustments) == 0 {
			return OpenResult{}, err
		}
		ids := make([]string, len(adjustments))
		for i, a := range adjustments {
			ids[i] = a.ID
		}
		s.log.Error("shift not opened after writing adjustments", zap.Strings("entry_ids", ids), zap.Error(err))
		return OpenResult{}, fmt.Errorf("adjustments %s were written but the shift was not opened: %w", strings.Join(ids, ", "), err)
	}

	s.metrics.ShiftOpened()
	s.metrics.SetShiftOpen(true)
	for _, d := range plan.report.Discrepancies {
		s.metrics.Discrepancy(string(reconcile.PhaseOpen), string(d.Kind))
	}
	s.log.Info("shift opened",
		zap.String("session_id", session.ID),
		zap.String("user", user),
		zap.String("counted_cash", money.Format(plan.counted, s.base)),
		zap.Int("adjustments", len(adjustments)),
		zap.Int("discrepancies", len(plan.report.Discrepancies)),
	)

	corr := s.newID()
	activity := []activitylog.Entry{{
		Timestamp:     now,
		User:          user,
		Action:        activitylog.ActionOpenShift,
		Details:       "counted " + money.Display(plan.counted, s.base),
		SessionID:     session.ID,
		CorrelationID: corr,
	}}
	for _, a := range adjustments {
		activity = append(activity, activitylog.Entry{
			Timestamp:     now,
			User:          user,
			Action:        activitylog.ActionAdjustment,
			Details:       fmt.Sprintf("%s %s %s", a.Target(), a.Direction, money.Format(a.Amount, a.Currency)),
			SessionID:     session.ID,
			EntryID:       a.ID,
			CorrelationID: corr,
		})
	}
	activity = append(activity, acknowledged(plan.report, now, user, session.ID, corr)...)
	s.record(activity...)

	return OpenResult{Session: session, Report: plan.report, Adjustments: adjustments}, nil
}

func (s *Service) planOpen(p OpenParams, now time.Time) (openPlan, error) {
	if cur, ok := s.machine.Current(); ok {
		return openPlan{}, apperrors.StateConflict("shift %s is already open; close it first", cur.ID)
	}
	counted, err := s.countedCash(p.Cash)
	if err != nil {
		return openPlan{}, err
	}
	active := s.accounts.Active()
	if err := s.checkBankDeclarations(active, p.DeclaredBankBalances); err != nil {
		return openPlan{}, err
	}
	if err := shift.CheckDeclared(active, p.DeclaredBankBalances); err != nil {
		return openPlan{}, err
	}

	r := balance.New(s.ledger.Entries())
	user := s.user(p.User)
	plan := openPlan{counted: counted, system: make(map[string]decimal.Decimal, len(active))}

	systemCash := r.Balance(model.Cash, s.initialFloat, balance.All, time.Time{})
	lines := []reconcile.Line{{
		Target:   model.Cash,
		Name:     s.nameOf(model.Cash),
		Currency: s.base,
		Declared: counted,
		Expected: s.machine.ExpectedOpeningCash(),
	}}
	if adj, ok := s.adjustment(model.Cash, s.base, counted, systemCash, now, user); ok {
		plan.adjustments = append(plan.adjustments, adj)
		// The last close only accepted its own difference; anything else
		// the adjustment absorbs (movements between shifts, an overridden
		// expected cash) is reported against the ledger.
		accepted := decimal.Zero
		if last, ok := s.machine.LastClosed(); ok {
			accepted = last.CashDifferenceAtClose
		}
		ledgerCash := systemCash.Add(accepted)
		if !ledgerCash.Equal(lines[0].Expected) {
			lines = append(lines, reconcile.Line{
				Target:   model.Cash,
				Name:     s.nameOf(model.Cash) + " (LEDGER)",
				Currency: s.base,
				Declared: counted,
				Expected: ledgerCash,
			})
		}
	}

	for _, acct := range active {
		t := model.Target(acct.ID)
		system := r.Balance(t, decimal.Zero, balance.All, time.Time{})
		declared := p.DeclaredBankBalances[acct.ID]
		plan.system[acct.ID] = system
		lines = append(lines, reconcile.Line{
			Target:   t,
			Name:     acct.DisplayName(),
			Currency: acct.Currency,
			Declared: declared,
			Expected: system,
		})
		if adj, ok := s.adjustment(t, acct.Currency, declared, system, now, user); ok {
			plan.adjustments = append(plan.adjustments, adj)
		}
	}

	plan.report = s.engine.Reconcile(reconcile.PhaseOpen, lines)
	return plan, nil
}

// adjustment builds the entry that brings target from system to declared, if
// the gap exceeds the tolerance.
func (s *Service) adjustment(t model.Target, currency string, declared, system decimal.Decimal, at time.Time, user string) (model.Entry, bool) {
	diff := declared.Sub(system)
	if !s.engine.Exceeds(diff, currency) {
		return model.Entry{}, false
	}
	e := model.Entry{
		Timestamp:    at,
		Direction:    model.Income,
		Method:       model.MethodCash,
		Concept:      "OPENING ADJUSTMENT " + strings.ToUpper(s.nameOf(t)),
		Amount:       diff.Abs(),
		Currency:     currency,
		Category:     model.CategoryOpeningAdjustment,
		User:         user,
		BalanceAfter: decimal.NewNullDecimal(declared),
	}
	if diff.IsNegative() {
		e.Direction = model.Expense
	}
	if !t.IsCash() {
		e.Method = model.MethodBankTransfer
		e.AccountID = string(t)
	}
	return e, true
}

// closePlan is everything CloseShift would write.
type closePlan struct {
	session         model.Session
	counted         decimal.Decimal
	expectedCash    decimal.Decimal
	expectedDigital decimal.Decimal
	system          map[string]decimal.Decimal
	report          reconcile.Report
}

// PreviewClose reconciles the close without writing anything.
func (s *Service) PreviewClose(p CloseParams) (reconcile.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, err := s.planClose(p)
	if err != nil {
		return reconcile.Report{}, err
	}
	return plan.report, nil
}

// CloseShift ends the open shift. Nothing is written when no shift is open
// or when discrepancies are reported and not acknowledged.
func (s *Service) CloseShift(p CloseParams) (CloseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.planClose(p)
	if err != nil {
		return CloseResult{}, err
	}
	if !plan.report.Clean() && !p.Acknowledge {
		s.log.Warn("close blocked by discrepancies",
			zap.String("session_id", plan.session.ID),
			zap.Int("count", len(plan.report.Discrepancies)),
		)
		return CloseResult{}, &reconcile.Warning{Report: plan.report}
	}

	now := s.now()
	user := s.user(p.User)
	session, err := s.machine.Close(shift.Closing{
		At:              now,
		User:            user,
		Seq:             s.ledger.NextSeq(),
		ExpectedCash:    plan.expectedCash,
		CountedCash:     plan.counted,
		ExpectedDigital: plan.expectedDigital,
		SystemBank:      plan.system,
		ConfirmedBank:   p.DeclaredBankBalances,
		Notes:           strings.TrimSpace(p.Notes),
	})
	if err != nil {
		return CloseResult{}, err
	}

	s.metrics.ShiftClosed()
	s.metrics.SetShiftOpen(false)
	for _, d := range plan.report.Discrepancies {
		s.metrics.Discrepancy(string(reconcile.PhaseClose), string(d.Kind))
	}
	s.log.Info("shift closed",
		zap.String("session_id", session.ID),
		zap.String("user", user),
		zap.String("expected_cash", money.Format(plan.expectedCash, s.base)),
		zap.String("counted_cash", money.Format(plan.counted, s.base)),
		zap.String("cash_difference", money.Format(session.CashDifferenceAtClose, s.base)),
	)

	corr := s.newID()
	activity := []activitylog.Entry{{
		Timestamp:     now,
		User:          user,
		Action:        activitylog.ActionCloseShift,
		Details:       fmt.Sprintf("expected %s counted %s", money.Display(plan.expectedCash, s.base), money.Display(plan.counted, s.base)),
		SessionID:     session.ID,
		CorrelationID: corr,
	}}
	activity = append(activity, acknowledged(plan.report, now, user, session.ID, corr)...)
	s.record(activity...)

	return CloseResult{Session: session, Report: plan.report}, nil
}

func (s *Service) planClose(p CloseParams) (closePlan, error) {
	session, ok := s.machine.Current()
	if !ok {
		return closePlan{}, apperrors.StateConflict("no shift is open")
	}
	counted, err := s.countedCash(p.Cash)
	if err != nil {
		return closePlan{}, err
	}
	active := s.accounts.Active()
	if err := s.checkBankDeclarations(active, p.DeclaredBankBalances); err != nil {
		return closePlan{}, err
	}

	r := balance.New(s.ledger.Entries())
	plan := closePlan{
		session: session,
		counted: counted,
		system:  make(map[string]decimal.Decimal, len(active)),
	}

	plan.expectedCash = r.Balance(model.Cash, session.CountedOpeningCash, balance.Window{FromSeq: session.OpeningSeq}, time.Time{})
	if p.ExpectedCash.Valid {
		plan.expectedCash = p.ExpectedCash.Decimal
	}

	lines := []reconcile.Line{{
		Target:   model.Cash,
		Name:     s.nameOf(model.Cash),
		Currency: s.base,
		Declared: counted,
		Expected: plan.expectedCash,
	}}

	digital := decimal.Zero
	for _, acct := range active {
		t := model.Target(acct.ID)
		system := r.Balance(t, decimal.Zero, balance.All, time.Time{})
		plan.system[acct.ID] = system
		if acct.Currency == s.base {
			digital = digital.Add(system)
		}
		declared, ok := p.DeclaredBankBalances[acct.ID]
		if !ok {
			s.log.Debug("no declared balance at close", zap.String("account_id", acct.ID))
			continue
		}
		lines = append(lines, reconcile.Line{
			Target:   t,
			Name:     acct.DisplayName(),
			Currency: acct.Currency,
			Declared: declared,
			Expected: system,
		})
	}
	plan.expectedDigital = digital
	if p.ExpectedDigital.Valid {
		plan.expectedDigital = p.ExpectedDigital.Decimal
	}

	plan.report = s.engine.Reconcile(reconcile.PhaseClose, lines)
	return plan, nil
}

// countedCash resolves a CashCount into one total in the base currency.
func (s *Service) countedCash(c CashCount) (decimal.Decimal, error) {
	if len(c.Denominations) > 0 {
		if err := money.CheckCounts(c.Denominations, s.denominations); err != nil {
			return decimal.Zero, err
		}
		total := money.Total(c.Denominations)
		if c.Total.Valid && !c.Total.Decimal.Equal(total) {
			return decimal.Zero, apperrors.Validation("cash", "total %s does not match denominations %s",
				money.Format(c.Total.Decimal, s.base), money.Format(total, s.base))
		}
		return total, nil
	}
	if !c.Total.Valid {
		return decimal.Zero, apperrors.Validation("cash", "counted cash is required")
	}
	if c.Total.Decimal.IsNegative() {
		return decimal.Zero, apperrors.Validation("cash", "must not be negative")
	}
	if money.HasExcessPrecision(c.Total.Decimal, s.base) {
		return decimal.Zero, apperrors.Validation("cash", "has more than %d decimals", money.MinorUnits(s.base))
	}
	return c.Total.Decimal, nil
}

// checkBankDeclarations rejects balances for unknown or disabled accounts and
// amounts finer than the account's currency allows.
func (s *Service) checkBankDeclarations(active []model.BankAccount, declared map[string]decimal.Decimal) error {
	known := make(map[string]model.BankAccount, len(active))
	for _, a := range active {
		known[a.ID] = a
	}
	ids := make([]string, 0, len(declared))
	for id := range declared {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		acct, ok := known[id]
		if !ok {
			return apperrors.Resolution("declared_bank_balances", id)
		}
		if money.HasExcessPrecision(declared[id], acct.Currency) {
			return apperrors.Validation("declared_bank_balances", "%s has more than %d decimals", id, money.MinorUnits(acct.Currency))
		}
	}
	return nil
}

func acknowledged(r reconcile.Report, at time.Time, user, sessionID, corr string) []activitylog.Entry {
	var out []activitylog.Entry
	for _, d := range r.Discrepancies {
		out = append(out, activitylog.Entry{
			Timestamp:     at,
			User:          user,
			Action:        activitylog.ActionAcknowledged,
			Details:       fmt.Sprintf("%s: %s", r.Phase, d),
			SessionID:     sessionID,
			CorrelationID: corr,
		})
	}
	return out
}
