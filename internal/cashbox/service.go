package cashbox

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/activitylog"
	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/ledger"
	"github.com/cleared-dev/cashbox/internal/logging"
	"github.com/cleared-dev/cashbox/internal/metrics"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/reconcile"
	"github.com/cleared-dev/cashbox/internal/shift"
	"github.com/cleared-dev/cashbox/internal/transfer"
)

// Roster is the bank-account collaborator.
type Roster interface {
	All() []model.BankAccount
	Active() []model.BankAccount
	Get(id string) (model.BankAccount, bool)
	Exists(id string) bool
}

// Options wires a Service. Ledger, Sessions, Accounts and BaseCurrency are
// required; everything else has a default.
type Options struct {
	Ledger        ledger.Store
	Sessions      shift.Store
	Accounts      Roster
	BaseCurrency  string
	InitialFloat  decimal.Decimal
	Tolerance     decimal.NullDecimal
	Conversions   *transfer.Table
	Denominations []decimal.Decimal
	DefaultUser   string
	Clock         func() time.Time
	Logger        *zap.Logger
	Metrics       *metrics.Collector
	Activity      activitylog.Sink
}

// Service owns the ledger and shift state of one till. All operations are
// serialized.
type Service struct {
	mu sync.RWMutex

	ledger   ledger.Store
	machine  *shift.Machine
	accounts Roster
	operator *transfer.Operator
	engine   reconcile.Engine

	base          string
	initialFloat  decimal.Decimal
	denominations []decimal.Decimal
	defaultUser   string

	now      func() time.Time
	newID    func() string
	log      *zap.Logger
	metrics  *metrics.Collector
	activity activitylog.Sink
}

// New creates a Service.
func New(opts Options) (*Service, error) {
	switch {
	case opts.Ledger == nil:
		return nil, errors.New("cashbox: ledger store is required")
	case opts.Sessions == nil:
		return nil, errors.New("cashbox: session store is required")
	case opts.Accounts == nil:
		return nil, errors.New("cashbox: account roster is required")
	case strings.TrimSpace(opts.BaseCurrency) == "":
		return nil, errors.New("cashbox: base currency is required")
	}

	s := &Service{
		ledger:        opts.Ledger,
		machine:       shift.NewMachine(opts.Sessions, opts.InitialFloat),
		accounts:      opts.Accounts,
		engine:        reconcile.NewEngine(opts.Tolerance),
		base:          strings.ToUpper(strings.TrimSpace(opts.BaseCurrency)),
		initialFloat:  opts.InitialFloat,
		denominations: opts.Denominations,
		defaultUser:   opts.DefaultUser,
		now:           opts.Clock,
		newID:         uuid.NewString,
		log:           logging.OrNop(opts.Logger),
		metrics:       opts.Metrics,
		activity:      opts.Activity,
	}

	table := opts.Conversions
	if table == nil {
		table = transfer.DefaultTable(s.base)
	}
	s.operator = transfer.NewOperator(table, resolver{s})

	if s.denominations == nil {
		s.denominations = money.DefaultDenominations(s.base)
	}
	if s.defaultUser == "" {
		s.defaultUser = "ADMIN"
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.activity == nil {
		s.activity = activitylog.Discard
	}

	_, open := s.machine.Current()
	s.metrics.SetShiftOpen(open)
	return s, nil
}

// BaseCurrency returns the till's currency.
func (s *Service) BaseCurrency() string { return s.base }

// Denominations returns the face values counted for the till, largest first.
func (s *Service) Denominations() []decimal.Decimal { return s.denominations }

// Accounts returns every bank account in the roster.
func (s *Service) Accounts() []model.BankAccount { return s.accounts.All() }

func (s *Service) user(u string) string {
	if u = strings.TrimSpace(u); u != "" {
		return u
	}
	return s.defaultUser
}

// record writes to the activity sink; failures are logged, not returned.
func (s *Service) record(entries ...activitylog.Entry) {
	if len(entries) == 0 {
		return
	}
	if err := s.activity.Record(entries...); err != nil {
		s.log.Warn("writing activity log", zap.Error(err))
	}
}

func (s *Service) countAppended(entries []model.Entry) {
	for _, e := range entries {
		s.metrics.EntryAppended(string(e.Direction), e.Category)
	}
}

// resolver maps targets to transfer endpoints using the roster.
type resolver struct{ s *Service }

func (r resolver) Resolve(t model.Target) (transfer.Endpoint, bool) {
	if t.IsCash() {
		return transfer.Endpoint{Target: model.Cash, Name: string(model.Cash), Currency: r.s.base}, true
	}
	acct, ok := r.s.accounts.Get(string(t))
	if !ok || acct.Disabled {
		return transfer.Endpoint{}, false
	}
	return transfer.Endpoint{Target: t, Name: acct.DisplayName(), Currency: acct.Currency}, true
}

func (s *Service) currencyOf(t model.Target) string {
	if t.IsCash() {
		return s.base
	}
	if acct, ok := s.accounts.Get(string(t)); ok {
		return acct.Currency
	}
	return ""
}

func (s *Service) nameOf(t model.Target) string {
	if t.IsCash() {
		return string(model.Cash)
	}
	if acct, ok := s.accounts.Get(string(t)); ok {
		return acct.DisplayName()
	}
	return string(t)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// checkStruct runs tag validation and reports the first failure as
// ErrValidation naming the field.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperrors.Validation(fe.Field(), "is required")
		case "oneof":
			return apperrors.Validation(fe.Field(), "must be one of %s", fe.Param())
		default:
			return apperrors.Validation(fe.Field(), "fails %s", fe.Tag())
		}
	}
	return apperrors.Validation("request", "%v", err)
}
