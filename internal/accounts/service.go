package accounts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/model"
)

// Service provides in-memory lookup over the bank-account roster.
type Service struct {
	mu       sync.RWMutex
	accounts []model.BankAccount
	byID     map[string]int
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.BankAccount) *Service {
	s := &Service{byID: make(map[string]int, len(accounts))}
	for _, a := range accounts {
		s.byID[a.ID] = len(s.accounts)
		s.accounts = append(s.accounts, a)
	}
	return s
}

// Load reads accounts/bank-accounts.csv from a data root. A missing file is an
// empty roster.
func Load(root string) (*Service, error) {
	path := filepath.Join(root, "accounts", "bank-accounts.csv")
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening bank accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading bank accounts: %w", err)
	}
	return NewService(accts), nil
}

// All returns all accounts, disabled ones included.
func (s *Service) All() []model.BankAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.BankAccount, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Active returns accounts that are not disabled.
func (s *Service) Active() []model.BankAccount {
	return s.filter(func(a model.BankAccount) bool { return !a.Disabled })
}

// ForSales returns active accounts usable to receive sale payments.
func (s *Service) ForSales() []model.BankAccount {
	return s.filter(func(a model.BankAccount) bool { return !a.Disabled && a.UsableForSales })
}

// ForPurchases returns active accounts usable to pay purchases.
func (s *Service) ForPurchases() []model.BankAccount {
	return s.filter(func(a model.BankAccount) bool { return !a.Disabled && a.UsableForPurchases })
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.BankAccount, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.BankAccount{}, false
	}
	return s.accounts[i], true
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// Add registers a new account.
func (s *Service) Add(acct model.BankAccount) error {
	acct.ID = strings.TrimSpace(acct.ID)
	acct.Currency = strings.ToUpper(strings.TrimSpace(acct.Currency))
	switch {
	case acct.ID == "":
		return apperrors.Validation("id", "is required")
	case model.ParseTarget(acct.ID).IsCash():
		return apperrors.Validation("id", "%q is reserved for the till", acct.ID)
	case strings.ContainsAny(acct.ID, "=;"):
		return apperrors.Validation("id", "must not contain '=' or ';'")
	case acct.Currency == "":
		return apperrors.Validation("currency", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[acct.ID]; ok {
		return apperrors.Validation("id", "account %s already exists", acct.ID)
	}
	s.byID[acct.ID] = len(s.accounts)
	s.accounts = append(s.accounts, acct)
	return nil
}

// SetDisabled enables or disables an account. Disabled accounts keep their
// history but are no longer declared at open or close.
func (s *Service) SetDisabled(id string, disabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return apperrors.Resolution("id", id)
	}
	s.accounts[i].Disabled = disabled
	return nil
}

// Save writes the roster to accounts/bank-accounts.csv.
func (s *Service) Save(root string) error {
	dir := filepath.Join(root, "accounts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	path := filepath.Join(dir, "bank-accounts.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bank accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.All()); err != nil {
		return fmt.Errorf("writing bank accounts: %w", err)
	}
	return nil
}

func (s *Service) filter(keep func(model.BankAccount) bool) []model.BankAccount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.BankAccount
	for _, a := range s.accounts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}
