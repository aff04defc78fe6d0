package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/transfer"
)

// FileName is the config file at the root of a data directory.
const FileName = "cashbox.yaml"

// EnvPrefix prefixes environment overrides, e.g. CASHBOX_CURRENCY_BASE=USD.
const EnvPrefix = "CASHBOX"

// Config represents the top-level cashbox.yaml configuration.
type Config struct {
	Business      BusinessConfig      `yaml:"business" mapstructure:"business"`
	Currency      CurrencyConfig      `yaml:"currency" mapstructure:"currency"`
	Cash          CashConfig          `yaml:"cash" mapstructure:"cash"`
	Reconcile     ReconcileConfig     `yaml:"reconcile" mapstructure:"reconcile"`
	Denominations map[string][]string `yaml:"denominations,omitempty" mapstructure:"denominations"`
	Conversions   []ConversionRule    `yaml:"conversions,omitempty" mapstructure:"conversions" validate:"dive"`
	Operator      OperatorConfig      `yaml:"operator" mapstructure:"operator"`
	Git           GitConfig           `yaml:"git" mapstructure:"git"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
}

// BusinessConfig identifies the business running the till.
type BusinessConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
}

// CurrencyConfig sets the till's base currency.
type CurrencyConfig struct {
	Base string `yaml:"base" mapstructure:"base" validate:"required,len=3,alpha"`
}

// CashConfig holds the opening float used before any shift has closed.
type CashConfig struct {
	InitialFloat string `yaml:"initial_float" mapstructure:"initial_float" validate:"required,numeric"`
}

// ReconcileConfig controls discrepancy detection. An empty tolerance means
// one minor unit of each line's currency.
type ReconcileConfig struct {
	Tolerance string `yaml:"tolerance,omitempty" mapstructure:"tolerance" validate:"omitempty,numeric"`
}

// ConversionRule says whether the rate multiplies or divides when converting
// From into To.
type ConversionRule struct {
	From string `yaml:"from" mapstructure:"from" validate:"required,len=3,alpha"`
	To   string `yaml:"to" mapstructure:"to" validate:"required,len=3,alpha,nefield=From"`
	Op   string `yaml:"op" mapstructure:"op" validate:"required,oneof=multiply divide"`
}

// OperatorConfig names the user stamped on entries when none is given.
type OperatorConfig struct {
	DefaultUser string `yaml:"default_user" mapstructure:"default_user"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit" mapstructure:"auto_commit"`
	AuthorName  string `yaml:"author_name" mapstructure:"author_name"`
	AuthorEmail string `yaml:"author_email" mapstructure:"author_email"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Address string `yaml:"address" mapstructure:"address"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// Load reads a cashbox.yaml file from disk. Environment variables prefixed
// with CASHBOX_ override file values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Currency.Base = strings.ToUpper(cfg.Currency.Base)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new till.
func Default(businessName, baseCurrency string) *Config {
	base := strings.ToUpper(baseCurrency)
	cfg := &Config{
		Business: BusinessConfig{
			Name: businessName,
		},
		Currency: CurrencyConfig{
			Base: base,
		},
		Cash: CashConfig{
			InitialFloat: "100.00",
		},
		Operator: OperatorConfig{
			DefaultUser: "ADMIN",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Cashbox",
			AuthorEmail: "cashbox@cleared.dev",
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
	if faces := money.DefaultDenominations(base); len(faces) > 0 {
		list := make([]string, len(faces))
		for i, f := range faces {
			list[i] = money.Format(f, base)
		}
		cfg.Denominations = map[string][]string{base: list}
	}
	return cfg
}

var validate = validator.New()

// Validate checks field formats.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// InitialFloat parses cash.initial_float.
func (c *Config) InitialFloat() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.Cash.InitialFloat)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing cash.initial_float %q: %w", c.Cash.InitialFloat, err)
	}
	return d, nil
}

// Tolerance parses reconcile.tolerance. An empty value is returned as invalid.
func (c *Config) Tolerance() (decimal.NullDecimal, error) {
	if c.Reconcile.Tolerance == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(c.Reconcile.Tolerance)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parsing reconcile.tolerance %q: %w", c.Reconcile.Tolerance, err)
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("reconcile.tolerance %s must not be negative", d)
	}
	return decimal.NewNullDecimal(d), nil
}

// DenominationsFor returns the configured face values for currency, falling
// back to the built-in set. Keys match case-insensitively.
func (c *Config) DenominationsFor(currency string) ([]decimal.Decimal, error) {
	for k, faces := range c.Denominations {
		if strings.EqualFold(k, currency) {
			return money.ParseDenominations(faces)
		}
	}
	return money.DefaultDenominations(currency), nil
}

// ConversionTable builds the currency conversion table. With no rules
// configured it falls back to USD against the base currency.
func (c *Config) ConversionTable() (*transfer.Table, error) {
	if len(c.Conversions) == 0 {
		return transfer.DefaultTable(c.Currency.Base), nil
	}
	rules := make([]transfer.Rule, len(c.Conversions))
	for i, r := range c.Conversions {
		rules[i] = transfer.Rule{From: r.From, To: r.To, Op: transfer.Op(r.Op)}
	}
	return transfer.NewTable(rules...)
}
