package commands

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/accounts"
	"github.com/cleared-dev/cashbox/internal/activitylog"
	"github.com/cleared-dev/cashbox/internal/cashbox"
	"github.com/cleared-dev/cashbox/internal/config"
	"github.com/cleared-dev/cashbox/internal/gitops"
	"github.com/cleared-dev/cashbox/internal/ledger"
	"github.com/cleared-dev/cashbox/internal/logging"
	"github.com/cleared-dev/cashbox/internal/metrics"
	"github.com/cleared-dev/cashbox/internal/shift"
)

// globalOptions are the persistent root flags.
type globalOptions struct {
	dir     string
	user    string
	verbose bool
}

// workspace is an initialized data directory with its service wired up.
type workspace struct {
	root   string
	cfg    *config.Config
	roster *accounts.Service
	svc    *cashbox.Service
	log    *zap.Logger
}

func (o *globalOptions) root() (string, error) {
	root, err := filepath.Abs(o.dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return root, nil
}

// loadConfig reads cashbox.yaml from the data directory, after loading any
// .env file found there.
func (o *globalOptions) loadConfig() (string, *config.Config, error) {
	root, err := o.root()
	if err != nil {
		return "", nil, err
	}
	_ = godotenv.Load(filepath.Join(root, ".env"))
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return "", nil, fmt.Errorf("%w (run 'cashbox init' first?)", err)
	}
	return root, cfg, nil
}

// logger builds the zap logger. CLI runs log errors only unless --verbose.
func (o *globalOptions) logger(cfg *config.Config, always bool) (*zap.Logger, error) {
	level := "error"
	if o.verbose || always {
		level = cfg.Log.Level
	}
	return logging.New(level, cfg.Log.Development)
}

// open loads the workspace. A non-nil reg receives the service metrics.
func (o *globalOptions) open(reg prometheus.Registerer, alwaysLog bool) (*workspace, error) {
	root, cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := o.logger(cfg, alwaysLog)
	if err != nil {
		return nil, err
	}

	roster, err := accounts.Load(root)
	if err != nil {
		return nil, err
	}
	entries, err := ledger.OpenFileStore(root)
	if err != nil {
		return nil, err
	}
	sessions, err := shift.OpenFileStore(root)
	if err != nil {
		return nil, err
	}

	float, err := cfg.InitialFloat()
	if err != nil {
		return nil, err
	}
	tolerance, err := cfg.Tolerance()
	if err != nil {
		return nil, err
	}
	table, err := cfg.ConversionTable()
	if err != nil {
		return nil, err
	}
	faces, err := cfg.DenominationsFor(cfg.Currency.Base)
	if err != nil {
		return nil, err
	}

	var collector *metrics.Collector
	if reg != nil {
		if collector, err = metrics.New(reg); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}

	svc, err := cashbox.New(cashbox.Options{
		Ledger:        entries,
		Sessions:      sessions,
		Accounts:      roster,
		BaseCurrency:  cfg.Currency.Base,
		InitialFloat:  float,
		Tolerance:     tolerance,
		Conversions:   table,
		Denominations: faces,
		DefaultUser:   cfg.Operator.DefaultUser,
		Logger:        log,
		Metrics:       collector,
		Activity:      activitylog.FileSink{Root: root},
	})
	if err != nil {
		return nil, err
	}

	return &workspace{root: root, cfg: cfg, roster: roster, svc: svc, log: log}, nil
}

// commit snapshots the data files when git.auto_commit is on and the data
// directory is a repository. It returns "" when nothing was committed.
func (w *workspace) commit(message string) (string, error) {
	return autoCommit(w.root, w.cfg, message)
}

func autoCommit(root string, cfg *config.Config, message string) (string, error) {
	if !cfg.Git.AutoCommit || !gitops.IsRepo(root) {
		return "", nil
	}
	c := gitops.Committer{Dir: root, AuthorName: cfg.Git.AuthorName, AuthorEmail: cfg.Git.AuthorEmail}
	return c.Commit(message, dataPaths...)
}

// dataPaths are the directories auto-commit stages.
var dataPaths = []string{"accounts", "ledger", "logs"}
