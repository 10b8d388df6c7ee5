package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lunchsync/lunchsync/internal/config"
	"github.com/lunchsync/lunchsync/internal/fintoc"
	"github.com/lunchsync/lunchsync/internal/httpjson"
	"github.com/lunchsync/lunchsync/internal/lunchmoney"
	"github.com/lunchsync/lunchsync/internal/report"
	"github.com/lunchsync/lunchsync/internal/syncer"
)

type rootOptions struct {
	configPath string
	debug      bool
}

// app holds everything a command needs for one run.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	fintoc  *fintoc.Client
	ledger  *lunchmoney.Client
	console *report.Console
}

func newLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, TimeFormat: time.Kitchen})
	if debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// load reads the config and builds the shared HTTP client and both API clients.
func (o *rootOptions) load(cmd *cobra.Command) (*app, error) {
	logger := newLogger(cmd.ErrOrStderr(), o.debug)

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", o.configPath, "banks", len(cfg.Banks))

	httpClient := httpjson.NewClient(cfg.SyncSettings.HTTPTimeout, logger)
	return &app{
		cfg:     cfg,
		logger:  logger,
		fintoc:  fintoc.NewClient(httpClient, cfg.Endpoints.Fintoc, logger),
		ledger:  lunchmoney.NewClient(httpClient, cfg.Endpoints.LunchMoney, cfg.Tokens.LunchMoneyAPIToken, logger),
		console: report.NewConsole(cmd.OutOrStdout()),
	}, nil
}

func (a *app) service() *syncer.Service {
	return syncer.NewService(a.fintoc, a.ledger, a.logger, syncer.WithReporter(a.console))
}

// jobs resolves the bank and account filters against the config.
func (a *app) jobs(bankName, accountName string) ([]syncer.Job, error) {
	sel := a.cfg.Select(bankName, accountName)
	if len(sel) == 0 {
		return nil, fmt.Errorf("no configured account matches bank %q account %q", bankName, accountName)
	}
	jobs := make([]syncer.Job, 0, len(sel))
	for _, s := range sel {
		jobs = append(jobs, syncer.Job{
			Bank:    s.Bank.Name,
			Account: s.Account.Name,
			Credentials: fintoc.Credentials{
				SecretToken: a.cfg.Tokens.FintocSecretToken,
				LinkToken:   s.Bank.LinkToken,
				AccountID:   s.Account.FintocAccountID,
			},
			AssetID:       s.Account.LunchMoneyAssetID,
			AccountType:   s.Account.Type,
			SkipMovements: s.Account.SkipMovements,
		})
	}
	return jobs, nil
}

func (a *app) window(svc *syncer.Service) (syncer.Window, error) {
	lookback, err := a.cfg.Lookback()
	if err != nil {
		return syncer.Window{}, err
	}
	offset, err := a.cfg.EndOffset()
	if err != nil {
		return syncer.Window{}, err
	}
	return svc.Window(lookback, offset)
}

func filterArgs(args []string) (bank, account string) {
	if len(args) > 0 {
		bank = args[0]
	}
	if len(args) > 1 {
		account = args[1]
	}
	return bank, account
}
