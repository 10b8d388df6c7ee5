// Package syncer drives a sync run: balance, movements, normalization,
// batched insertion and the final balance update, one account at a time.
package syncer

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lunchsync/lunchsync/internal/fintoc"
	"github.com/lunchsync/lunchsync/internal/importer"
	"github.com/lunchsync/lunchsync/internal/lunchmoney"
	"github.com/lunchsync/lunchsync/internal/model"
	"github.com/lunchsync/lunchsync/internal/money"
)

// BatchSize is the number of transactions handed to the ledger per batch.
const BatchSize = 50

// Provider is the banking-data side of a sync.
type Provider interface {
	Movements(ctx context.Context, creds fintoc.Credentials, since, until time.Time) ([]model.Movement, error)
	Balance(ctx context.Context, creds fintoc.Credentials, accountType model.AccountType) (money.Amount, money.Currency, error)
}

// Ledger is the bookkeeping side of a sync.
type Ledger interface {
	InsertBatch(ctx context.Context, txs []model.Transaction) lunchmoney.BatchResult
	UpdateAssetBalance(ctx context.Context, assetID int64, amount money.Amount, cur money.Currency) error
}

// Job is one resolved account to sync.
type Job struct {
	Bank          string
	Account       string
	Credentials   fintoc.Credentials
	AssetID       int64
	AccountType   model.AccountType
	SkipMovements bool
}

// Window is the time range movements are fetched for.
type Window struct {
	Start time.Time
	End   time.Time
}

// Summary is the outcome of syncing one account.
type Summary struct {
	Bank             string
	Account          string
	AssetID          int64
	Window           Window
	MovementsSkipped bool
	Fetched          int
	NormalizeFailed  int
	Inserted         []int64
	Duplicates       int
	Rejected         int
	Failed           int
	Balance          money.Amount
	Currency         money.Currency
}

// Skipped counts movements that were neither inserted nor recognized as duplicates.
func (s Summary) Skipped() int { return s.NormalizeFailed + s.Rejected + s.Failed }

// Reporter receives progress and results. Implementations must not block.
type Reporter interface {
	AccountStarted(job Job)
	BalanceFetched(job Job, amount money.Amount, cur money.Currency)
	MovementsFetched(job Job, count int)
	BatchInserted(job Job, done, total int)
	AccountFinished(summary Summary)
}

// Service runs syncs against a provider and a ledger.
type Service struct {
	provider Provider
	ledger   Ledger
	reporter Reporter
	logger   *log.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReporter sets the progress sink.
func WithReporter(r Reporter) Option {
	return func(s *Service) { s.reporter = r }
}

// NewService creates a sync Service.
func NewService(provider Provider, ledger Ledger, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		ledger:   ledger,
		reporter: NopReporter{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Window resolves the sync window: end is now minus endOffset, start is now minus lookback.
func (s *Service) Window(lookback, endOffset time.Duration) (Window, error) {
	now := s.now().UTC()
	w := Window{Start: now.Add(-lookback), End: now.Add(-endOffset)}
	if !w.Start.Before(w.End) {
		return Window{}, fmt.Errorf("empty sync window: start %s is not before end %s",
			w.Start.Format(time.DateTime), w.End.Format(time.DateTime))
	}
	return w, nil
}

// Run syncs every job in order and stops at the first fatal error. The
// summaries of the accounts completed before the failure are returned with it.
func (s *Service) Run(ctx context.Context, jobs []Job, w Window) ([]Summary, error) {
	var summaries []Summary
	for _, job := range jobs {
		sum, err := s.SyncAccount(ctx, job, w)
		if err != nil {
			return summaries, fmt.Errorf("syncing %s - %s: %w", job.Bank, job.Account, err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// SyncAccount syncs a single account. Balance fetch and update failures are
// fatal; movements that fail to normalize or insert are logged and counted.
func (s *Service) SyncAccount(ctx context.Context, job Job, w Window) (Summary, error) {
	logger := s.logger.With("bank", job.Bank, "account", job.Account)
	s.reporter.AccountStarted(job)

	sum := Summary{Bank: job.Bank, Account: job.Account, AssetID: job.AssetID, Window: w}

	balance, cur, err := s.provider.Balance(ctx, job.Credentials, job.AccountType)
	if err != nil {
		return sum, fmt.Errorf("fetching balance: %w", err)
	}
	sum.Balance, sum.Currency = balance, cur
	s.reporter.BalanceFetched(job, balance, cur)

	if job.SkipMovements {
		logger.Info("skipping movements per configuration")
		sum.MovementsSkipped = true
	} else {
		txns, err := s.fetchTransactions(ctx, job, w, &sum, logger)
		if err != nil {
			return sum, err
		}
		res := s.insert(ctx, job, txns)
		sum.Inserted = res.IDs
		sum.Duplicates = res.Duplicates
		sum.Rejected = res.Rejected
		sum.Failed = res.Failed
	}

	if err := s.ledger.UpdateAssetBalance(ctx, job.AssetID, balance, cur); err != nil {
		return sum, fmt.Errorf("updating balance: %w", err)
	}
	logger.Debug("updated asset balance", "asset", job.AssetID, "balance", balance.String(), "currency", cur)

	s.reporter.AccountFinished(sum)
	return sum, nil
}

// Preview fetches and normalizes movements without writing anything.
func (s *Service) Preview(ctx context.Context, job Job, w Window) ([]model.Transaction, error) {
	logger := s.logger.With("bank", job.Bank, "account", job.Account)
	var sum Summary
	return s.fetchTransactions(ctx, job, w, &sum, logger)
}

func (s *Service) fetchTransactions(ctx context.Context, job Job, w Window, sum *Summary, logger *log.Logger) ([]model.Transaction, error) {
	movements, err := s.provider.Movements(ctx, job.Credentials, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetching movements: %w", err)
	}
	sum.Fetched = len(movements)
	s.reporter.MovementsFetched(job, len(movements))

	txns, errs := importer.NormalizeAll(movements, job.AssetID)
	for _, err := range errs {
		logger.Warn("skipping movement", "err", err)
	}
	sum.NormalizeFailed = len(errs)
	return txns, nil
}

// insert folds the per-batch results into one.
func (s *Service) insert(ctx context.Context, job Job, txns []model.Transaction) lunchmoney.BatchResult {
	var total lunchmoney.BatchResult
	done := 0
	for batch := range slices.Chunk(txns, BatchSize) {
		total = total.Merge(s.ledger.InsertBatch(ctx, batch))
		done += len(batch)
		s.reporter.BatchInserted(job, done, len(txns))
	}
	return total
}
