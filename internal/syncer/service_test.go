package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunchsync/lunchsync/internal/fintoc"
	"github.com/lunchsync/lunchsync/internal/lunchmoney"
	"github.com/lunchsync/lunchsync/internal/model"
	"github.com/lunchsync/lunchsync/internal/money"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeProvider struct {
	movements  []model.Movement
	balance    money.Amount
	currency   money.Currency
	balanceErr error
	moveErr    error

	movementCalls int
	since, until  time.Time
}

func (p *fakeProvider) Movements(_ context.Context, _ fintoc.Credentials, since, until time.Time) ([]model.Movement, error) {
	p.movementCalls++
	p.since, p.until = since, until
	if p.moveErr != nil {
		return nil, p.moveErr
	}
	return p.movements, nil
}

func (p *fakeProvider) Balance(context.Context, fintoc.Credentials, model.AccountType) (money.Amount, money.Currency, error) {
	if p.balanceErr != nil {
		return money.Amount{}, "", p.balanceErr
	}
	return p.balance, p.currency, nil
}

// fakeLedger remembers external ids and reports repeats as duplicates.
type fakeLedger struct {
	seen      map[string]bool
	nextID    int64
	batches   []int
	updates   []string
	updateErr error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{seen: map[string]bool{}, nextID: 1000}
}

func (l *fakeLedger) InsertBatch(_ context.Context, txs []model.Transaction) lunchmoney.BatchResult {
	l.batches = append(l.batches, len(txs))
	var res lunchmoney.BatchResult
	for _, tx := range txs {
		if l.seen[tx.ExternalID] {
			res.Duplicates++
			continue
		}
		l.seen[tx.ExternalID] = true
		l.nextID++
		res.IDs = append(res.IDs, l.nextID)
	}
	return res
}

func (l *fakeLedger) UpdateAssetBalance(_ context.Context, assetID int64, amount money.Amount, cur money.Currency) error {
	l.updates = append(l.updates, fmt.Sprintf("%d %s %s", assetID, amount, cur))
	return l.updateErr
}

type recordingReporter struct {
	NopReporter
	progress []int
	finished []Summary
}

func (r *recordingReporter) BatchInserted(_ Job, done, _ int) { r.progress = append(r.progress, done) }
func (r *recordingReporter) AccountFinished(s Summary)        { r.finished = append(r.finished, s) }

func movements(n int, currency string) []model.Movement {
	out := make([]model.Movement, n)
	for i := range out {
		out[i] = model.Movement{
			ID:          fmt.Sprintf("mov_%03d", i),
			Amount:      -int64(1000 + i),
			PostDate:    fixedNow.AddDate(0, 0, -1),
			Description: "COMPRA NACIONAL SHOP",
			Currency:    currency,
			Type:        model.MovementOther,
		}
	}
	return out
}

func testJob() Job {
	return Job{
		Bank:        "Banco",
		Account:     "Corriente",
		Credentials: fintoc.Credentials{SecretToken: "sk", LinkToken: "lt", AccountID: "acc"},
		AssetID:     77,
		AccountType: model.AccountTypeChecking,
	}
}

func newTestService(p Provider, l Ledger, opts ...Option) *Service {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewService(p, l, log.New(io.Discard), opts...)
}

func mustAmount(t *testing.T, s string) money.Amount {
	t.Helper()
	a, err := money.ParseAmount(s)
	require.NoError(t, err)
	return a
}

func TestWindow(t *testing.T) {
	svc := newTestService(&fakeProvider{}, newFakeLedger())

	w, err := svc.Window(30*24*time.Hour, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), w.Start)
	assert.Equal(t, fixedNow.AddDate(0, 0, -1), w.End)

	w, err = svc.Window(7*24*time.Hour, 0)
	require.NoError(t, err)
	assert.Equal(t, fixedNow, w.End)
}

func TestWindow_Empty(t *testing.T) {
	svc := newTestService(&fakeProvider{}, newFakeLedger())

	_, err := svc.Window(24*time.Hour, 48*time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty sync window")

	_, err = svc.Window(24*time.Hour, 24*time.Hour)
	require.Error(t, err)
}

func TestSyncAccount_BatchesAndBalance(t *testing.T) {
	p := &fakeProvider{movements: movements(120, "CLP"), balance: mustAmount(t, "150000"), currency: money.CLP}
	l := newFakeLedger()
	rep := &recordingReporter{}
	svc := newTestService(p, l, WithReporter(rep))

	w, err := svc.Window(30*24*time.Hour, 0)
	require.NoError(t, err)

	sum, err := svc.SyncAccount(context.Background(), testJob(), w)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 50, 20}, l.batches)
	assert.Equal(t, []int{50, 100, 120}, rep.progress)
	assert.Equal(t, w.Start, p.since)
	assert.Equal(t, w.End, p.until)

	assert.Equal(t, 120, sum.Fetched)
	assert.Len(t, sum.Inserted, 120)
	assert.Zero(t, sum.Duplicates)
	assert.Zero(t, sum.Skipped())
	assert.Equal(t, "150000.0000", sum.Balance.String())
	assert.Equal(t, money.CLP, sum.Currency)

	assert.Equal(t, []string{"77 150000.0000 CLP"}, l.updates)
	require.Len(t, rep.finished, 1)
	assert.Equal(t, sum.Fetched, rep.finished[0].Fetched)
}

func TestSyncAccount_SecondRunIsAllDuplicates(t *testing.T) {
	p := &fakeProvider{movements: movements(60, "USD"), balance: mustAmount(t, "12.34"), currency: money.USD}
	l := newFakeLedger()
	svc := newTestService(p, l)
	w, err := svc.Window(7*24*time.Hour, 0)
	require.NoError(t, err)

	first, err := svc.SyncAccount(context.Background(), testJob(), w)
	require.NoError(t, err)
	assert.Len(t, first.Inserted, 60)

	second, err := svc.SyncAccount(context.Background(), testJob(), w)
	require.NoError(t, err)
	assert.Empty(t, second.Inserted)
	assert.Equal(t, 60, second.Duplicates)
	assert.Len(t, l.updates, 2, "balance is updated on every run")
}

func TestSyncAccount_SkipMovements(t *testing.T) {
	p := &fakeProvider{movements: movements(5, "CLP"), balance: mustAmount(t, "1"), currency: money.CLP}
	l := newFakeLedger()
	svc := newTestService(p, l)

	job := testJob()
	job.SkipMovements = true
	sum, err := svc.SyncAccount(context.Background(), job, Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	require.NoError(t, err)

	assert.True(t, sum.MovementsSkipped)
	assert.Zero(t, p.movementCalls)
	assert.Empty(t, l.batches)
	assert.Len(t, l.updates, 1)
}

func TestSyncAccount_UnsupportedCurrencyMovementsAreSkipped(t *testing.T) {
	ms := append(movements(3, "CLP"), movements(2, "GBP")...)
	ms[3].ID, ms[4].ID = "gbp_1", "gbp_2"
	p := &fakeProvider{movements: ms, balance: mustAmount(t, "10"), currency: money.CLP}
	l := newFakeLedger()
	svc := newTestService(p, l)

	sum, err := svc.SyncAccount(context.Background(), testJob(), Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Fetched)
	assert.Len(t, sum.Inserted, 3)
	assert.Equal(t, 2, sum.NormalizeFailed)
	assert.Equal(t, 2, sum.Skipped())
}

func TestSyncAccount_BalanceErrorIsFatal(t *testing.T) {
	p := &fakeProvider{balanceErr: errors.New("boom")}
	l := newFakeLedger()
	svc := newTestService(p, l)

	_, err := svc.SyncAccount(context.Background(), testJob(), Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching balance")
	assert.Zero(t, p.movementCalls)
	assert.Empty(t, l.updates)
}

func TestSyncAccount_MovementsErrorIsFatal(t *testing.T) {
	p := &fakeProvider{moveErr: fintoc.ErrNotArray, balance: mustAmount(t, "1"), currency: money.CLP}
	l := newFakeLedger()
	svc := newTestService(p, l)

	_, err := svc.SyncAccount(context.Background(), testJob(), Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	require.ErrorIs(t, err, fintoc.ErrNotArray)
	assert.Empty(t, l.batches)
	assert.Empty(t, l.updates, "no balance update after a failed fetch")
}

func TestSyncAccount_UpdateErrorIsFatal(t *testing.T) {
	p := &fakeProvider{balance: mustAmount(t, "1"), currency: money.CLP}
	l := newFakeLedger()
	l.updateErr = &lunchmoney.MismatchError{AssetID: 77, Field: "balance", Want: "1.0000", Got: "2.0000"}
	svc := newTestService(p, l)

	_, err := svc.SyncAccount(context.Background(), testJob(), Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	var merr *lunchmoney.MismatchError
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, err.Error(), "updating balance")
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	p := &fakeProvider{movements: movements(2, "CLP"), balance: mustAmount(t, "1"), currency: money.CLP}
	jobs := []Job{testJob(), testJob(), testJob()}
	jobs[1].Account = "Vista"
	jobs[2].Account = "Ahorro"

	calls := 0
	svc := newTestService(p, &failingLedger{Ledger: newFakeLedger(), failOn: 2, calls: &calls})

	sums, err := svc.Run(context.Background(), jobs, Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syncing Banco - Vista")
	assert.Len(t, sums, 1)
	assert.Equal(t, 2, calls, "third account never runs")
}

type failingLedger struct {
	Ledger
	failOn int
	calls  *int
}

func (f *failingLedger) UpdateAssetBalance(ctx context.Context, assetID int64, amount money.Amount, cur money.Currency) error {
	*f.calls++
	if *f.calls == f.failOn {
		return errors.New("ledger unavailable")
	}
	return f.Ledger.UpdateAssetBalance(ctx, assetID, amount, cur)
}

func TestPreview_DoesNotWrite(t *testing.T) {
	p := &fakeProvider{movements: movements(4, "CLP")}
	l := newFakeLedger()
	svc := newTestService(p, l)

	txns, err := svc.Preview(context.Background(), testJob(), Window{Start: fixedNow.Add(-time.Hour), End: fixedNow})
	require.NoError(t, err)
	require.Len(t, txns, 4)
	assert.Equal(t, "SHOP", txns[0].Payee)
	assert.Equal(t, int64(77), txns[0].AssetID)
	assert.Empty(t, l.batches)
	assert.Empty(t, l.updates)
}
