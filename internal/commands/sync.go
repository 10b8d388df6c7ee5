package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lunchsync/lunchsync/internal/syncer"
	"github.com/lunchsync/lunchsync/internal/synclog"
)

const syncLong = `Sync movements and balances into Lunch Money.

Each account summary counts transactions as new (inserted now) or existing
(Lunch Money already holds the external_id). Movements in an unsupported
currency, transactions Lunch Money rejects for any other reason, and failed
requests are reported as skipped, never as existing. Skipped items are logged
with the reason at warn level.`

func newSyncCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [bank] [account]",
		Short: "Sync movements and balances into Lunch Money",
		Long:  syncLong,
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			bank, account := filterArgs(args)
			return runSync(cmd, a, bank, account)
		},
	}
}

func runSync(cmd *cobra.Command, a *app, bank, account string) error {
	jobs, err := a.jobs(bank, account)
	if err != nil {
		return err
	}

	svc := a.service()
	w, err := a.window(svc)
	if err != nil {
		return err
	}
	a.logger.Info("starting sync", "accounts", len(jobs), "since", w.Start.Format(time.DateOnly), "until", w.End.Format(time.DateOnly))

	summaries, runErr := svc.Run(cmd.Context(), jobs, w)

	if path := a.cfg.SyncSettings.LogFile; path != "" && len(summaries) > 0 {
		if err := synclog.Append(path, logEntries(time.Now(), summaries)); err != nil {
			a.logger.Warn("failed to write sync log", "path", path, "err", err)
		}
	}
	return runErr
}

func logEntries(at time.Time, summaries []syncer.Summary) []synclog.Entry {
	entries := make([]synclog.Entry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, synclog.Entry{
			Timestamp:  at.UTC().Truncate(time.Second),
			Bank:       s.Bank,
			Account:    s.Account,
			AssetID:    s.AssetID,
			Fetched:    s.Fetched,
			Inserted:   len(s.Inserted),
			Duplicates: s.Duplicates,
			Skipped:    s.Skipped(),
			Balance:    s.Balance.String(),
			Currency:   string(s.Currency),
		})
	}
	return entries
}
