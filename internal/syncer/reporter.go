package syncer

import "github.com/lunchsync/lunchsync/internal/money"

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) AccountStarted(Job)                               {}
func (NopReporter) BalanceFetched(Job, money.Amount, money.Currency) {}
func (NopReporter) MovementsFetched(Job, int)                        {}
func (NopReporter) BatchInserted(Job, int, int)                      {}
func (NopReporter) AccountFinished(Summary)                          {}
