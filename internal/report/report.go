// Package report renders sync progress and results on a terminal.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/lunchsync/lunchsync/internal/model"
	"github.com/lunchsync/lunchsync/internal/money"
	"github.com/lunchsync/lunchsync/internal/syncer"
)

var (
	colorBlue    = lipgloss.Color("#89b4fa")
	colorGreen   = lipgloss.Color("#a6e3a1")
	colorRed     = lipgloss.Color("#f38ba8")
	colorOverlay = lipgloss.Color("#7f849c")
)

type styles struct {
	header  lipgloss.Style
	inflow  lipgloss.Style
	outflow lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
}

// Console writes colored lines to w. Colors are dropped when w is not a terminal.
type Console struct {
	w io.Writer
	s styles
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w: w,
		s: styles{
			header:  r.NewStyle().Foreground(colorBlue).Bold(true),
			inflow:  r.NewStyle().Foreground(colorGreen),
			outflow: r.NewStyle().Foreground(colorRed),
			muted:   r.NewStyle().Foreground(colorOverlay),
			ok:      r.NewStyle().Foreground(colorGreen).Bold(true),
		},
	}
}

var _ syncer.Reporter = (*Console)(nil)

func (c *Console) AccountStarted(job syncer.Job) {
	fmt.Fprintln(c.w, c.s.header.Render(fmt.Sprintf("Syncing %s - %s", job.Bank, job.Account)))
}

func (c *Console) BalanceFetched(_ syncer.Job, amount money.Amount, cur money.Currency) {
	fmt.Fprintf(c.w, "  balance %s\n", c.amount(amount, cur))
}

func (c *Console) MovementsFetched(_ syncer.Job, count int) {
	fmt.Fprintln(c.w, c.s.muted.Render(fmt.Sprintf("  fetched %d movements", count)))
}

func (c *Console) BatchInserted(_ syncer.Job, done, total int) {
	fmt.Fprintln(c.w, c.s.muted.Render(fmt.Sprintf("  processed %d/%d", done, total)))
}

func (c *Console) AccountFinished(sum syncer.Summary) {
	line := fmt.Sprintf("%s - %s: %d new, %d existing", sum.Bank, sum.Account, len(sum.Inserted), sum.Duplicates)
	if sum.MovementsSkipped {
		line = fmt.Sprintf("%s - %s: balance only", sum.Bank, sum.Account)
	}
	if n := sum.Skipped(); n > 0 {
		line += fmt.Sprintf(", %d skipped", n)
	}
	fmt.Fprintln(c.w, c.s.ok.Render("✓ "+line))
}

// Period prints the sync window in UTC.
func (c *Console) Period(w syncer.Window) {
	const layout = "2006-01-02 15:04:05"
	fmt.Fprintln(c.w, c.s.header.Render(fmt.Sprintf("Time period: %s UTC to %s UTC",
		w.Start.UTC().Format(layout), w.End.UTC().Format(layout))))
}

// Transaction prints one normalized transaction.
func (c *Console) Transaction(tx model.Transaction) {
	fmt.Fprintln(c.w, c.TransactionLine(tx))
}

// TransactionLine formats tx as "date - payee: amount (CUR)", green for
// inflows and red for outflows.
func (c *Console) TransactionLine(tx model.Transaction) string {
	cur, err := money.ParseCurrency(tx.Currency)
	if err != nil {
		return fmt.Sprintf("%s - %s: %s (%s)", tx.Date, tx.Payee, tx.Amount, tx.Currency)
	}
	return fmt.Sprintf("%s - %s: %s (%s)", tx.Date, tx.Payee, c.amount(tx.Amount, cur), cur)
}

// Asset prints one ledger asset as "id - name: balance".
func (c *Console) Asset(a model.Asset) {
	balance := a.Balance.String()
	if cur, err := money.ParseCurrency(a.Currency); err == nil {
		balance = money.Display(a.Balance, cur)
	}
	fmt.Fprintf(c.w, "%s - %s: %s\n", c.s.muted.Render(fmt.Sprint(a.ID)), a.Label(), balance)
}

func (c *Console) amount(a money.Amount, cur money.Currency) string {
	s := money.Display(a, cur)
	if a.IsNegative() {
		return c.s.outflow.Render(s)
	}
	return c.s.inflow.Render(s)
}
