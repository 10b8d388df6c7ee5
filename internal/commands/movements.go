package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMovementsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "movements [bank] [account]",
		Short: "Preview normalized transactions without inserting them",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			bank, account := filterArgs(args)
			return runMovements(cmd, a, bank, account)
		},
	}
}

func runMovements(cmd *cobra.Command, a *app, bank, account string) error {
	jobs, err := a.jobs(bank, account)
	if err != nil {
		return err
	}

	svc := a.service()
	w, err := a.window(svc)
	if err != nil {
		return err
	}

	a.console.Period(w)
	out := cmd.OutOrStdout()
	for _, job := range jobs {
		if job.SkipMovements {
			continue
		}
		txns, err := svc.Preview(cmd.Context(), job, w)
		if err != nil {
			return fmt.Errorf("previewing %s - %s: %w", job.Bank, job.Account, err)
		}
		fmt.Fprintf(out, "%s - %s (%d)\n", job.Bank, job.Account, len(txns))
		for _, tx := range txns {
			a.console.Transaction(tx)
		}
	}
	return nil
}
