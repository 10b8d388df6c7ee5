package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAssetsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "assets",
		Short: "List Lunch Money assets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runAssets(cmd, a)
		},
	}
}

func runAssets(cmd *cobra.Command, a *app) error {
	assets, err := a.ledger.Assets(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing assets: %w", err)
	}
	for _, asset := range assets {
		a.console.Asset(asset)
	}
	return nil
}
