package commands

import (
	"github.com/spf13/cobra"

	"github.com/lunchsync/lunchsync/internal/buildinfo"
	"github.com/lunchsync/lunchsync/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "lunchsync",
		Short:   "Sync Fintoc bank movements and balances into Lunch Money",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newSyncCommand(opts))
	rootCmd.AddCommand(newMovementsCommand(opts))
	rootCmd.AddCommand(newAssetsCommand(opts))

	return rootCmd
}
