// Package cli implements the portfolioctl operator commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"craftfolio.dev/internal/config"
	"craftfolio.dev/internal/logging"
	"craftfolio.dev/internal/store"
)

// NewRootCmd builds the portfolioctl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolioctl",
		Short: "portfolioctl - operator tools for the portfolio API",
		Long: `portfolioctl manages the data behind the portfolio API: seeding content,
reading contact messages, running migrations and hashing admin passwords.

Configuration is read the same way the server reads it: $PORTFOLIO_CONFIG or
./config.yaml, then environment variables.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "Path to a YAML config file (overrides $PORTFOLIO_CONFIG)")

	root.AddCommand(
		SeedCmd(),
		HashPasswordCmd(),
		MessagesCmd(),
		MigrateCmd(),
	)
	return root
}

// loadConfig reads configuration, honoring the --config flag
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

// openStore connects to the configured store, running migrations
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	s, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, store.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Database.Driver, err)
	}
	return s, nil
}
