package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/annotation-auth/internal/config"
	"github.com/spec-kit/annotation-auth/internal/observability"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "authctl",
		Short:        "Manage annotation service credentials",
		Long:         "authctl issues and verifies session tokens and creates API tokens\nusing the same environment configuration as the API server.",
		SilenceUsage: true,
	}
	root.AddCommand(newTokenCmd(), newSessionCmd(), newFeatureCmd())
	return root
}

func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	// Keep informational logs out of command output.
	cfg.Logger.Level = "warn"
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
