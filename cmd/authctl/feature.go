package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/annotation-auth/internal/features"
	"github.com/spec-kit/annotation-auth/internal/persistence"
)

func newFeatureCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Inspect and toggle feature flags stored in Redis",
	}
	cmd.AddCommand(newFeatureGetCmd(), newFeatureSetCmd())
	return cmd
}

func openFlags(cmd *cobra.Command) (*features.Store, func(), error) {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return nil, nil, err
	}
	redis := persistence.NewRedis(cmd.Context(), cfg.Redis, logger)
	store := features.NewStore(redis.Cmdable(), map[string]bool{
		features.DirectLinking: cfg.Features.DirectLinking,
	}, logger)
	return store, func() {
		redis.Close()
		_ = logger.Sync()
	}, nil
}

func newFeatureGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print the effective value of a feature flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags, closeFn, err := openFlags(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintln(cmd.OutOrStdout(), flags.Enabled(cmd.Context(), args[0]))
			return nil
		},
	}
}

func newFeatureSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <true|false>",
		Short: "Store a feature flag value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid flag value %q: %w", args[1], err)
			}
			flags, closeFn, err := openFlags(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			return flags.Set(cmd.Context(), args[0], enabled)
		},
	}
}
