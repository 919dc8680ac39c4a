package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/annotation-auth/internal/auth"
	"github.com/spec-kit/annotation-auth/internal/domain"
	"github.com/spec-kit/annotation-auth/internal/events"
	"github.com/spec-kit/annotation-auth/internal/service"
	"github.com/spec-kit/annotation-auth/internal/storage"
	"github.com/spec-kit/annotation-auth/internal/worker"
)

var errTokenNotFound = errors.New("no such api token")

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API tokens",
	}
	cmd.AddCommand(newTokenCreateCmd(), newTokenResolveCmd())
	return cmd
}

func newTokenCreateCmd() *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an API token for an identity and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, err := storage.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			sessions, err := auth.NewSessionCodec([]byte(cfg.Auth.ClientSecret))
			if err != nil {
				return err
			}
			bus := events.NewInMemoryDispatcher()
			worker.StartAuditWorker(bus, logger)

			svc := service.NewTokenService(cfg.Auth.SessionTTL(), service.TokenDependencies{
				Sessions:   sessions,
				Store:      store.Tokens,
				Dispatcher: bus,
				Logger:     logger,
			})
			token, err := svc.CreateAPIToken(cmd.Context(), domain.Identity(owner))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token.Value)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "identity that owns the token, e.g. acct:user@example.com")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newTokenResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <token>",
		Short: "Print the owner of an API token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			store, err := storage.Open(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			owner, ok, err := auth.NewAPITokenResolver(store.Tokens).Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return errTokenNotFound
			}
			fmt.Fprintln(cmd.OutOrStdout(), owner)
			return nil
		},
	}
}
