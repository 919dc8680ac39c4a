package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/annotation-auth/internal/auth"
	"github.com/spec-kit/annotation-auth/internal/domain"
)

var errSessionRejected = errors.New("session token rejected")

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Issue and verify session tokens",
	}
	cmd.AddCommand(newSessionIssueCmd(), newSessionVerifyCmd())
	return cmd
}

func newSessionIssueCmd() *cobra.Command {
	var (
		subject  string
		audience string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session token; omit --sub for an anonymous token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := loadRuntime()
			if err != nil {
				return err
			}
			codec, err := auth.NewSessionCodec([]byte(cfg.Auth.ClientSecret), auth.WithLeeway(cfg.Auth.Leeway()))
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("ttl") {
				ttl = cfg.Auth.SessionTTL()
			}
			token, _, err := codec.Issue(domain.Identity(subject), ttl, audience)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "sub", "", "identity to embed as subject")
	cmd.Flags().StringVar(&audience, "aud", "", "audience (host URL) the token is bound to")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("aud")
	return cmd
}

func newSessionVerifyCmd() *cobra.Command {
	var audience string
	cmd := &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a session token and print its subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime()
			if err != nil {
				return err
			}
			codec, err := auth.NewSessionCodec([]byte(cfg.Auth.ClientSecret),
				auth.WithLeeway(cfg.Auth.Leeway()),
				auth.WithLogger(logger),
			)
			if err != nil {
				return err
			}

			result := codec.Verify(args[0], audience)
			switch result.Status {
			case auth.SessionAuthenticated:
				fmt.Fprintln(cmd.OutOrStdout(), result.Subject)
			case auth.SessionAnonymous:
				fmt.Fprintln(cmd.OutOrStdout(), "(anonymous)")
			default:
				return errSessionRejected
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&audience, "aud", "", "expected audience")
	_ = cmd.MarkFlagRequired("aud")
	return cmd
}
