// Package cli implements pactctl, the operator tool of a PactPal deployment.
package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/pactpal-server/database"
	"github.com/dtroode/pactpal-server/internal/config"
	"github.com/dtroode/pactpal-server/internal/logger"
	"github.com/dtroode/pactpal-server/internal/repository/local"
	"github.com/dtroode/pactpal-server/internal/service"
	"github.com/dtroode/pactpal-server/internal/storage"
)

// Deps are the hooks the commands reach the outside world through.
type Deps struct {
	LoadConfig  func() (*config.Config, error)
	OpenStorage func(ctx context.Context, cfg *config.Config) (storage.Backend, error)
	Migrate     func(ctx context.Context, dsn string) error
	Version     func(ctx context.Context, dsn string) (int64, error)
}

func DefaultDeps() Deps {
	return Deps{
		LoadConfig:  config.NewConfig,
		OpenStorage: storage.Open,
		Migrate:     database.Migrate,
		Version:     database.Version,
	}
}

func NewRootCommand(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:           "pactctl",
		Short:         "Operate a PactPal deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newMigrateCommand(deps),
		newLogsCommand(deps),
		newUsersCommand(deps),
	)
	return root
}

func newMigrateCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the schema migrations of the remote agreements table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.Database.DSN == "" {
				return fmt.Errorf("DATABASE_DSN is not set")
			}

			if err := deps.Migrate(cmd.Context(), cfg.Database.DSN); err != nil {
				return err
			}
			version, err := deps.Version(cmd.Context(), cfg.Database.DSN)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema is at version %d\n", version)
			return nil
		},
	}
}

func newLogsCommand(deps Deps) *cobra.Command {
	var clearLog bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the access log of the local tier, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd.Context(), deps, func(backend storage.Backend) error {
				accessLog := service.NewAccessLog(local.NewAccessLogRepository(backend), logger.NewWithWriter(cmd.ErrOrStderr(), 4))

				if clearLog {
					if err := accessLog.Clear(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "access log cleared")
					return nil
				}

				entries, err := accessLog.ListRecent(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tUSER\tACTION\tAGREEMENT\tSUCCESS\tDETAILS")
				for _, e := range entries {
					details := e.Details
					if !e.Success {
						details = e.Error
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
						e.Timestamp.Format(time.RFC3339), e.UserName, e.Action, e.AgreementID, e.Success, details)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&clearLog, "clear", false, "clear the access log instead of printing it")
	return cmd
}

func newUsersCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the users of the local tier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd.Context(), deps, func(backend storage.Backend) error {
				users, err := local.NewUserRepository(backend).List(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tEMAIL\tNAME\tROLE")
				for _, u := range users {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Email, u.Name, u.Role)
				}
				return w.Flush()
			})
		},
	}
}

func withStorage(ctx context.Context, deps Deps, fn func(storage.Backend) error) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return err
	}
	backend, err := deps.OpenStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open local storage: %w", err)
	}
	defer backend.Close()

	return fn(backend)
}
