package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"bugtracker/backend/config"
	"bugtracker/backend/global"
	"bugtracker/backend/initialize"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		global.Logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "bugtracker",
		Short:         "Bug tracking REST backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the yaml configuration file")

	serve := newServeCommand(&configPath)
	cmd.RunE = serve.RunE
	cmd.Flags().AddFlagSet(serve.Flags())
	cmd.AddCommand(serve, newAccountsCommand(&configPath))
	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:           "serve",
		Short:         "Serve the HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "migrate the database schema on startup")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		app, err := initialize.Build(*configPath, func(cfg *config.Config) {
			if cmd.Flags().Changed("migrate") {
				cfg.DB.Migrate = migrate
			}
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := app.Close(); err != nil {
				global.Logger.Warn().Err(err).Msg("shutdown")
			}
		}()
		app.WatchConfig(*configPath)
		return app.Run(cmd.Context())
	}
	return cmd
}

func newAccountsCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Administer user accounts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set-active EMAIL true|false",
		Short: "Activate or deactivate an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("invalid active flag %q", args[1])
			}
			app, err := initialize.Build(*configPath, nil)
			if err != nil {
				return err
			}
			defer app.Close()
			if err := app.Accounts.SetActive(cmd.Context(), args[0], active); err != nil {
				return err
			}
			global.Logger.Info().Str("email", args[0]).Bool("active", active).Msg("account updated")
			return nil
		},
	})
	return cmd
}
