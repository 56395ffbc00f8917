package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hkloans/loantrack/pkg/api"
	"github.com/hkloans/loantrack/pkg/config"
	"github.com/hkloans/loantrack/pkg/lending"
	"github.com/hkloans/loantrack/pkg/store"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "loantrack",
		Short: "Loan tracking service",
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			server := api.NewServer(cfg.ServerPort, lending.NewService(st), st)
			log.Printf("listening on :%s (%s)", cfg.ServerPort, cfg.DBDriver)
			return server.Run(ctx)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			// Opening a store applies the schema.
			st, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			log.Printf("schema up to date (%s)", cfg.DBDriver)
			return nil
		},
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Storage, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return store.NewPostgresStore(ctx, store.PostgresConnectionInfo{
			Host:     cfg.PGHost,
			Port:     cfg.PGPort,
			User:     cfg.PGUser,
			Password: cfg.PGPassword,
			DB:       cfg.PGDB,
			SSLMode:  cfg.PGSSLMode,
		})
	default:
		return store.NewSQLiteStore(cfg.SQLitePath)
	}
}
