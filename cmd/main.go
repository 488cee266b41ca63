package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"PropertyManager/internal/config"
	"PropertyManager/internal/db"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "propmgr",
	Short: "Property & Contracts Manager web application",
	Long:  "propmgr serves the property manager dashboard behind an administrator login",
	RunE: func(cmd *cobra.Command, args []string) error {
		// без подкоманды — сразу сервер (так вызывает start.sh)
		return serveCmd.RunE(cmd, args)
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap: конфиг, база, миграции, администратор по умолчанию.
func bootstrap(ctx context.Context) (config.Config, *db.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}

	log.Println("Boot: opening database")
	store, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return config.Config{}, nil, err
	}

	created, err := store.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		_ = store.Close()
		return config.Config{}, nil, fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Printf("Boot: created administrator %s", cfg.Admin.Email)
	}
	return cfg, store, nil
}
