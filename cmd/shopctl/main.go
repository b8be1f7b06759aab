package main

import (
	"fmt"
	"os"

	"github.com/ikkim/animestore-backend/config"
	"github.com/ikkim/animestore-backend/internal/db"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:           "shopctl",
		Short:         "Operator tool for the anime store backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg = loaded
			logger.Initialize(logger.ConfigFor(cfg.Server.Environment))
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(migrateCmd, seedCmd, promoteAdminCmd, exportOrdersCmd, importProductsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// withDB opens the configured database for the duration of fn.
func withDB(fn func(database *gorm.DB) error) error {
	database, err := db.Open(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()
	return fn(database)
}
