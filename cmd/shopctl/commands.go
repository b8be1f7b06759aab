package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ikkim/animestore-backend/internal/app/model"
	"github.com/ikkim/animestore-backend/internal/app/repository"
	"github.com/ikkim/animestore-backend/internal/app/service"
	"github.com/ikkim/animestore-backend/internal/db"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	promoteRole string

	exportOut    string
	exportStatus string
	exportFrom   string
	exportTo     string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(db.Migrate)
		},
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *gorm.DB) error {
				if err := db.Migrate(database); err != nil {
					return err
				}
				return db.Seed(database)
			})
		},
	}

	promoteAdminCmd = &cobra.Command{
		Use:   "promote-admin <email>",
		Short: "Change the role of an existing account (admin by default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *gorm.DB) error {
				authService := service.NewAuthService(repository.NewUserRepository(database), nil, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
				user, err := authService.SetRole(args[0], model.UserRole(promoteRole))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
				return nil
			})
		},
	}

	exportOrdersCmd = &cobra.Command{
		Use:   "export-orders",
		Short: "Write orders to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := exportFilter(exportStatus, exportFrom, exportTo)
			if err != nil {
				return err
			}
			return withDB(func(database *gorm.DB) error {
				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}
				defer f.Close()

				exporter := service.NewOrderExporter(repository.NewOrderRepository(database))
				count, err := exporter.Export(cmd.Context(), filter, f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d orders to %s\n", count, exportOut)
				return nil
			})
		},
	}
)

func init() {
	promoteAdminCmd.Flags().StringVar(&promoteRole, "role", string(model.RoleAdmin), "role to assign (admin or user)")

	exportOrdersCmd.Flags().StringVarP(&exportOut, "out", "o", "orders.xlsx", "output file")
	exportOrdersCmd.Flags().StringVar(&exportStatus, "status", "", "only orders in this status")
	exportOrdersCmd.Flags().StringVar(&exportFrom, "from", "", "first day, YYYY-MM-DD")
	exportOrdersCmd.Flags().StringVar(&exportTo, "to", "", "last day, YYYY-MM-DD")
}

func exportFilter(status, from, to string) (repository.OrderFilter, error) {
	var filter repository.OrderFilter
	if status != "" {
		parsed, err := service.ParseOrderStatus(strings.ToUpper(status))
		if err != nil {
			return filter, fmt.Errorf("invalid status %q", status)
		}
		filter.Status = parsed
	}
	if from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, fmt.Errorf("invalid --from: %w", err)
		}
		filter.From = &t
	}
	if to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, fmt.Errorf("invalid --to: %w", err)
		}
		t = t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &t
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return filter, fmt.Errorf("--to is before --from")
	}
	return filter, nil
}
