package main

import (
	"context"

	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/migration"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and seed the configured admin",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	var (
		conn    *gorm.DB
		authsvc authdomain.Service
		cfg     config.Config
	)
	return withApp(cmd.Context(), func(ctx context.Context) error {
		if err := migration.RunMigrations(ctx, conn); err != nil {
			return err
		}
		cmd.Println("schema up to date")

		created, err := migration.EnsureAdmin(ctx, authsvc, cfg.Bootstrap)
		if err != nil {
			return err
		}
		if created {
			cmd.Printf("admin %s created\n", cfg.Bootstrap.AdminEmail)
		}
		return nil
	}, &conn, &authsvc, &cfg)
}
