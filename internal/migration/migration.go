package migration

import (
	"context"
	"errors"
	"fmt"

	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	"github.com/smallbiznis/invoicedesk/internal/config"
	invoicerepository "github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Models lists every table owned by the relational store.
func Models() []any {
	return []any{
		&authdomain.User{},
		&authdomain.Session{},
		&invoicerepository.Invoice{},
	}
}

// RunMigrations creates or updates the relational schema.
func RunMigrations(ctx context.Context, conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if err := conn.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// EnsureAdmin creates the configured admin account while no user exists yet.
// It reports whether an account was created.
func EnsureAdmin(ctx context.Context, svc authdomain.Service, cfg config.BootstrapConfig) (bool, error) {
	if cfg.AdminEmail == "" {
		return false, nil
	}

	_, err := svc.Bootstrap(ctx, authdomain.CreateUserRequest{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	})
	if errors.Is(err, authdomain.ErrAdminExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Run migrates the schema and seeds the admin account. A database that is
// down at startup is logged, not fatal: invoices keep working from memory.
func Run(ctx context.Context, conn *gorm.DB, svc authdomain.Service, cfg config.Config, log *zap.Logger) {
	log = log.Named("migration")

	if err := RunMigrations(ctx, conn); err != nil {
		log.Warn("schema migration skipped", zap.Error(err))
		return
	}

	created, err := EnsureAdmin(ctx, svc, cfg.Bootstrap)
	if err != nil {
		log.Warn("admin bootstrap failed", zap.String("email", cfg.Bootstrap.AdminEmail), zap.Error(err))
		return
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.Bootstrap.AdminEmail))
	}
}
