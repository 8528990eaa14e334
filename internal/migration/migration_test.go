package migration

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	authrepository "github.com/smallbiznis/invoicedesk/internal/auth/repository"
	authservice "github.com/smallbiznis/invoicedesk/internal/auth/service"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T, conn *gorm.DB) authdomain.Service {
	t.Helper()
	repo, sessions := authrepository.New(conn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return authservice.New(authservice.ServiceParam{
		Log:         zap.NewNop(),
		Repo:        repo,
		SessionRepo: sessions,
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, time.May, 4, 12, 0, 0, 0, time.UTC)),
	})
}

func TestRunMigrationsCreatesTables(t *testing.T) {
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)

	require.NoError(t, RunMigrations(context.Background(), conn))
	for _, table := range []string{"users", "sessions", "invoices"} {
		assert.True(t, conn.Migrator().HasTable(table), table)
	}

	// Re-running against an up-to-date schema is a no-op.
	require.NoError(t, RunMigrations(context.Background(), conn))
}

func TestRunMigrationsRequiresHandle(t *testing.T) {
	assert.Error(t, RunMigrations(context.Background(), nil))
}

func TestEnsureAdmin(t *testing.T) {
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(context.Background(), conn))
	svc := newAuthService(t, conn)

	created, err := EnsureAdmin(context.Background(), svc, config.BootstrapConfig{})
	require.NoError(t, err)
	assert.False(t, created)

	bootstrap := config.BootstrapConfig{
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-password",
		AdminName:     "Administrator",
	}
	created, err = EnsureAdmin(context.Background(), svc, bootstrap)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = EnsureAdmin(context.Background(), svc, bootstrap)
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	require.NoError(t, conn.Model(&authdomain.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEnsureAdminRejectsWeakPassword(t *testing.T) {
	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, RunMigrations(context.Background(), conn))

	_, err = EnsureAdmin(context.Background(), newAuthService(t, conn), config.BootstrapConfig{
		AdminEmail:    "admin@example.com",
		AdminPassword: "short",
	})
	assert.ErrorIs(t, err, authdomain.ErrWeakPassword)
}
