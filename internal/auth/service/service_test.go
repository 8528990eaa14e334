package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	"github.com/smallbiznis/invoicedesk/internal/auth/repository"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) (authdomain.Service, *clock.FakeClock) {
	t.Helper()

	dbConn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}))

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC))
	return New(ServiceParam{
		Log:         zap.NewNop(),
		Repo:        repo,
		SessionRepo: sessionRepo,
		GenID:       node,
		Clock:       fc,
	}), fc
}

func createAlice(t *testing.T, svc authdomain.Service) *authdomain.User {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), authdomain.CreateUserRequest{
		Email:    "Alice@Example.com",
		Password: "correct-password",
	})
	require.NoError(t, err)
	return user
}

func TestCreateUserNormalizesAndDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	user := createAlice(t, svc)

	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, authdomain.RoleUser, user.Role)
	assert.NotEqual(t, "correct-password", user.PasswordHash)
}

func TestCreateUserRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	createAlice(t, svc)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "alice@example.com", Password: "another-password"})
	assert.ErrorIs(t, err, authdomain.ErrUserExists)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "not-an-email", Password: "long-enough"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidEmail)

	_, err = svc.CreateUser(ctx, authdomain.CreateUserRequest{Email: "bob@example.com", Password: "short"})
	assert.ErrorIs(t, err, authdomain.ErrWeakPassword)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	createAlice(t, svc)

	_, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)
}

func TestLoginUnknownEmailAndMissingFields(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, authdomain.LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, authdomain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, authdomain.LoginRequest{Email: "ghost@example.com"})
	assert.ErrorIs(t, err, authdomain.ErrMissingCredentials)
}

func TestLoginAuthenticateLogout(t *testing.T) {
	svc, fc := newTestService(t)
	alice := createAlice(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, authdomain.LoginRequest{Email: " alice@example.com ", Password: "correct-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RawToken)
	assert.Equal(t, fc.Now().Add(30*24*time.Hour), res.ExpiresAt)
	assert.Equal(t, alice.ID, res.User.ID)

	user, err := svc.Authenticate(ctx, res.RawToken)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	require.NoError(t, svc.Logout(ctx, res.RawToken))
	_, err = svc.Authenticate(ctx, res.RawToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
	assert.ErrorIs(t, svc.Logout(ctx, res.RawToken), authdomain.ErrInvalidSession)
}

func TestAuthenticateExpiredAndUnknownTokens(t *testing.T) {
	svc, fc := newTestService(t)
	createAlice(t, svc)
	ctx := context.Background()

	res, err := svc.Login(ctx, authdomain.LoginRequest{Email: "alice@example.com", Password: "correct-password"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)

	fc.Advance(30 * 24 * time.Hour)
	_, err = svc.Authenticate(ctx, res.RawToken)
	assert.ErrorIs(t, err, authdomain.ErrInvalidSession)
}

func TestBootstrapOnlyOnEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	admin, err := svc.Bootstrap(ctx, authdomain.CreateUserRequest{
		Email:    "admin@example.com",
		Password: "admin-password",
		Name:     "Administrator",
	})
	require.NoError(t, err)
	assert.Equal(t, authdomain.RoleAdmin, admin.Role)
	assert.Equal(t, "Administrator", admin.Name)

	_, err = svc.Bootstrap(ctx, authdomain.CreateUserRequest{Email: "second@example.com", Password: "admin-password"})
	assert.ErrorIs(t, err, authdomain.ErrAdminExists)
}
