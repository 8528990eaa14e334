package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/memstore"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var errDown = errors.New("connection refused")

// downStore answers nothing.
type downStore struct{ *memstore.Store }

func (downStore) Ping(context.Context) error { return errDown }

// brokenStore pings fine but every operation fails.
type brokenStore struct {
	*memstore.Store
	calls int
}

func (b *brokenStore) List(context.Context, string) ([]domain.Invoice, error) {
	b.calls++
	return nil, errDown
}

func seeded() *memstore.Store {
	now := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)
	return memstore.New(domain.Invoice{ID: "1", InvoiceNumber: "INV-0001", CreatedBy: "alice", CreatedAt: now, UpdatedAt: now})
}

func TestRunPrefersReachableDurable(t *testing.T) {
	registry := metrics.NewRegistry()
	durable := seeded()
	l := New(durable, memstore.New(), zaptest.NewLogger(t), metrics.NewLedgerMetrics(registry))

	list, source, err := l.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDatabase, source)
	assert.Len(t, list, 1)
	count, err := testutil.GatherAndCount(registry, "invoicedesk_ledger_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunFallsBackWhenPingFails(t *testing.T) {
	registry := metrics.NewRegistry()
	l := New(downStore{memstore.New()}, seeded(), zaptest.NewLogger(t), metrics.NewLedgerMetrics(registry))

	inv, source, err := l.Get(context.Background(), "alice", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMock, source)
	assert.Equal(t, "INV-0001", inv.InvoiceNumber)
	count, err := testutil.GatherAndCount(registry, "invoicedesk_ledger_fallbacks_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRunFallsBackOnOperationError(t *testing.T) {
	durable := &brokenStore{Store: memstore.New()}
	l := New(durable, seeded(), zaptest.NewLogger(t), nil)

	list, source, err := l.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMock, source)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, durable.calls, "durable store is tried exactly once")
}

func TestRunFallsBackOnNotFound(t *testing.T) {
	l := New(memstore.New(), seeded(), zaptest.NewLogger(t), nil)

	inv, source, err := l.Get(context.Background(), "alice", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMock, source)
	assert.Equal(t, "1", inv.ID)
}

func TestRunReturnsFallbackError(t *testing.T) {
	l := New(downStore{memstore.New()}, memstore.New(), zaptest.NewLogger(t), nil)

	_, source, err := l.Delete(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	assert.Equal(t, domain.SourceMock, source)
}

func TestRunWithoutDurable(t *testing.T) {
	l := New(nil, seeded(), nil, nil)

	_, source, err := l.List(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceMock, source)
	assert.False(t, l.DurableReachable(context.Background()))
}

func TestRoutingIsDecidedPerCall(t *testing.T) {
	durable := &toggleStore{Store: seeded()}
	l := New(durable, memstore.New(), zaptest.NewLogger(t), nil)
	ctx := context.Background()

	durable.down = true
	_, source, _ := l.List(ctx, "alice")
	assert.Equal(t, domain.SourceMock, source)

	durable.down = false
	_, source, _ = l.List(ctx, "alice")
	assert.Equal(t, domain.SourceDatabase, source)
}

type toggleStore struct {
	*memstore.Store
	down bool
}

func (s *toggleStore) Ping(ctx context.Context) error {
	if s.down {
		return errDown
	}
	return s.Store.Ping(ctx)
}
