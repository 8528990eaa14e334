// Package ledger routes invoice store calls to the durable backend and
// retries them once on the in-memory fallback when that backend cannot serve.
package ledger

import (
	"context"
	"errors"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/observability/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Fallback reasons reported in logs and metrics.
const (
	reasonNoDurable  = "no_durable"
	reasonPingFailed = "ping_failed"
	reasonNotFound   = "not_found"
	reasonOpFailed   = "operation_failed"
)

// Op is one logical ledger operation, runnable against either backend.
type Op[T any] func(ctx context.Context, store domain.Store) (T, error)

// Ledger holds both backends. The routing decision is made per call and never cached.
type Ledger struct {
	durable  domain.Store
	fallback domain.Store
	log      *zap.Logger
	metrics  *metrics.LedgerMetrics
}

// New builds a Ledger. A nil durable store routes every call to the fallback.
func New(durable, fallback domain.Store, log *zap.Logger, m *metrics.LedgerMetrics) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{
		durable:  durable,
		fallback: fallback,
		log:      log.Named("ledger"),
		metrics:  m,
	}
}

// Run executes op on the durable store when it answers a ping. On a failed
// ping or any error from op, including not found, op is run once more on the
// fallback store and only that attempt's error is returned.
func Run[T any](ctx context.Context, l *Ledger, operation string, op Op[T]) (T, domain.Source, error) {
	ctx, end := tracing.Start(ctx, "ledger."+operation, attribute.String("ledger.operation", operation))
	log := logger.WithContext(ctx, l.log).With(zap.String("operation", operation))

	reason := reasonNoDurable
	if l.durable != nil {
		if err := l.durable.Ping(ctx); err != nil {
			reason = reasonPingFailed
			log.Warn("durable store unreachable", zap.Error(err))
		} else {
			out, err := op(ctx, l.durable)
			l.metrics.RecordOperation(operation, string(domain.SourceDatabase), outcome(err))
			if err == nil {
				end(nil)
				return out, domain.SourceDatabase, nil
			}
			reason = reasonOpFailed
			if errors.Is(err, domain.ErrInvoiceNotFound) {
				reason = reasonNotFound
				log.Debug("invoice missing from durable store")
			} else {
				log.Warn("durable store operation failed", zap.Error(err))
			}
		}
	}
	l.metrics.RecordFallback(operation, reason)

	out, err := op(ctx, l.fallback)
	l.metrics.RecordOperation(operation, string(domain.SourceMock), outcome(err))
	if err != nil {
		end(err)
		var zero T
		return zero, domain.SourceMock, err
	}
	log.Debug("served from fallback store", zap.String("reason", reason))
	end(nil)
	return out, domain.SourceMock, nil
}

// DurableReachable reports whether a durable store is configured and answers a ping.
func (l *Ledger) DurableReachable(ctx context.Context) bool {
	return l.durable != nil && l.durable.Ping(ctx) == nil
}

func (l *Ledger) List(ctx context.Context, owner string) ([]domain.Invoice, domain.Source, error) {
	return Run(ctx, l, "list", func(ctx context.Context, s domain.Store) ([]domain.Invoice, error) {
		return s.List(ctx, owner)
	})
}

func (l *Ledger) Get(ctx context.Context, owner, id string) (*domain.Invoice, domain.Source, error) {
	return Run(ctx, l, "get", func(ctx context.Context, s domain.Store) (*domain.Invoice, error) {
		return s.Get(ctx, owner, id)
	})
}

func (l *Ledger) Update(ctx context.Context, owner, id string, patch domain.Patch) (*domain.Invoice, domain.Source, error) {
	return Run(ctx, l, "update", func(ctx context.Context, s domain.Store) (*domain.Invoice, error) {
		return s.Update(ctx, owner, id, patch)
	})
}

func (l *Ledger) Delete(ctx context.Context, owner, id string) (*domain.Invoice, domain.Source, error) {
	return Run(ctx, l, "delete", func(ctx context.Context, s domain.Store) (*domain.Invoice, error) {
		return s.Delete(ctx, owner, id)
	})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}
