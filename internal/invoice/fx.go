package invoice

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/ledger"
	"github.com/smallbiznis/invoicedesk/internal/invoice/memstore"
	"github.com/smallbiznis/invoicedesk/internal/invoice/mongostore"
	"github.com/smallbiznis/invoicedesk/internal/invoice/repository"
	"github.com/smallbiznis/invoicedesk/internal/invoice/service"
	"github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	"github.com/smallbiznis/invoicedesk/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("invoice.service",
	fx.Provide(pdf.New),
	fx.Provide(NewLedger),
	fx.Provide(service.NewService),
)

type LedgerParam struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    config.Config
	Settings  *config.InvoiceConfigHolder
	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Metrics   *metrics.LedgerMetrics
}

// NewLedger pairs the configured durable backend with a fresh in-memory fallback.
func NewLedger(p LedgerParam) *ledger.Ledger {
	log := p.Log.Named("invoice.ledger")
	return ledger.New(durableStore(p, log), fallbackStore(p), p.Log, p.Metrics)
}

func durableStore(p LedgerParam, log *zap.Logger) domain.Store {
	if p.Config.LedgerDriver != config.LedgerDriverMongo {
		return repository.New(p.DB)
	}

	if p.Config.MongoURI == "" {
		log.Warn("MONGODB_URI is empty, invoices are served from memory only")
		return nil
	}
	client, err := mongostore.Connect(p.Config.MongoURI)
	if err != nil {
		log.Warn("mongo client unavailable, invoices are served from memory only", zap.Error(err))
		return nil
	}

	store := mongostore.New(client, p.Config.MongoDatabase)
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := store.Migrate(ctx); err != nil {
				log.Warn("mongo index migration failed", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return store.Close(ctx)
		},
	})
	return store
}

func fallbackStore(p LedgerParam) *memstore.Store {
	settings := p.Settings.Get()
	if !settings.SeedFallback {
		return memstore.New()
	}

	company := settings.Company
	from := domain.Party{
		Name:    company.Name,
		Address: company.Address,
		City:    company.City,
		Phone:   company.Phone,
		Email:   company.Email,
	}
	return memstore.New(memstore.ExampleInvoice(p.GenID.Generate().String(), settings.PlaceholderOwner, from, p.Clock.Now()))
}
