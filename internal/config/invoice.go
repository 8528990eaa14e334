package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CompanyConfig is the letterhead used as the default "from" party.
type CompanyConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	City    string `mapstructure:"city"`
	Phone   string `mapstructure:"phone"`
	Email   string `mapstructure:"email"`
}

// InvoiceConfig holds invoicing defaults that can change without a restart.
type InvoiceConfig struct {
	Company          CompanyConfig `mapstructure:"company"`
	DefaultTaxRate   float64       `mapstructure:"defaultTaxRate"`
	NumberTemplate   string        `mapstructure:"numberTemplate"`
	Currency         string        `mapstructure:"currency"`
	PlaceholderOwner string        `mapstructure:"placeholderOwner"`
	SeedFallback     bool          `mapstructure:"seedFallback"`
}

func DefaultInvoiceConfig() InvoiceConfig {
	return InvoiceConfig{
		Company: CompanyConfig{
			Name:    "Invoice Desk",
			Address: "123 Business Street",
			City:    "Commerce City, CC 12345",
			Phone:   "+1 555 0100",
			Email:   "billing@invoicedesk.example",
		},
		DefaultTaxRate:   0,
		NumberTemplate:   "INV-{SEQ4}",
		Currency:         "$",
		PlaceholderOwner: "demo-user",
		SeedFallback:     true,
	}
}

type InvoiceConfigHolder struct {
	current atomic.Value // holds InvoiceConfig
}

// NewStaticInvoiceConfigHolder returns a holder that never reloads.
func NewStaticInvoiceConfigHolder(cfg InvoiceConfig) *InvoiceConfigHolder {
	holder := &InvoiceConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewInvoiceConfigHolder(log *zap.Logger) (*InvoiceConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("invoice")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/invoicedesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INVOICEDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultInvoiceConfig()
	v.SetDefault("invoice.company.name", defaults.Company.Name)
	v.SetDefault("invoice.company.address", defaults.Company.Address)
	v.SetDefault("invoice.company.city", defaults.Company.City)
	v.SetDefault("invoice.company.phone", defaults.Company.Phone)
	v.SetDefault("invoice.company.email", defaults.Company.Email)
	v.SetDefault("invoice.defaultTaxRate", defaults.DefaultTaxRate)
	v.SetDefault("invoice.numberTemplate", defaults.NumberTemplate)
	v.SetDefault("invoice.currency", defaults.Currency)
	v.SetDefault("invoice.placeholderOwner", defaults.PlaceholderOwner)
	v.SetDefault("invoice.seedFallback", defaults.SeedFallback)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg InvoiceConfig
	if err := v.UnmarshalKey("invoice", &cfg); err != nil {
		return nil, err
	}
	if err := validateInvoiceConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticInvoiceConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	log = log.Named("invoice.config")
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated InvoiceConfig
		if err := v.UnmarshalKey("invoice", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateInvoiceConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *InvoiceConfigHolder) Get() InvoiceConfig {
	return h.current.Load().(InvoiceConfig)
}

func validateInvoiceConfig(cfg InvoiceConfig) error {
	if strings.TrimSpace(cfg.Company.Name) == "" {
		return errors.New("invoice.company.name cannot be empty")
	}
	if cfg.DefaultTaxRate < 0 || cfg.DefaultTaxRate > 100 {
		return errors.New("invoice.defaultTaxRate must be between 0 and 100")
	}
	if err := format.ValidateTemplate(cfg.NumberTemplate); err != nil {
		return fmt.Errorf("invoice.numberTemplate: %w", err)
	}
	if strings.TrimSpace(cfg.PlaceholderOwner) == "" {
		return errors.New("invoice.placeholderOwner cannot be empty")
	}
	return nil
}
