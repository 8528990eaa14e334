package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/pkg/db"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

type repo struct {
	db *gorm.DB
}

// New returns the relational durable store.
func New(conn *gorm.DB) domain.Store {
	return &repo{db: conn}
}

func (r *repo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (r *repo) List(ctx context.Context, owner string) ([]domain.Invoice, error) {
	var rows []Invoice
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", owner).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *repo) Get(ctx context.Context, owner, id string) (*domain.Invoice, error) {
	row, err := r.find(r.db.WithContext(ctx), owner, id)
	if err != nil {
		return nil, err
	}
	inv := row.toDomain()
	return &inv, nil
}

func (r *repo) Insert(ctx context.Context, inv *domain.Invoice) error {
	row := fromDomain(*inv)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return fmt.Errorf("insert invoice %s: %w", inv.InvoiceNumber, domain.ErrDuplicate)
		}
		return err
	}
	return nil
}

func (r *repo) Update(ctx context.Context, owner, id string, patch domain.Patch) (*domain.Invoice, error) {
	var updated domain.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.find(tx, owner, id)
		if err != nil {
			return err
		}
		updated = row.toDomain()
		patch.Apply(&updated)

		// UpdateColumns keeps gorm from overwriting UpdatedAt with its own clock.
		next := fromDomain(updated)
		return tx.Model(row).
			Select("*").
			Omit("id", "owner_id", "invoice_number", "created_at").
			UpdateColumns(&next).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *repo) Delete(ctx context.Context, owner, id string) (*domain.Invoice, error) {
	var deleted domain.Invoice
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.find(tx, owner, id)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND owner_id = ?", id, owner).Delete(&Invoice{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrInvoiceNotFound
		}
		deleted = row.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (r *repo) find(tx *gorm.DB, owner, id string) (*Invoice, error) {
	var row Invoice
	err := tx.Where("id = ? AND owner_id = ?", id, owner).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
