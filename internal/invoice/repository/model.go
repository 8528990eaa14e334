package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"gorm.io/datatypes"
)

type partyColumns struct {
	Name    string `gorm:"type:varchar(255);not null;default:''"`
	Address string `gorm:"type:varchar(255)"`
	City    string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(64)"`
	Email   string `gorm:"type:varchar(255)"`
}

// Invoice is the invoices table row. Line items live in a JSON column.
type Invoice struct {
	ID            string                              `gorm:"primaryKey;type:varchar(32)"`
	OwnerID       string                              `gorm:"type:varchar(191);not null;uniqueIndex:ux_invoices_owner_number,priority:1;index:ix_invoices_owner_created,priority:1"`
	InvoiceNumber string                              `gorm:"type:varchar(64);not null;uniqueIndex:ux_invoices_owner_number,priority:2"`
	From          partyColumns                        `gorm:"embedded;embeddedPrefix:from_"`
	To            partyColumns                        `gorm:"embedded;embeddedPrefix:to_"`
	Date          time.Time                           `gorm:"not null"`
	DueDate       *time.Time                          `gorm:""`
	Items         datatypes.JSONSlice[domain.LineItem] `gorm:"not null"`
	Subtotal      decimal.Decimal                     `gorm:"type:decimal(18,4);not null"`
	TaxRate       decimal.Decimal                     `gorm:"type:decimal(7,4);not null"`
	TaxAmount     decimal.Decimal                     `gorm:"type:decimal(18,4);not null"`
	Total         decimal.Decimal                     `gorm:"type:decimal(18,4);not null"`
	Status        string                              `gorm:"type:varchar(16);not null;default:'draft'"`
	Notes         string                              `gorm:"type:text"`
	CreatedAt     time.Time                           `gorm:"not null;index:ix_invoices_owner_created,priority:2"`
	UpdatedAt     time.Time                           `gorm:"not null"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

func fromDomain(inv domain.Invoice) Invoice {
	return Invoice{
		ID:            inv.ID,
		OwnerID:       inv.CreatedBy,
		InvoiceNumber: inv.InvoiceNumber,
		From:          partyColumns(inv.From),
		To:            partyColumns(inv.To),
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Items:         datatypes.NewJSONSlice(inv.Items),
		Subtotal:      inv.Subtotal,
		TaxRate:       inv.TaxRate,
		TaxAmount:     inv.TaxAmount,
		Total:         inv.Total,
		Status:        string(inv.Status),
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func (row Invoice) toDomain() domain.Invoice {
	items := []domain.LineItem(row.Items)
	if items == nil {
		items = []domain.LineItem{}
	}
	return domain.Invoice{
		ID:            row.ID,
		InvoiceNumber: row.InvoiceNumber,
		From:          domain.Party(row.From),
		To:            domain.Party(row.To),
		Date:          row.Date.UTC(),
		DueDate:       utcPtr(row.DueDate),
		Items:         items,
		Subtotal:      row.Subtotal,
		TaxRate:       row.TaxRate,
		TaxAmount:     row.TaxAmount,
		Total:         row.Total,
		Status:        domain.Status(row.Status),
		Notes:         row.Notes,
		CreatedBy:     row.OwnerID,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
