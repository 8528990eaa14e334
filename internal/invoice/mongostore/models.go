package mongostore

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type partyModel struct {
	Name    string `bson:"name"`
	Address string `bson:"address,omitempty"`
	City    string `bson:"city,omitempty"`
	Phone   string `bson:"phone,omitempty"`
	Email   string `bson:"email,omitempty"`
}

type itemModel struct {
	Description string          `bson:"description"`
	Quantity    int             `bson:"quantity"`
	Price       bson.Decimal128 `bson:"price"`
	Total       bson.Decimal128 `bson:"total"`
}

type invoiceModel struct {
	ID            string          `bson:"_id"`
	OwnerID       string          `bson:"owner_id"`
	InvoiceNumber string          `bson:"invoice_number"`
	From          partyModel      `bson:"from"`
	To            partyModel      `bson:"to"`
	Date          time.Time       `bson:"date"`
	DueDate       *time.Time      `bson:"due_date,omitempty"`
	Items         []itemModel     `bson:"items"`
	Subtotal      bson.Decimal128 `bson:"subtotal"`
	TaxRate       bson.Decimal128 `bson:"tax_rate"`
	TaxAmount     bson.Decimal128 `bson:"tax_amount"`
	Total         bson.Decimal128 `bson:"total"`
	Status        string          `bson:"status"`
	Notes         string          `bson:"notes,omitempty"`
	CreatedAt     time.Time       `bson:"created_at"`
	UpdatedAt     time.Time       `bson:"updated_at"`
}

func toModel(inv domain.Invoice) (*invoiceModel, error) {
	m := &invoiceModel{
		ID:            inv.ID,
		OwnerID:       inv.CreatedBy,
		InvoiceNumber: inv.InvoiceNumber,
		From:          partyModel(inv.From),
		To:            partyModel(inv.To),
		Date:          inv.Date.UTC(),
		DueDate:       inv.DueDate,
		Items:         make([]itemModel, 0, len(inv.Items)),
		Status:        string(inv.Status),
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt.UTC(),
		UpdatedAt:     inv.UpdatedAt.UTC(),
	}

	var err error
	for _, item := range inv.Items {
		im := itemModel{Description: item.Description, Quantity: item.Quantity}
		if im.Price, err = toDecimal128(item.Price); err != nil {
			return nil, err
		}
		if im.Total, err = toDecimal128(item.Total); err != nil {
			return nil, err
		}
		m.Items = append(m.Items, im)
	}
	for dst, src := range map[*bson.Decimal128]decimal.Decimal{
		&m.Subtotal:  inv.Subtotal,
		&m.TaxRate:   inv.TaxRate,
		&m.TaxAmount: inv.TaxAmount,
		&m.Total:     inv.Total,
	} {
		if *dst, err = toDecimal128(src); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func fromModel(m *invoiceModel) (domain.Invoice, error) {
	inv := domain.Invoice{
		ID:            m.ID,
		InvoiceNumber: m.InvoiceNumber,
		From:          domain.Party(m.From),
		To:            domain.Party(m.To),
		Date:          m.Date.UTC(),
		Items:         make([]domain.LineItem, 0, len(m.Items)),
		Status:        domain.Status(m.Status),
		Notes:         m.Notes,
		CreatedBy:     m.OwnerID,
		CreatedAt:     m.CreatedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
	if m.DueDate != nil {
		due := m.DueDate.UTC()
		inv.DueDate = &due
	}

	var err error
	for _, im := range m.Items {
		item := domain.LineItem{Description: im.Description, Quantity: im.Quantity}
		if item.Price, err = fromDecimal128(im.Price); err != nil {
			return domain.Invoice{}, err
		}
		if item.Total, err = fromDecimal128(im.Total); err != nil {
			return domain.Invoice{}, err
		}
		inv.Items = append(inv.Items, item)
	}
	for dst, src := range map[*decimal.Decimal]bson.Decimal128{
		&inv.Subtotal:  m.Subtotal,
		&inv.TaxRate:   m.TaxRate,
		&inv.TaxAmount: m.TaxAmount,
		&inv.Total:     m.Total,
	} {
		if *dst, err = fromDecimal128(src); err != nil {
			return domain.Invoice{}, err
		}
	}
	return inv, nil
}

func toDecimal128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("invoice/mongo: encode amount %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v bson.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invoice/mongo: decode amount %s: %w", v.String(), err)
	}
	return d, nil
}
