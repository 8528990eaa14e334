package memstore

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/compute"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// ExampleInvoice is the single invoice the fallback store starts with, so the
// placeholder owner sees data even when no database was ever reachable.
func ExampleInvoice(id, owner string, from domain.Party, now time.Time) domain.Invoice {
	res := compute.Totals([]domain.LineItem{
		{Description: "Web Development Services", Quantity: 10, Price: decimal.NewFromInt(100)},
		{Description: "Consulting", Quantity: 5, Price: decimal.NewFromInt(150)},
	}, decimal.NewFromInt(10))

	due := now.AddDate(0, 0, 30)
	return domain.Invoice{
		ID:            id,
		InvoiceNumber: "INV-0001",
		From:          from,
		To: domain.Party{
			Name:    "Acme Corporation",
			Address: "456 Client Avenue",
			City:    "Business City, BC 67890",
			Email:   "billing@acme.example",
		},
		Date:      now,
		DueDate:   &due,
		Items:     res.Items,
		Subtotal:  res.Subtotal,
		TaxRate:   res.TaxRate,
		TaxAmount: res.TaxAmount,
		Total:     res.Total,
		Status:    domain.StatusSent,
		Notes:     "Payment due within 30 days.",
		CreatedBy: owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
