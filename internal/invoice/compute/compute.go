// Package compute derives invoice amounts and sequence numbers. Everything here is pure.
package compute

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
)

const moneyPlaces = 2

var (
	hundred    = decimal.NewFromInt(100)
	maxTaxRate = hundred
)

// Result is the output of Totals.
type Result struct {
	Items     []domain.LineItem
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Amounts returns the monetary fields for a patch.
func (r Result) Amounts() domain.Amounts {
	return domain.Amounts{
		Subtotal:  r.Subtotal,
		TaxRate:   r.TaxRate,
		TaxAmount: r.TaxAmount,
		Total:     r.Total,
	}
}

// RoundMoney rounds to cents, half to even.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(moneyPlaces)
}

// Totals recomputes every line total, then subtotal, tax and grand total.
// Caller supplied line totals are ignored. Subtotal and Total are exact sums
// of rounded values, so Subtotal == Σ item.Total and Total == Subtotal + TaxAmount.
func Totals(items []domain.LineItem, taxRate decimal.Decimal) Result {
	out := make([]domain.LineItem, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		item.Description = strings.TrimSpace(item.Description)
		item.Total = RoundMoney(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		subtotal = subtotal.Add(item.Total)
		out[i] = item
	}
	taxAmount := RoundMoney(subtotal.Mul(taxRate).Div(hundred))
	return Result{
		Items:     out,
		Subtotal:  subtotal,
		TaxRate:   taxRate,
		TaxAmount: taxAmount,
		Total:     subtotal.Add(taxAmount),
	}
}

// Validate checks the line items and tax rate, reporting every rejected field.
func Validate(items []domain.LineItem, taxRate decimal.Decimal) error {
	verr := &domain.ValidationError{}
	CheckItems(verr, items)
	CheckTaxRate(verr, taxRate)
	return verr.Err()
}

// CheckItems records a field error for an empty list and for every invalid item.
func CheckItems(verr *domain.ValidationError, items []domain.LineItem) {
	if len(items) == 0 {
		verr.Add("items", "required", "at least one line item is required")
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			verr.Add(field+".description", "required", "description is required")
		}
		if item.Quantity < 1 {
			verr.Add(field+".quantity", "invalid_quantity", "quantity must be at least 1")
		}
		if item.Price.IsNegative() {
			verr.Add(field+".price", "invalid_price", "price must not be negative")
		}
	}
}

// CheckTaxRate records a field error unless 0 <= rate <= 100.
func CheckTaxRate(verr *domain.ValidationError, rate decimal.Decimal) {
	if rate.IsNegative() || rate.GreaterThan(maxTaxRate) {
		verr.Add("taxRate", "invalid_tax_rate", "tax rate must be between 0 and 100")
	}
}

// NextSequence returns one past the highest sequence among invoices numbered
// with template, or 1. Numbers rendered from another template are ignored. Two
// concurrent callers can observe the same maximum; the stores reject the
// second insert of a number.
func NextSequence(template string, invoices []domain.Invoice) (int64, error) {
	parser, err := format.NewSequenceParser(template)
	if err != nil {
		return 0, err
	}
	seqs := lo.FilterMap(invoices, func(inv domain.Invoice, _ int) (int64, bool) {
		return parser.Parse(inv.InvoiceNumber)
	})
	if len(seqs) == 0 {
		return 1, nil
	}
	return lo.Max(seqs) + 1, nil
}

// Summarize aggregates stats over an owner's invoices.
func Summarize(invoices []domain.Invoice) domain.Stats {
	counts := lo.CountValuesBy(invoices, func(inv domain.Invoice) domain.Status { return inv.Status })
	revenue := lo.Reduce(invoices, func(acc decimal.Decimal, inv domain.Invoice, _ int) decimal.Decimal {
		return acc.Add(inv.Total)
	}, decimal.Zero)

	return domain.Stats{
		TotalInvoices: len(invoices),
		TotalRevenue:  revenue,
		Draft:         counts[domain.StatusDraft],
		Sent:          counts[domain.StatusSent],
		Paid:          counts[domain.StatusPaid],
		Overdue:       counts[domain.StatusOverdue],
		Pending:       counts[domain.StatusDraft] + counts[domain.StatusSent],
	}
}
