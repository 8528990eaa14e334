package compute

import (
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(desc string, qty int, price string) domain.LineItem {
	return domain.LineItem{Description: desc, Quantity: qty, Price: dec(price)}
}

func TestTotalsWorkedExample(t *testing.T) {
	res := Totals([]domain.LineItem{
		item("Web Development", 10, "100"),
		item("Consulting", 5, "150"),
	}, dec("10"))

	assert.True(t, res.Items[0].Total.Equal(dec("1000")))
	assert.True(t, res.Items[1].Total.Equal(dec("750")))
	assert.True(t, res.Subtotal.Equal(dec("1750")), res.Subtotal.String())
	assert.True(t, res.TaxAmount.Equal(dec("175")), res.TaxAmount.String())
	assert.True(t, res.Total.Equal(dec("1925")), res.Total.String())
}

func TestTotalsIgnoresCallerSuppliedTotals(t *testing.T) {
	in := item("Hosting", 3, "9.99")
	in.Total = dec("1000000")

	res := Totals([]domain.LineItem{in}, decimal.Zero)
	assert.True(t, res.Items[0].Total.Equal(dec("29.97")))
	assert.True(t, in.Total.Equal(dec("1000000")), "input must not be mutated")
}

func TestTotalsInvariantsHoldExactly(t *testing.T) {
	items := []domain.LineItem{
		item("a", 3, "0.333"),
		item("b", 7, "1.125"),
		item("c", 1, "19.995"),
		item("d", 13, "2.5"),
	}
	for _, rate := range []string{"0", "7.25", "10", "12.5", "33.333", "100"} {
		res := Totals(items, dec(rate))

		sum := decimal.Zero
		for _, it := range res.Items {
			assert.True(t, it.Total.Equal(RoundMoney(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))))
			sum = sum.Add(it.Total)
		}
		assert.True(t, res.Subtotal.Equal(sum), rate)
		assert.True(t, res.TaxAmount.Equal(RoundMoney(res.Subtotal.Mul(dec(rate)).Div(dec("100")))), rate)
		assert.True(t, res.Total.Equal(res.Subtotal.Add(res.TaxAmount)), rate)
	}
}

func TestRoundMoneyIsBankers(t *testing.T) {
	assert.Equal(t, "0.12", RoundMoney(dec("0.125")).StringFixed(2))
	assert.Equal(t, "0.14", RoundMoney(dec("0.135")).StringFixed(2))
	assert.Equal(t, "2.67", RoundMoney(dec("2.666")).StringFixed(2))
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate([]domain.LineItem{item("ok", 1, "0")}, dec("0")))

	err := Validate(nil, dec("0"))
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "items", verr.Fields[0].Field)

	err = Validate([]domain.LineItem{
		item("fine", 1, "10"),
		item("  ", 0, "-1"),
	}, dec("101"))
	require.True(t, errors.As(err, &verr))
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"items[1].description", "items[1].quantity", "items[1].price", "taxRate"}, fields)
}

func TestNextSequence(t *testing.T) {
	seq, err := NextSequence("INV-{SEQ4}", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	invoices := []domain.Invoice{
		{InvoiceNumber: "INV-0003"},
		{InvoiceNumber: "INV-0010"},
		{InvoiceNumber: "INV-0007"},
		{InvoiceNumber: "legacy"},
	}
	seq, err = NextSequence("INV-{SEQ4}", invoices)
	require.NoError(t, err)
	assert.Equal(t, int64(11), seq)

	_, err = NextSequence("INV-", invoices)
	assert.Error(t, err)
}

func TestNextSequenceIgnoresDateDigits(t *testing.T) {
	cases := []struct {
		template string
		numbers  []string
		want     int64
	}{
		{"INV{YYYY}{SEQ4}", []string{"INV20260001", "INV20260002"}, 3},
		{"INV-{SEQ4}-{YYYY}", []string{"INV-0001-2026", "INV-0002-2027"}, 3},
		{"{YY}{MM}{DD}{SEQ}", []string{"2603079", "26030710"}, 11},
		// Numbers from a previous template do not count.
		{"INV{YYYY}{SEQ4}", []string{"INV-0042", "INV20260005"}, 6},
	}
	for _, tc := range cases {
		invoices := lo.Map(tc.numbers, func(n string, _ int) domain.Invoice {
			return domain.Invoice{InvoiceNumber: n}
		})
		seq, err := NextSequence(tc.template, invoices)
		require.NoError(t, err, tc.template)
		assert.Equal(t, tc.want, seq, tc.template)
	}
}

func TestSummarize(t *testing.T) {
	stats := Summarize([]domain.Invoice{
		{Status: domain.StatusDraft, Total: dec("100")},
		{Status: domain.StatusSent, Total: dec("50.50")},
		{Status: domain.StatusPaid, Total: dec("20")},
		{Status: domain.StatusOverdue, Total: dec("1")},
		{Status: domain.StatusDraft, Total: dec("0.25")},
	})

	assert.Equal(t, 5, stats.TotalInvoices)
	assert.True(t, stats.TotalRevenue.Equal(dec("171.75")))
	assert.Equal(t, 2, stats.Draft)
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, stats.Paid)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 3, stats.Pending)
}
