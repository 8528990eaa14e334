package document

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/compute"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInvoice(items int) domain.Invoice {
	lines := make([]domain.LineItem, 0, items)
	for i := range items {
		lines = append(lines, domain.LineItem{
			Description: fmt.Sprintf("Service %d", i+1),
			Quantity:    i + 1,
			Price:       decimal.NewFromInt(100),
		})
	}
	res := compute.Totals(lines, decimal.NewFromInt(10))
	due := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	return domain.Invoice{
		ID:            "1",
		InvoiceNumber: "INV-0007",
		From:          domain.Party{Name: "Sender Co", Address: "1 Main St", Email: "hi@sender.example"},
		To:            domain.Party{Name: "Client Co", City: "Gotham"},
		Date:          time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       &due,
		Items:         res.Items,
		Subtotal:      res.Subtotal,
		TaxRate:       res.TaxRate,
		TaxAmount:     res.TaxAmount,
		Total:         res.Total,
		Status:        domain.StatusSent,
		Notes:         "Pay by bank transfer.",
	}
}

func texts(cmds []Command) []Command {
	var out []Command
	for _, c := range cmds {
		if c.Kind == KindText {
			out = append(out, c)
		}
	}
	return out
}

func find(t *testing.T, cmds []Command, text string) Command {
	t.Helper()
	for _, c := range cmds {
		if c.Kind == KindText && c.Text == text {
			return c
		}
	}
	t.Fatalf("no text command %q", text)
	return Command{}
}

func count(cmds []Command, kind Kind) int {
	n := 0
	for _, c := range cmds {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func TestPlanOrderAndPlacement(t *testing.T) {
	cmds := Plan(sampleInvoice(2), Options{Currency: "$"})

	require.Equal(t, KindAddPage, cmds[0].Kind)
	title := texts(cmds)[0]
	assert.Equal(t, "INVOICE", title.Text)
	assert.Equal(t, AlignCenter, title.Align)

	assert.Equal(t, "Date: Jun 1, 2026", find(t, cmds, "Date: Jun 1, 2026").Text)
	find(t, cmds, "Status: SENT")

	from, to := find(t, cmds, "FROM"), find(t, cmds, "TO")
	assert.Equal(t, Margin, from.X)
	assert.Equal(t, Margin+PartyColumn, to.X)
	assert.Equal(t, from.Y, to.Y)

	due := find(t, cmds, "Due Date: Jul 1, 2026")
	assert.Equal(t, AlignRight, due.Align)

	subtotal := find(t, cmds, "Subtotal:")
	tax := find(t, cmds, "Tax (10%):")
	total := find(t, cmds, "Total:")
	assert.Less(t, subtotal.Y, tax.Y)
	assert.Less(t, tax.Y, total.Y)
	assert.True(t, total.Bold)
	find(t, cmds, "$330.00")

	footer := texts(cmds)[len(texts(cmds))-1]
	assert.Equal(t, FooterText, footer.Text)
	assert.Equal(t, PageHeight-Margin-footerOffset, footer.Y)
}

func TestPlanSkipsBlankPartyFields(t *testing.T) {
	cmds := Plan(sampleInvoice(1), Options{})
	to := find(t, cmds, "TO")

	var column []string
	for _, c := range texts(cmds) {
		if c.X == to.X && c.Y > to.Y {
			column = append(column, c.Text)
		}
	}
	assert.Equal(t, []string{"Client Co", "Gotham"}, column)
}

func TestPlanOptionalBlocks(t *testing.T) {
	inv := sampleInvoice(1)
	inv.DueDate = nil
	inv.Notes = ""
	cmds := Plan(inv, Options{})

	for _, c := range texts(cmds) {
		assert.False(t, strings.HasPrefix(c.Text, "Due Date:"))
		assert.NotEqual(t, "Notes:", c.Text)
	}
}

func TestPlanStripesAlternateRows(t *testing.T) {
	cmds := Plan(sampleInvoice(5), Options{})
	fills := 0
	for _, c := range cmds {
		if c.Kind == KindFillRect && c.Color == stripeFill {
			fills++
		}
	}
	// rows 1 and 3 (zero based) are shaded
	assert.Equal(t, 2, fills)
	assert.Equal(t, 1, count(cmds, KindAddPage))
}

func TestPlanPaginatesLongTables(t *testing.T) {
	cmds := Plan(sampleInvoice(60), Options{})

	pages := count(cmds, KindAddPage)
	assert.GreaterOrEqual(t, pages, 2)

	for _, c := range cmds {
		if c.Kind == KindText || c.Kind == KindFillRect {
			assert.LessOrEqual(t, c.Y+c.H, PageHeight-Margin+0.001, c.Text)
		}
	}

	// the row after each page break starts at the top margin
	for i, c := range cmds {
		if c.Kind == KindAddPage && i > 0 && i+1 < len(cmds) && cmds[i+1].Text != FooterText {
			assert.Equal(t, Margin, cmds[i+1].Y)
		}
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	inv := sampleInvoice(12)
	assert.Equal(t, Plan(inv, Options{Currency: "$"}), Plan(inv, Options{Currency: "$"}))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,925.00", FormatAmount(decimal.NewFromInt(1925)))
	assert.Equal(t, "0.12", FormatAmount(decimal.RequireFromString("0.125")))
	assert.Equal(t, "1,234,567.50", FormatAmount(decimal.RequireFromString("1234567.5")))
	assert.Equal(t, "-12.00", FormatAmount(decimal.NewFromInt(-12)))
}

func TestWrap(t *testing.T) {
	assert.Equal(t, []string{"aa bb", "cc"}, wrap("aa bb cc", 5))
	assert.Equal(t, []string{"one", "two"}, wrap("one\ntwo", 80))
}

func TestRenderProducesValidPDF(t *testing.T) {
	inv := sampleInvoice(60)
	var out bytes.Buffer
	require.NoError(t, Render(&out, inv, Options{Currency: "$"}))

	require.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
	pages, err := api.PageCount(bytes.NewReader(out.Bytes()), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, count(Plan(inv, Options{Currency: "$"}), KindAddPage), pages)
}

func TestRenderRefusesIncompleteInvoice(t *testing.T) {
	inv := sampleInvoice(1)
	inv.To.Name = ""
	inv.Items = nil

	var out bytes.Buffer
	err := Render(&out, inv, Options{})
	assert.ErrorIs(t, err, ErrIncompleteInvoice)
	assert.Contains(t, err.Error(), "to.name")
	assert.Zero(t, out.Len())
}
