package pdf

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStatement(t *testing.T) {
	data := StatementData{
		CompanyName:   "Sender Co",
		Owner:         "alice",
		GeneratedOn:   "Jun 1, 2026",
		TotalInvoices: 2,
		TotalRevenue:  "$1,925.00",
		Rows: []StatementRow{
			{InvoiceNumber: "INV-0002", Date: "Jun 1, 2026", Client: "Acme", Status: "SENT", Total: "$1,000.00"},
			{InvoiceNumber: "INV-0001", Date: "May 1, 2026", Client: "Globex", Status: "PAID", Total: "$925.00"},
		},
	}

	r, err := New().GenerateStatement(context.Background(), data)
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF-")))
	pages, err := api.PageCount(bytes.NewReader(raw), model.NewDefaultConfiguration())
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
}

func TestGenerateStatementHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().GenerateStatement(ctx, StatementData{})
	assert.ErrorIs(t, err, context.Canceled)
}
