package mongostore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestModelKeepsExactAmounts(t *testing.T) {
	created := time.Date(2026, time.April, 2, 12, 0, 0, 0, time.UTC)
	inv := domain.Invoice{
		ID:            "77",
		InvoiceNumber: "INV-0012",
		To:            domain.Party{Name: "Client"},
		Items: []domain.LineItem{
			{Description: "Audit", Quantity: 3, Price: decimal.RequireFromString("33.33"), Total: decimal.RequireFromString("99.99")},
		},
		Subtotal:  decimal.RequireFromString("99.99"),
		TaxRate:   decimal.RequireFromString("7.25"),
		TaxAmount: decimal.RequireFromString("7.25"),
		Total:     decimal.RequireFromString("107.24"),
		Status:    domain.StatusSent,
		CreatedBy: "alice",
		CreatedAt: created,
		UpdatedAt: created,
	}

	m, err := toModel(inv)
	require.NoError(t, err)
	assert.Equal(t, "alice", m.OwnerID)

	// Encode through BSON the way the driver would.
	raw, err := bson.Marshal(m)
	require.NoError(t, err)
	var decoded invoiceModel
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	back, err := fromModel(&decoded)
	require.NoError(t, err)
	assert.True(t, back.Total.Equal(inv.Total), back.Total.String())
	assert.True(t, back.Items[0].Price.Equal(inv.Items[0].Price))
	assert.Equal(t, "alice", back.CreatedBy)
	assert.Nil(t, back.DueDate)
	assert.True(t, back.CreatedAt.Equal(created))
}

func TestOwnerFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "1", "owner_id": "bob"}, ownerFilter("bob", "1"))
}
