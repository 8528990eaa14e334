package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// newStore connects to MONGODB_URI and works in a throwaway database.
func newStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	client, err := Connect(uri)
	require.NoError(t, err)
	name := fmt.Sprintf("invoicedesk_test_%d", time.Now().UnixNano())
	store := New(client, name)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = client.Database(name).Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Migrate(ctx))
	return store
}

var base = time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

func sample(id, owner, number string, createdAt time.Time) *domain.Invoice {
	due := createdAt.AddDate(0, 0, 30)
	return &domain.Invoice{
		ID:            id,
		InvoiceNumber: number,
		From:          domain.Party{Name: "Sender Ltd"},
		To:            domain.Party{Name: "Client Inc"},
		Date:          createdAt,
		DueDate:       &due,
		Items: []domain.LineItem{
			{Description: "Design", Quantity: 2, Price: decimal.RequireFromString("12.50"), Total: decimal.RequireFromString("25")},
		},
		Subtotal:  decimal.RequireFromString("25"),
		TaxRate:   decimal.RequireFromString("10"),
		TaxAmount: decimal.RequireFromString("2.5"),
		Total:     decimal.RequireFromString("27.5"),
		Status:    domain.StatusDraft,
		Notes:     "thanks",
		CreatedBy: owner,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestStoreListNewestFirstAndOwnerScoped(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Insert(ctx, sample("1", "alice", "INV-0001", base)))
	require.NoError(t, store.Insert(ctx, sample("2", "bob", "INV-0001", base.Add(time.Minute))))
	require.NoError(t, store.Insert(ctx, sample("3", "alice", "INV-0002", base.Add(2*time.Minute))))

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "3", list[0].ID)
	assert.Equal(t, "1", list[1].ID)
	assert.True(t, list[0].Total.Equal(decimal.RequireFromString("27.5")))

	_, err = store.Get(ctx, "bob", "1")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	_, err = store.Get(ctx, "alice", "missing")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestStoreInsertDuplicateNumberPerOwner(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Insert(ctx, sample("1", "alice", "INV-0001", base)))

	err := store.Insert(ctx, sample("2", "alice", "INV-0001", base))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.NoError(t, store.Insert(ctx, sample("3", "bob", "INV-0001", base)))
}

func TestStoreUpdateReplacesDocument(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Insert(ctx, sample("1", "alice", "INV-0001", base)))

	paid := domain.StatusPaid
	later := base.Add(48 * time.Hour)
	updated, err := store.Update(ctx, "alice", "1", domain.Patch{Status: &paid, ClearDueDate: true, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, updated.Status)

	got, err := store.Get(ctx, "alice", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, got.Status)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, "thanks", got.Notes)
	assert.True(t, got.UpdatedAt.Equal(later), got.UpdatedAt.String())

	_, err = store.Update(ctx, "bob", "1", domain.Patch{Status: &paid})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestStoreDeleteReturnsRecord(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	require.NoError(t, store.Insert(ctx, sample("1", "alice", "INV-0001", base)))

	deleted, err := store.Delete(ctx, "alice", "1")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", deleted.InvoiceNumber)

	_, err = store.Delete(ctx, "alice", "1")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
	_, err = store.Get(ctx, "alice", "1")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestMapErr(t *testing.T) {
	assert.Equal(t, domain.ErrInvoiceNotFound, mapErr("get", mongo.ErrNoDocuments))
	assert.ErrorIs(t, mapErr("get", fmt.Errorf("decode: %w", mongo.ErrNoDocuments)), domain.ErrInvoiceNotFound)

	err := mapErr("delete", errors.New("socket closed"))
	assert.NotErrorIs(t, err, domain.ErrInvoiceNotFound)
	assert.EqualError(t, err, "invoice/mongo: delete: socket closed")
}
