package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)

func invoice(id, owner, number string, createdAt time.Time) domain.Invoice {
	return domain.Invoice{
		ID:            id,
		InvoiceNumber: number,
		CreatedBy:     owner,
		Status:        domain.StatusDraft,
		Items:         []domain.LineItem{{Description: "x", Quantity: 1}},
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestListNewestFirstAndOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Insert(ctx, ptr(invoice("1", "alice", "INV-0001", base))))
	require.NoError(t, s.Insert(ctx, ptr(invoice("2", "bob", "INV-0001", base.Add(time.Minute)))))
	require.NoError(t, s.Insert(ctx, ptr(invoice("3", "alice", "INV-0002", base.Add(2*time.Minute)))))
	require.NoError(t, s.Insert(ctx, ptr(invoice("4", "alice", "INV-0003", base.Add(2*time.Minute)))))

	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	ids := []string{}
	for _, inv := range list {
		ids = append(ids, inv.ID)
	}
	assert.Equal(t, []string{"4", "3", "1"}, ids)

	_, err = s.Get(ctx, "bob", "1")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInsertRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New(invoice("1", "alice", "INV-0001", base))

	assert.ErrorIs(t, s.Insert(ctx, ptr(invoice("1", "bob", "INV-0009", base))), domain.ErrDuplicate)
	assert.ErrorIs(t, s.Insert(ctx, ptr(invoice("2", "alice", "INV-0001", base))), domain.ErrDuplicate)
	assert.NoError(t, s.Insert(ctx, ptr(invoice("3", "bob", "INV-0001", base))))
}

func TestReturnedInvoicesAreCopies(t *testing.T) {
	ctx := context.Background()
	s := New(invoice("1", "alice", "INV-0001", base))

	got, err := s.Get(ctx, "alice", "1")
	require.NoError(t, err)
	got.Items[0].Description = "mutated"
	got.Status = domain.StatusPaid

	again, err := s.Get(ctx, "alice", "1")
	require.NoError(t, err)
	assert.Equal(t, "x", again.Items[0].Description)
	assert.Equal(t, domain.StatusDraft, again.Status)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New(invoice("1", "alice", "INV-0001", base))

	paid := domain.StatusPaid
	later := base.Add(time.Hour)
	updated, err := s.Update(ctx, "alice", "1", domain.Patch{Status: &paid, UpdatedAt: later})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, updated.Status)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = s.Update(ctx, "bob", "1", domain.Patch{Status: &paid})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)

	deleted, err := s.Delete(ctx, "alice", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", deleted.ID)
	assert.Equal(t, 0, s.Len())

	_, err = s.Delete(ctx, "alice", "1")
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestExampleInvoice(t *testing.T) {
	inv := ExampleInvoice("seed", "demo-user", domain.Party{Name: "Sender"}, base)
	assert.Equal(t, "1925", inv.Total.String())
	assert.Equal(t, "175", inv.TaxAmount.String())
	assert.Equal(t, "demo-user", inv.CreatedBy)
}

func ptr(inv domain.Invoice) *domain.Invoice { return &inv }
