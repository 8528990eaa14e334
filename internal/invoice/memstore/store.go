// Package memstore is the volatile in-process invoice store used when the
// durable backend cannot serve a call.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// Store keeps invoices in insertion order. Callers always receive copies.
type Store struct {
	mu       sync.RWMutex
	invoices []domain.Invoice
}

func New(seed ...domain.Invoice) *Store {
	s := &Store{invoices: make([]domain.Invoice, 0, len(seed))}
	for _, inv := range seed {
		s.invoices = append(s.invoices, inv.Clone())
	}
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) List(_ context.Context, owner string) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Invoice, 0)
	for i := len(s.invoices) - 1; i >= 0; i-- {
		if s.invoices[i].CreatedBy == owner {
			out = append(out, s.invoices[i].Clone())
		}
	}
	// Later inserts come first among equal timestamps.
	slices.SortStableFunc(out, func(a, b domain.Invoice) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, owner, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(owner, id)
	if idx < 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	inv := s.invoices[idx].Clone()
	return &inv, nil
}

func (s *Store) Insert(_ context.Context, inv *domain.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.invoices {
		if existing.ID == inv.ID {
			return domain.ErrDuplicate
		}
		if existing.CreatedBy == inv.CreatedBy && existing.InvoiceNumber == inv.InvoiceNumber {
			return domain.ErrDuplicate
		}
	}
	s.invoices = append(s.invoices, inv.Clone())
	return nil
}

func (s *Store) Update(_ context.Context, owner, id string, patch domain.Patch) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(owner, id)
	if idx < 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	patch.Apply(&s.invoices[idx])
	inv := s.invoices[idx].Clone()
	return &inv, nil
}

func (s *Store) Delete(_ context.Context, owner, id string) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(owner, id)
	if idx < 0 {
		return nil, domain.ErrInvoiceNotFound
	}
	deleted := s.invoices[idx]
	s.invoices = slices.Delete(s.invoices, idx, idx+1)
	return &deleted, nil
}

// Len reports how many invoices are held across all owners.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.invoices)
}

func (s *Store) indexOf(owner, id string) int {
	return slices.IndexFunc(s.invoices, func(inv domain.Invoice) bool {
		return inv.ID == id && inv.CreatedBy == owner
	})
}

var _ domain.Store = (*Store)(nil)
