package domain

import "context"

// Store is the persistence contract shared by the durable and fallback backends.
// Reads and writes are scoped to the owning identity.
type Store interface {
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	// List returns the owner's invoices, newest first by CreatedAt.
	List(ctx context.Context, owner string) ([]Invoice, error)
	Get(ctx context.Context, owner, id string) (*Invoice, error)
	Insert(ctx context.Context, inv *Invoice) error
	Update(ctx context.Context, owner, id string, patch Patch) (*Invoice, error)
	// Delete removes the invoice and returns it as it was.
	Delete(ctx context.Context, owner, id string) (*Invoice, error)
}
