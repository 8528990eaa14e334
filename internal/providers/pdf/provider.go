package pdf

import (
	"context"
	"io"
)

// Provider renders account level documents that sit beside the per-invoice PDF.
type Provider interface {
	GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error)
}
