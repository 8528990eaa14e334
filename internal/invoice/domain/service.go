package domain

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

type CreateRequest struct {
	From    *Party           `json:"from"`
	To      Party            `json:"to"`
	Date    *time.Time       `json:"date"`
	DueDate *time.Time       `json:"dueDate"`
	Items   []LineItem       `json:"items"`
	TaxRate *decimal.Decimal `json:"taxRate"`
	Status  *Status          `json:"status"`
	Notes   string           `json:"notes"`
}

// UpdateRequest holds optional fields. Items or TaxRate trigger a totals recompute.
// ClearDueDate removes the due date and wins over DueDate.
type UpdateRequest struct {
	From         *Party           `json:"from"`
	To           *Party           `json:"to"`
	Date         *time.Time       `json:"date"`
	DueDate      *time.Time       `json:"dueDate"`
	ClearDueDate bool             `json:"-"`
	Items        []LineItem       `json:"items"`
	TaxRate      *decimal.Decimal `json:"taxRate"`
	Status       *Status          `json:"status"`
	Notes        *string          `json:"notes"`
}

type Result struct {
	Invoice Invoice
	Source  Source
}

type ListResult struct {
	Invoices []Invoice
	Total    int
	Source   Source
}

type Stats struct {
	TotalInvoices int             `json:"totalInvoices"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	Draft         int             `json:"draft"`
	Sent          int             `json:"sent"`
	Paid          int             `json:"paid"`
	Overdue       int             `json:"overdue"`
	Pending       int             `json:"pending"`
}

type StatsResult struct {
	Stats  Stats
	Source Source
}

type Service interface {
	List(ctx context.Context, owner string) (ListResult, error)
	Get(ctx context.Context, owner, id string) (Result, error)
	Create(ctx context.Context, owner string, req CreateRequest) (Result, error)
	Update(ctx context.Context, owner, id string, req UpdateRequest) (Result, error)
	Delete(ctx context.Context, owner, id string) (Result, error)
	SetStatus(ctx context.Context, owner, id string, status Status) (Result, error)
	Stats(ctx context.Context, owner string) (StatsResult, error)
	// RenderPDF writes the invoice document to w and returns the invoice it rendered.
	RenderPDF(ctx context.Context, owner, id string, w io.Writer) (Result, error)
	RenderStatement(ctx context.Context, owner string, w io.Writer) (Source, error)
}
