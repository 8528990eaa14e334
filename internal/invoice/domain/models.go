// Package domain contains the invoice model and the contracts its stores and service satisfy.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Status represents the invoice lifecycle state. Any status may move to any other.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusSent    Status = "sent"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusDraft, StatusSent, StatusPaid, StatusOverdue}

// ParseStatus normalizes raw and reports ErrInvalidStatus for unknown values.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !status.Valid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Party is the sender or recipient block printed on an invoice.
type Party struct {
	Name    string `json:"name" bson:"name"`
	Address string `json:"address,omitempty" bson:"address,omitempty"`
	City    string `json:"city,omitempty" bson:"city,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
}

// LineItem is one billed row. Total is always derived from Quantity and Price.
type LineItem struct {
	Description string          `json:"description" bson:"description"`
	Quantity    int             `json:"quantity" bson:"quantity"`
	Price       decimal.Decimal `json:"price" bson:"price"`
	Total       decimal.Decimal `json:"total" bson:"total"`
}

// Invoice is the stored invoice record.
type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoiceNumber"`
	From          Party           `json:"from"`
	To            Party           `json:"to"`
	Date          time.Time       `json:"date"`
	DueDate       *time.Time      `json:"dueDate,omitempty"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxRate       decimal.Decimal `json:"taxRate"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Clone returns a copy that shares no mutable state with inv.
func (inv Invoice) Clone() Invoice {
	out := inv
	out.Items = slices.Clone(inv.Items)
	if inv.DueDate != nil {
		due := *inv.DueDate
		out.DueDate = &due
	}
	return out
}

// Amounts carries the computed monetary fields of an invoice.
type Amounts struct {
	Subtotal  decimal.Decimal
	TaxRate   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Patch is a partial update. Nil fields are left untouched; UpdatedAt is always written.
// Items and Amounts are replaced together. ClearDueDate removes the due date.
type Patch struct {
	From         *Party
	To           *Party
	Date         *time.Time
	DueDate      *time.Time
	ClearDueDate bool
	Items        []LineItem
	Amounts      *Amounts
	Status       *Status
	Notes        *string
	UpdatedAt    time.Time
}

// Apply writes the patch onto inv.
func (p Patch) Apply(inv *Invoice) {
	if p.From != nil {
		inv.From = *p.From
	}
	if p.To != nil {
		inv.To = *p.To
	}
	if p.Date != nil {
		inv.Date = *p.Date
	}
	switch {
	case p.ClearDueDate:
		inv.DueDate = nil
	case p.DueDate != nil:
		due := *p.DueDate
		inv.DueDate = &due
	}
	if p.Items != nil {
		inv.Items = slices.Clone(p.Items)
	}
	if p.Amounts != nil {
		inv.Subtotal = p.Amounts.Subtotal
		inv.TaxRate = p.Amounts.TaxRate
		inv.TaxAmount = p.Amounts.TaxAmount
		inv.Total = p.Amounts.Total
	}
	if p.Status != nil {
		inv.Status = *p.Status
	}
	if p.Notes != nil {
		inv.Notes = *p.Notes
	}
	inv.UpdatedAt = p.UpdatedAt
}

// Source names the backend that answered a ledger call.
type Source string

const (
	SourceDatabase Source = "database"
	SourceMock     Source = "mock"
)
