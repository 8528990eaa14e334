package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice/compute"
	"github.com/smallbiznis/invoicedesk/internal/invoice/document"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/format"
	"github.com/smallbiznis/invoicedesk/internal/invoice/ledger"
	"github.com/smallbiznis/invoicedesk/internal/observability/logger"
	"github.com/smallbiznis/invoicedesk/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Ledger     *ledger.Ledger
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Settings   *config.InvoiceConfigHolder
	Statements pdf.Provider
}

type Service struct {
	ledger     *ledger.Ledger
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	settings   *config.InvoiceConfigHolder
	statements pdf.Provider
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		ledger:     p.Ledger,
		log:        p.Log.Named("invoice.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		settings:   p.Settings,
		statements: p.Statements,
	}
}

func (s *Service) List(ctx context.Context, owner string) (invoicedomain.ListResult, error) {
	if err := checkOwner(owner); err != nil {
		return invoicedomain.ListResult{}, err
	}

	invoices, source, err := s.ledger.List(ctx, owner)
	if err != nil {
		return invoicedomain.ListResult{}, fmt.Errorf("list invoices: %w", err)
	}
	return invoicedomain.ListResult{Invoices: invoices, Total: len(invoices), Source: source}, nil
}

func (s *Service) Get(ctx context.Context, owner, id string) (invoicedomain.Result, error) {
	if err := checkOwner(owner); err != nil {
		return invoicedomain.Result{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invoicedomain.Result{}, invoicedomain.ErrInvoiceNotFound
	}

	inv, source, err := s.ledger.Get(ctx, owner, id)
	if err != nil {
		return invoicedomain.Result{}, err
	}
	return invoicedomain.Result{Invoice: *inv, Source: source}, nil
}

func (s *Service) Create(ctx context.Context, owner string, req invoicedomain.CreateRequest) (invoicedomain.Result, error) {
	if err := checkOwner(owner); err != nil {
		return invoicedomain.Result{}, err
	}
	settings := s.settings.Get()

	taxRate := decimal.NewFromFloat(settings.DefaultTaxRate)
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	status := invoicedomain.StatusDraft
	if req.Status != nil {
		status = *req.Status
	}

	verr := &invoicedomain.ValidationError{}
	if strings.TrimSpace(req.To.Name) == "" {
		verr.Add("to.name", "required", "recipient name is required")
	}
	compute.CheckItems(verr, req.Items)
	compute.CheckTaxRate(verr, taxRate)
	if !status.Valid() {
		verr.Add("status", "invalid_status", "status must be one of draft, sent, paid, overdue")
	}
	if err := verr.Err(); err != nil {
		return invoicedomain.Result{}, err
	}

	now := s.clock.Now()
	from := letterhead(settings.Company)
	if req.From != nil && strings.TrimSpace(req.From.Name) != "" {
		from = trimParty(*req.From)
	}
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	totals := compute.Totals(req.Items, taxRate)
	draft := invoicedomain.Invoice{
		ID:        s.genID.Generate().String(),
		From:      from,
		To:        trimParty(req.To),
		Date:      date,
		DueDate:   utcPtr(req.DueDate),
		Items:     totals.Items,
		Subtotal:  totals.Subtotal,
		TaxRate:   totals.TaxRate,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
		Status:    status,
		Notes:     strings.TrimSpace(req.Notes),
		CreatedBy: owner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Numbering and insert share one store so the sequence reflects what the insert lands in.
	created, source, err := ledger.Run(ctx, s.ledger, "create", func(ctx context.Context, store invoicedomain.Store) (invoicedomain.Invoice, error) {
		existing, err := store.List(ctx, owner)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		inv := draft.Clone()
		seq, err := compute.NextSequence(settings.NumberTemplate, existing)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		number, err := format.FormatInvoiceNumber(settings.NumberTemplate, date, seq)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		inv.InvoiceNumber = number
		if err := store.Insert(ctx, &inv); err != nil {
			return invoicedomain.Invoice{}, err
		}
		return inv, nil
	})
	if err != nil {
		return invoicedomain.Result{}, fmt.Errorf("create invoice: %w", err)
	}

	logger.WithContext(ctx, s.log).Info("invoice created",
		zap.String("invoice_id", created.ID),
		zap.String("invoice_number", created.InvoiceNumber),
		zap.String("source", string(source)),
	)
	return invoicedomain.Result{Invoice: created, Source: source}, nil
}

func (s *Service) Update(ctx context.Context, owner, id string, req invoicedomain.UpdateRequest) (invoicedomain.Result, error) {
	if err := checkOwner(owner); err != nil {
		return invoicedomain.Result{}, err
	}

	verr := &invoicedomain.ValidationError{}
	if req.To != nil && strings.TrimSpace(req.To.Name) == "" {
		verr.Add("to.name", "required", "recipient name is required")
	}
	if req.Items != nil {
		compute.CheckItems(verr, req.Items)
	}
	if req.TaxRate != nil {
		compute.CheckTaxRate(verr, *req.TaxRate)
	}
	if req.Status != nil && !req.Status.Valid() {
		verr.Add("status", "invalid_status", "status must be one of draft, sent, paid, overdue")
	}
	if err := verr.Err(); err != nil {
		return invoicedomain.Result{}, err
	}

	patch := invoicedomain.Patch{
		To:           partyPtr(req.To),
		Date:         utcPtr(req.Date),
		DueDate:      utcPtr(req.DueDate),
		ClearDueDate: req.ClearDueDate,
		Status:       req.Status,
		Notes:        trimmedPtr(req.Notes),
		UpdatedAt:    s.clock.Now(),
	}
	if req.From != nil {
		from := trimParty(*req.From)
		if from.Name == "" {
			from = letterhead(s.settings.Get().Company)
		}
		patch.From = &from
	}
	recompute := req.Items != nil || req.TaxRate != nil

	updated, source, err := ledger.Run(ctx, s.ledger, "update", func(ctx context.Context, store invoicedomain.Store) (*invoicedomain.Invoice, error) {
		p := patch
		if recompute {
			current, err := store.Get(ctx, owner, id)
			if err != nil {
				return nil, err
			}
			items, rate := current.Items, current.TaxRate
			if req.Items != nil {
				items = req.Items
			}
			if req.TaxRate != nil {
				rate = *req.TaxRate
			}
			totals := compute.Totals(items, rate)
			amounts := totals.Amounts()
			p.Items = totals.Items
			p.Amounts = &amounts
		}
		return store.Update(ctx, owner, id, p)
	})
	if err != nil {
		return invoicedomain.Result{}, wrapNotFound("update invoice", err)
	}
	return invoicedomain.Result{Invoice: *updated, Source: source}, nil
}

func (s *Service) Delete(ctx context.Context, owner, id string) (invoicedomain.Result, error) {
	if err := checkOwner(owner); err != nil {
		return invoicedomain.Result{}, err
	}

	deleted, source, err := s.ledger.Delete(ctx, owner, id)
	if err != nil {
		return invoicedomain.Result{}, wrapNotFound("delete invoice", err)
	}
	logger.WithContext(ctx, s.log).Info("invoice deleted",
		zap.String("invoice_id", deleted.ID),
		zap.String("source", string(source)),
	)
	return invoicedomain.Result{Invoice: *deleted, Source: source}, nil
}

func (s *Service) SetStatus(ctx context.Context, owner, id string, status invoicedomain.Status) (invoicedomain.Result, error) {
	if err := checkOwner(owner); err != nil {
		return invoicedomain.Result{}, err
	}
	if !status.Valid() {
		return invoicedomain.Result{}, invoicedomain.NewValidationError("status", "invalid_status", "status must be one of draft, sent, paid, overdue")
	}

	updated, source, err := s.ledger.Update(ctx, owner, id, invoicedomain.Patch{
		Status:    &status,
		UpdatedAt: s.clock.Now(),
	})
	if err != nil {
		return invoicedomain.Result{}, wrapNotFound("set invoice status", err)
	}
	return invoicedomain.Result{Invoice: *updated, Source: source}, nil
}

func (s *Service) Stats(ctx context.Context, owner string) (invoicedomain.StatsResult, error) {
	list, err := s.List(ctx, owner)
	if err != nil {
		return invoicedomain.StatsResult{}, err
	}
	return invoicedomain.StatsResult{Stats: compute.Summarize(list.Invoices), Source: list.Source}, nil
}

func (s *Service) RenderPDF(ctx context.Context, owner, id string, w io.Writer) (invoicedomain.Result, error) {
	res, err := s.Get(ctx, owner, id)
	if err != nil {
		return invoicedomain.Result{}, err
	}

	opts := document.Options{Currency: s.settings.Get().Currency}
	if err := document.Render(w, res.Invoice, opts); err != nil {
		logger.WithContext(ctx, s.log).Error("invoice render failed",
			zap.String("invoice_id", res.Invoice.ID),
			zap.Error(err),
		)
		return invoicedomain.Result{}, err
	}
	return res, nil
}

func (s *Service) RenderStatement(ctx context.Context, owner string, w io.Writer) (invoicedomain.Source, error) {
	list, err := s.List(ctx, owner)
	if err != nil {
		return "", err
	}
	settings := s.settings.Get()
	stats := compute.Summarize(list.Invoices)

	data := pdf.StatementData{
		CompanyName:    settings.Company.Name,
		CompanyAddress: strings.TrimSpace(settings.Company.Address + " " + settings.Company.City),
		CompanyEmail:   settings.Company.Email,
		Owner:          owner,
		GeneratedOn:    s.clock.Now().Format(document.DateLayout),
		TotalInvoices:  stats.TotalInvoices,
		TotalRevenue:   settings.Currency + document.FormatAmount(stats.TotalRevenue),
		Pending:        stats.Pending,
		Paid:           stats.Paid,
		Overdue:        stats.Overdue,
		Rows:           make([]pdf.StatementRow, 0, len(list.Invoices)),
	}
	for _, inv := range list.Invoices {
		data.Rows = append(data.Rows, pdf.StatementRow{
			InvoiceNumber: inv.InvoiceNumber,
			Date:          inv.Date.Format(document.DateLayout),
			Client:        inv.To.Name,
			Status:        string(inv.Status),
			Total:         settings.Currency + document.FormatAmount(inv.Total),
		})
	}

	doc, err := s.statements.GenerateStatement(ctx, data)
	if err != nil {
		return "", fmt.Errorf("render statement: %w", err)
	}
	if _, err := io.Copy(w, doc); err != nil {
		return "", err
	}
	return list.Source, nil
}

func checkOwner(owner string) error {
	if strings.TrimSpace(owner) == "" {
		return invoicedomain.ErrInvalidOwner
	}
	return nil
}

// wrapNotFound keeps ErrInvoiceNotFound unwrapped for the HTTP layer's error mapping.
func wrapNotFound(action string, err error) error {
	if errors.Is(err, invoicedomain.ErrInvoiceNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}

func letterhead(c config.CompanyConfig) invoicedomain.Party {
	return invoicedomain.Party{
		Name:    c.Name,
		Address: c.Address,
		City:    c.City,
		Phone:   c.Phone,
		Email:   c.Email,
	}
}

func trimParty(p invoicedomain.Party) invoicedomain.Party {
	return invoicedomain.Party{
		Name:    strings.TrimSpace(p.Name),
		Address: strings.TrimSpace(p.Address),
		City:    strings.TrimSpace(p.City),
		Phone:   strings.TrimSpace(p.Phone),
		Email:   strings.TrimSpace(p.Email),
	}
}

func partyPtr(p *invoicedomain.Party) *invoicedomain.Party {
	if p == nil {
		return nil
	}
	out := trimParty(*p)
	return &out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := t.UTC()
	return &out
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	out := strings.TrimSpace(*s)
	return &out
}
