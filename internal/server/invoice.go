package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

const dateOnlyLayout = "2006-01-02"

// invoicePayload is the body of create and update calls. Dates accept RFC 3339
// or a plain YYYY-MM-DD. An update sending dueDate as null or "" removes it.
type invoicePayload struct {
	From    *invoicedomain.Party     `json:"from"`
	To      *invoicedomain.Party     `json:"to"`
	Date    *string                  `json:"date"`
	DueDate optionalString           `json:"dueDate"`
	Items   []invoicedomain.LineItem `json:"items"`
	TaxRate *decimal.Decimal         `json:"taxRate"`
	Status  *string                  `json:"status"`
	Notes   *string                  `json:"notes"`
}

// optionalString tells an absent field apart from an explicit null.
type optionalString struct {
	set   bool
	value *string
}

func (o *optionalString) UnmarshalJSON(raw []byte) error {
	o.set = true
	if string(raw) == "null" {
		o.value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	o.value = &v
	return nil
}

// cleared reports an explicit null or blank value.
func (o optionalString) cleared() bool {
	return o.set && (o.value == nil || strings.TrimSpace(*o.value) == "")
}

type statusPayload struct {
	Status string `json:"status"`
}

type parsedDates struct {
	date    *time.Time
	dueDate *time.Time
}

func (p invoicePayload) dates() (parsedDates, error) {
	verr := &invoicedomain.ValidationError{}
	date := parseDate(verr, "date", p.Date)
	due := parseDate(verr, "dueDate", p.DueDate.value)
	if err := verr.Err(); err != nil {
		return parsedDates{}, err
	}
	return parsedDates{date: date, dueDate: due}, nil
}

func parseDate(verr *invoicedomain.ValidationError, field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339Nano, dateOnlyLayout} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	verr.Add(field, "invalid_date", "date must be RFC 3339 or YYYY-MM-DD")
	return nil
}

func statusPtr(raw *string) *invoicedomain.Status {
	if raw == nil {
		return nil
	}
	status := invoicedomain.Status(strings.ToLower(strings.TrimSpace(*raw)))
	return &status
}

func (s *Server) ListInvoices(c *gin.Context) {
	res, err := s.invoiceSvc.List(c.Request.Context(), ownerFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"invoices":      res.Invoices,
		"totalInvoices": res.Total,
		"source":        res.Source,
	})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	res, err := s.invoiceSvc.Get(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": res.Invoice, "source": res.Source})
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	dates, err := req.dates()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	create := invoicedomain.CreateRequest{
		From:    req.From,
		Date:    dates.date,
		DueDate: dates.dueDate,
		Items:   req.Items,
		TaxRate: req.TaxRate,
		Status:  statusPtr(req.Status),
	}
	if req.To != nil {
		create.To = *req.To
	}
	if req.Notes != nil {
		create.Notes = *req.Notes
	}

	res, err := s.invoiceSvc.Create(c.Request.Context(), ownerFrom(c), create)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Invoice created successfully",
		"invoice": res.Invoice,
		"source":  res.Source,
	})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req invoicePayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	dates, err := req.dates()
	if err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.invoiceSvc.Update(c.Request.Context(), ownerFrom(c), c.Param("id"), invoicedomain.UpdateRequest{
		From:         req.From,
		To:           req.To,
		Date:         dates.date,
		DueDate:      dates.dueDate,
		ClearDueDate: req.DueDate.cleared(),
		Items:        req.Items,
		TaxRate:      req.TaxRate,
		Status:       statusPtr(req.Status),
		Notes:        req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": res.Invoice, "source": res.Source})
}

func (s *Server) UpdateInvoiceStatus(c *gin.Context) {
	var req statusPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	status, err := invoicedomain.ParseStatus(req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	res, err := s.invoiceSvc.SetStatus(c.Request.Context(), ownerFrom(c), c.Param("id"), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": res.Invoice, "source": res.Source})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	res, err := s.invoiceSvc.Delete(c.Request.Context(), ownerFrom(c), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Invoice deleted successfully",
		"deletedInvoice": res.Invoice,
		"source":         res.Source,
	})
}

func (s *Server) DownloadInvoicePDF(c *gin.Context) {
	var buf bytes.Buffer
	res, err := s.invoiceSvc.RenderPDF(c.Request.Context(), ownerFrom(c), c.Param("id"), &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	filename := fmt.Sprintf("invoice-%s.pdf", res.Invoice.InvoiceNumber)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (s *Server) GetStats(c *gin.Context) {
	res, err := s.invoiceSvc.Stats(c.Request.Context(), ownerFrom(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(res.Source))
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": res.Stats, "source": res.Source})
}

func (s *Server) DownloadStatementPDF(c *gin.Context) {
	var buf bytes.Buffer
	source, err := s.invoiceSvc.RenderStatement(c.Request.Context(), ownerFrom(c), &buf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(contextSourceKey, string(source))
	name := slug.Make(s.settings.Get().Company.Name)
	if name == "" {
		name = "account"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "statement-"+name+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
