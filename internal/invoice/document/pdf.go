package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

const fontFamily = "Helvetica"

// ErrIncompleteInvoice is returned before any output when the invoice lacks
// a number, a recipient name or line items.
var ErrIncompleteInvoice = errors.New("incomplete_invoice")

// Render plans and draws inv into a buffer, then copies it to w. Nothing is
// written to w unless the whole document rendered.
func Render(w io.Writer, inv domain.Invoice, opts Options) error {
	if err := checkComplete(inv); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Execute(&buf, Plan(inv, opts)); err != nil {
		return fmt.Errorf("render invoice %s: %w", inv.InvoiceNumber, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Execute draws cmds on a fresh A4 document and writes the PDF to w.
func Execute(w io.Writer, cmds []Command) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(Margin, Margin, Margin)
	pdf.SetAutoPageBreak(false, Margin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, cmd := range cmds {
		switch cmd.Kind {
		case KindAddPage:
			pdf.AddPage()
		case KindFillRect:
			pdf.SetFillColor(cmd.Color.R, cmd.Color.G, cmd.Color.B)
			pdf.Rect(cmd.X, cmd.Y, cmd.W, cmd.H, "F")
		case KindLine:
			pdf.SetDrawColor(cmd.Color.R, cmd.Color.G, cmd.Color.B)
			pdf.Line(cmd.X, cmd.Y, cmd.X+cmd.W, cmd.Y)
		case KindText:
			style := ""
			if cmd.Bold {
				style = "B"
			}
			pdf.SetFont(fontFamily, style, cmd.Size)
			pdf.SetTextColor(cmd.Color.R, cmd.Color.G, cmd.Color.B)
			pdf.SetXY(cmd.X, cmd.Y)
			pdf.CellFormat(cmd.W, cmd.H, tr(cmd.Text), "", 0, string(cmd.Align), false, 0, "")
		}
		if pdf.Err() {
			return pdf.Error()
		}
	}
	return pdf.Output(w)
}

func checkComplete(inv domain.Invoice) error {
	var missing []string
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		missing = append(missing, "invoiceNumber")
	}
	if strings.TrimSpace(inv.To.Name) == "" {
		missing = append(missing, "to.name")
	}
	if len(inv.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteInvoice, strings.Join(missing, ", "))
	}
	return nil
}
