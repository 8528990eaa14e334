package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// StatementData is the preformatted content of an account statement.
type StatementData struct {
	CompanyName    string
	CompanyAddress string
	CompanyEmail   string
	Owner          string
	GeneratedOn    string

	TotalInvoices int
	TotalRevenue  string
	Pending       int
	Paid          int
	Overdue       int

	Rows []StatementRow
}

type StatementRow struct {
	InvoiceNumber string
	Date          string
	Client        string
	Status        string
	Total         string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateStatement(ctx context.Context, data StatementData) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, data.CompanyName, props.Text{Size: 16, Style: fontstyle.Bold}),
		text.NewCol(4, "Statement", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Right}),
	)
	m.AddRow(14,
		col.New(8).Add(
			text.New(data.CompanyAddress, props.Text{Size: 9}),
			text.New(data.CompanyEmail, props.Text{Size: 9, Top: 4}),
		),
		col.New(4).Add(
			text.New("Account: "+data.Owner, props.Text{Size: 9, Align: align.Right}),
			text.New("Generated: "+data.GeneratedOn, props.Text{Size: 9, Top: 4, Align: align.Right}),
		),
	)

	m.AddRow(8,
		text.NewCol(3, fmt.Sprintf("Invoices: %d", data.TotalInvoices), props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(3, "Revenue: "+data.TotalRevenue, props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(2, fmt.Sprintf("Pending: %d", data.Pending), props.Text{Size: 10}),
		text.NewCol(2, fmt.Sprintf("Paid: %d", data.Paid), props.Text{Size: 10}),
		text.NewCol(2, fmt.Sprintf("Overdue: %d", data.Overdue), props.Text{Size: 10, Align: align.Right}),
	)
	m.AddRow(4, line.NewCol(12))

	m.AddRow(8,
		text.NewCol(2, "Number", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Date", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(4, "Client", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Status", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Total", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	if len(data.Rows) == 0 {
		m.AddRow(8, text.NewCol(12, "No invoices yet.", props.Text{Size: 9, Align: align.Center}))
	}
	for _, row := range data.Rows {
		m.AddRow(7,
			text.NewCol(2, row.InvoiceNumber, props.Text{Size: 9}),
			text.NewCol(2, row.Date, props.Text{Size: 9}),
			text.NewCol(4, row.Client, props.Text{Size: 9}),
			text.NewCol(2, row.Status, props.Text{Size: 9}),
			text.NewCol(2, row.Total, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate statement: %w", err)
	}
	return bytes.NewReader(doc.GetBytes()), nil
}
