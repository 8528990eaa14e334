// Package document lays out and renders the printable invoice.
//
// Plan is a pure function from an invoice to a list of draw commands over a
// cursor on an A4 portrait page measured in millimetres. Render executes the
// plan with gofpdf.
package document

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/invoicedesk/internal/invoice/domain"
)

// Page geometry, in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	Margin       = 15.0
	ContentWidth = PageWidth - 2*Margin
	// PartyColumn is the horizontal offset of the TO block from the left margin.
	PartyColumn = 95.0

	lineHeight   = 6.0
	rowHeight    = 8.0
	titleHeight  = 14.0
	blockGap     = 6.0
	footerOffset = 10.0
	totalsWidth  = 80.0
	notesWrapAt  = 95

	DateLayout = "Jan 2, 2006"
	FooterText = "Thank you for your business!"
)

// Table column widths: description, qty, price, total.
var columnWidths = [4]float64{90, 20, 35, 35}

type Kind int

const (
	KindAddPage Kind = iota
	KindText
	KindFillRect
	KindLine
)

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type Color struct{ R, G, B int }

var (
	headerFill = Color{R: 52, G: 73, B: 94}
	stripeFill = Color{R: 242, G: 244, B: 247}
	ruleColor  = Color{R: 189, G: 195, B: 199}
	white      = Color{R: 255, G: 255, B: 255}
	ink        = Color{R: 33, G: 37, B: 41}
)

// Command is one drawing instruction. Fields not used by Kind are zero.
type Command struct {
	Kind  Kind
	X, Y  float64
	W, H  float64
	Text  string
	Align Align
	Bold  bool
	Size  float64
	Color Color
}

// Options tune presentation only; they never change the layout rules.
type Options struct {
	Currency string
}

type planner struct {
	cmds []Command
	y    float64
	page int
	opts Options
}

// Plan lays out inv. The only pagination rule: when the next block would
// cross the usable page height, start a new page and reset the cursor to
// the top margin.
func Plan(inv domain.Invoice, opts Options) []Command {
	p := &planner{opts: opts}
	p.addPage()

	p.title()
	p.metadata(inv)
	p.parties(inv)
	p.dueDate(inv)
	p.table(inv.Items)
	p.totals(inv)
	p.notes(inv.Notes)
	p.footer()
	return p.cmds
}

func (p *planner) addPage() {
	p.cmds = append(p.cmds, Command{Kind: KindAddPage})
	p.page++
	p.y = Margin
}

func (p *planner) ensure(h float64) {
	if p.y+h > PageHeight-Margin {
		p.addPage()
	}
}

func (p *planner) text(x, w, h float64, s string, align Align, bold bool, size float64, color Color) {
	p.cmds = append(p.cmds, Command{
		Kind: KindText, X: x, Y: p.y, W: w, H: h,
		Text: s, Align: align, Bold: bold, Size: size, Color: color,
	})
}

func (p *planner) fill(x, w, h float64, color Color) {
	p.cmds = append(p.cmds, Command{Kind: KindFillRect, X: x, Y: p.y, W: w, H: h, Color: color})
}

func (p *planner) rule() {
	p.cmds = append(p.cmds, Command{Kind: KindLine, X: Margin, Y: p.y, W: ContentWidth, Color: ruleColor})
}

func (p *planner) title() {
	p.text(Margin, ContentWidth, titleHeight, "INVOICE", AlignCenter, true, 24, ink)
	p.y += titleHeight + 2
}

func (p *planner) metadata(inv domain.Invoice) {
	lines := []string{
		"Invoice #: " + inv.InvoiceNumber,
		"Date: " + inv.Date.Format(DateLayout),
		"Status: " + strings.ToUpper(string(inv.Status)),
	}
	for _, line := range lines {
		p.text(Margin, ContentWidth, lineHeight, line, AlignLeft, false, 10, ink)
		p.y += lineHeight
	}
	p.y += blockGap
}

func partyLines(party domain.Party) []string {
	lines := []string{party.Name}
	for _, field := range []string{party.Address, party.City, party.Phone, party.Email} {
		if strings.TrimSpace(field) != "" {
			lines = append(lines, field)
		}
	}
	return lines
}

func (p *planner) parties(inv domain.Invoice) {
	from, to := partyLines(inv.From), partyLines(inv.To)
	rows := max(len(from), len(to))
	p.ensure(lineHeight * float64(rows+1))

	p.text(Margin, PartyColumn, lineHeight, "FROM", AlignLeft, true, 11, ink)
	p.text(Margin+PartyColumn, ContentWidth-PartyColumn, lineHeight, "TO", AlignLeft, true, 11, ink)
	p.y += lineHeight
	for i := range rows {
		if i < len(from) {
			p.text(Margin, PartyColumn, lineHeight, from[i], AlignLeft, i == 0, 10, ink)
		}
		if i < len(to) {
			p.text(Margin+PartyColumn, ContentWidth-PartyColumn, lineHeight, to[i], AlignLeft, i == 0, 10, ink)
		}
		p.y += lineHeight
	}
	p.y += blockGap / 2
}

func (p *planner) dueDate(inv domain.Invoice) {
	if inv.DueDate == nil {
		return
	}
	p.text(Margin, ContentWidth, lineHeight, "Due Date: "+inv.DueDate.Format(DateLayout), AlignRight, true, 10, ink)
	p.y += lineHeight
}

func (p *planner) table(items []domain.LineItem) {
	p.y += blockGap / 2
	p.ensure(2 * rowHeight)

	p.fill(Margin, ContentWidth, rowHeight, headerFill)
	p.row([4]string{"Description", "Qty", "Price", "Total"}, true, white)
	p.y += rowHeight

	for i, item := range items {
		p.ensure(rowHeight)
		if i%2 == 1 {
			p.fill(Margin, ContentWidth, rowHeight, stripeFill)
		}
		p.row([4]string{
			item.Description,
			fmt.Sprintf("%d", item.Quantity),
			p.money(item.Price),
			p.money(item.Total),
		}, false, ink)
		p.y += rowHeight
	}
	p.rule()
	p.y += blockGap / 2
}

func (p *planner) row(cells [4]string, bold bool, color Color) {
	x := Margin
	for i, cell := range cells {
		align := AlignRight
		if i == 0 {
			align = AlignLeft
		}
		p.text(x+1, columnWidths[i]-2, rowHeight, cell, align, bold, 10, color)
		x += columnWidths[i]
	}
}

func (p *planner) totals(inv domain.Invoice) {
	p.ensure(3 * lineHeight)
	x := Margin + ContentWidth - totalsWidth
	lines := []struct {
		label  string
		amount decimal.Decimal
		bold   bool
	}{
		{"Subtotal:", inv.Subtotal, false},
		{fmt.Sprintf("Tax (%s%%):", inv.TaxRate.String()), inv.TaxAmount, false},
		{"Total:", inv.Total, true},
	}
	for _, line := range lines {
		p.text(x, totalsWidth/2, lineHeight, line.label, AlignLeft, line.bold, 10, ink)
		p.text(x+totalsWidth/2, totalsWidth/2, lineHeight, p.money(line.amount), AlignRight, line.bold, 10, ink)
		p.y += lineHeight
	}
	p.y += blockGap
}

func (p *planner) notes(notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}
	lines := wrap(notes, notesWrapAt)
	p.ensure(lineHeight * 2)
	p.text(Margin, ContentWidth, lineHeight, "Notes:", AlignLeft, true, 10, ink)
	p.y += lineHeight
	for _, line := range lines {
		p.ensure(lineHeight)
		p.text(Margin, ContentWidth, lineHeight, line, AlignLeft, false, 9, ink)
		p.y += lineHeight
	}
}

func (p *planner) footer() {
	footerY := PageHeight - Margin - footerOffset
	if p.y > footerY {
		p.addPage()
	}
	p.y = footerY
	p.text(Margin, ContentWidth, lineHeight, FooterText, AlignCenter, false, 10, ink)
}

func (p *planner) money(d decimal.Decimal) string {
	return p.opts.Currency + FormatAmount(d)
}

// FormatAmount renders d with two decimals and thousands separators.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.Abs().StringFixedBank(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

// wrap splits text on newlines, then greedily on spaces so no line exceeds width runes
// unless a single word is longer.
func wrap(text string, width int) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			if len([]rune(line))+1+len([]rune(word)) > width {
				out = append(out, line)
				line = word
				continue
			}
			line += " " + word
		}
		out = append(out, line)
	}
	return out
}
