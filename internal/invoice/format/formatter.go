package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)
	tokenRe  = regexp.MustCompile(`\{(YYYY|YY|MM|DD|SEQ\d*)\}`)
)

// DefaultInvoiceNumberTemplate yields INV-0001, INV-0002, ... and widens past INV-9999.
const DefaultInvoiceNumberTemplate = "INV-{SEQ4}"

// FormatInvoiceNumber renders template for the given issue date and sequence.
// Supported tokens: {YYYY} {YY} {MM} {DD} {SEQ} and {SEQn} (zero padded to n digits).
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := strings.NewReplacer(
		"{YYYY}", issuedAt.Format("2006"),
		"{YY}", issuedAt.Format("06"),
		"{MM}", issuedAt.Format("01"),
		"{DD}", issuedAt.Format("02"),
		"{SEQ}", strconv.FormatInt(seq, 10),
	).Replace(template)

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		width, err := strconv.Atoi(seqPadRe.FindStringSubmatch(m)[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice number template: %s", out)
	}
	return out, nil
}

// SequenceParser reads the sequence back out of numbers rendered from one
// template. Date tokens match their digit width, so digits they produce are
// never mistaken for the sequence.
type SequenceParser struct {
	re *regexp.Regexp
}

// NewSequenceParser compiles template into an anchored pattern whose first
// {SEQ} or {SEQn} token is the captured sequence.
func NewSequenceParser(template string) (*SequenceParser, error) {
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("invoice number template is empty")
	}

	var b strings.Builder
	b.WriteString("^")
	captured := false
	last := 0
	for _, loc := range tokenRe.FindAllStringSubmatchIndex(template, -1) {
		b.WriteString(regexp.QuoteMeta(template[last:loc[0]]))
		last = loc[1]

		token := template[loc[2]:loc[3]]
		switch {
		case token == "YYYY":
			b.WriteString(`\d{4}`)
		case token == "YY" || token == "MM" || token == "DD":
			b.WriteString(`\d{2}`)
		case captured:
			b.WriteString(`\d+`)
		default:
			captured = true
			width := strings.TrimPrefix(token, "SEQ")
			if width == "" {
				b.WriteString(`(\d+)`)
			} else {
				b.WriteString(`(\d{` + width + `,})`)
			}
		}
	}
	b.WriteString(regexp.QuoteMeta(template[last:]))
	b.WriteString("$")

	if !captured {
		return nil, fmt.Errorf("invoice number template %q has no {SEQ} token", template)
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("compile invoice number template %q: %w", template, err)
	}
	return &SequenceParser{re: re}, nil
}

// Parse reports false for numbers that were not rendered from the template.
func (p *SequenceParser) Parse(number string) (int64, bool) {
	m := p.re.FindStringSubmatch(strings.TrimSpace(number))
	if m == nil {
		return 0, false
	}
	seq, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

// ParseSequence extracts the sequence of number as rendered from template.
func ParseSequence(template, number string) (int64, bool) {
	p, err := NewSequenceParser(template)
	if err != nil {
		return 0, false
	}
	return p.Parse(number)
}

// ValidateTemplate checks that template renders and that its sequence can be
// read back from what it renders.
func ValidateTemplate(template string) error {
	p, err := NewSequenceParser(template)
	if err != nil {
		return err
	}
	issued := time.Date(2026, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, seq := range []int64{1, 12345} {
		number, err := FormatInvoiceNumber(template, issued, seq)
		if err != nil {
			return err
		}
		if got, ok := p.Parse(number); !ok || got != seq {
			return fmt.Errorf("invoice number template %q: sequence %d does not read back from %q", template, seq, number)
		}
	}
	return nil
}
