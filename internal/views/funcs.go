package views

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fraud-dashboard/internal/listing"
	"fraud-dashboard/internal/risktier"
	"fraud-dashboard/internal/scorecard"
)

// NotAvailable is printed for missing numbers.
const NotAvailable = "N/A"

var (
	printer = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
	md      = goldmark.New()
)

// Funcs returns the template helpers shared by every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"fixed":     fixed,
		"money":     Money,
		"percent":   percent,
		"filesize":  FileSize,
		"enum":      Enum,
		"markdown":  Markdown,
		"tier":      tierOf,
		"pager":     pagerOf,
		"pageRange": pageRange,
		"dict":      dict,
		"checkmark": checkmark,
		"deref":     deref,
		"itoa":      func(n int) string { return fmt.Sprint(n) },
	}
}

func fixed(v *float64, places int) string {
	return scorecard.Fixed(v, int32(places))
}

func finite(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

// Money formats an amount with thousands separators and two decimals.
func Money(v *float64) string {
	if !finite(v) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(*v).Round(2)
	return printer.Sprintf("%.2f", d.InexactFloat64())
}

// percent formats a 0-1 ratio as a percentage with one decimal.
func percent(v *float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return decimal.NewFromFloat(*v).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// FileSize formats a byte count as B, KB or MB.
func FileSize(n int64) string {
	switch {
	case n < 1024:
		return printer.Sprintf("%d B", n)
	case n < 1024*1024:
		return decimal.NewFromInt(n).Div(decimal.NewFromInt(1024)).StringFixed(1) + " KB"
	default:
		return decimal.NewFromInt(n).Div(decimal.NewFromInt(1024*1024)).StringFixed(1) + " MB"
	}
}

// Enum turns a server enum such as VERY_HIGH into "Very High".
func Enum(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	return titler.String(strings.ToLower(strings.ReplaceAll(s, "_", " ")))
}

// Markdown renders an assessment summary. Raw HTML in the source is
// dropped by goldmark's default renderer.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		zap.L().Warn("views: render markdown", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

// tierOf maps a label to its CSS token given the kind of label.
func tierOf(kind, label string) string {
	var t risktier.Tier
	switch kind {
	case "level":
		t = risktier.FromRiskLevel(label)
	case "severity":
		t = risktier.FromSeverity(label)
	case "status":
		t = risktier.FromStatementStatus(label)
	case "prediction":
		t = risktier.FromPrediction(label)
	case "zone":
		t = risktier.FromRiskCategory(label)
	case "manipulation":
		t = risktier.FromManipulation(label)
	case "strength":
		t = risktier.FromStrength(label)
	}
	return t.String()
}

// PageLink is one pagination button with its href.
type PageLink struct {
	listing.Item
	Href string
}

// Pager is the pagination control of a list: numbered buttons plus the
// previous and next links, empty when that direction is disabled.
type Pager struct {
	Items []PageLink
	Prev  string
	Next  string
}

func pagerOf(s listing.State, totalPages int) Pager {
	current := listing.Clamp(s.Page, totalPages)
	items := listing.Window(current, totalPages, listing.DefaultWindow)
	p := Pager{Items: make([]PageLink, len(items))}
	for i, it := range items {
		p.Items[i] = PageLink{Item: it}
		if !it.Ellipsis {
			p.Items[i].Href = s.WithPage(it.Page).Href()
		}
	}
	if prev := listing.Prev(current, totalPages); prev != current || s.Page > current {
		p.Prev = s.WithPage(prev).Href()
	}
	if next := listing.Next(current, totalPages); next != current {
		p.Next = s.WithPage(next).Href()
	}
	return p
}

func pageRange(s listing.State, total int) string {
	from, to := listing.Range(s.Page, s.Size, total)
	return printer.Sprintf("Showing %d to %d of %d entries", from, to, total)
}

// dict builds a map for passing several values to a partial.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

func checkmark(c scorecard.Check) string {
	switch c {
	case scorecard.CheckPass:
		return "✓"
	case scorecard.CheckFail:
		return "✗"
	default:
		return "?"
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
