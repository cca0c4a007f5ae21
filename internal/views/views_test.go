package views

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraud-dashboard/internal/listing"
)

func fp(v float64) *float64 { return &v }

func TestMoney(t *testing.T) {
	assert.Equal(t, "1,234,567.89", Money(fp(1234567.891)))
	assert.Equal(t, "-42.50", Money(fp(-42.5)))
	assert.Equal(t, NotAvailable, Money(nil))
	assert.Equal(t, NotAvailable, Money(fp(math.NaN())))
	assert.Equal(t, NotAvailable, Money(fp(math.Inf(1))))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "12.3%", percent(fp(0.1234)))
	assert.Equal(t, "100.0%", percent(fp(1)))
	assert.Equal(t, NotAvailable, percent(nil))
}

func TestFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FileSize(512))
	assert.Equal(t, "2.0 KB", FileSize(2048))
	assert.Equal(t, "1.5 MB", FileSize(3<<19))
}

func TestEnum(t *testing.T) {
	assert.Equal(t, "Very High", Enum("VERY_HIGH"))
	assert.Equal(t, "Non Fraud", Enum("NON_FRAUD"))
	assert.Equal(t, "Unknown", Enum("  "))
}

func TestMarkdownDropsRawHTML(t *testing.T) {
	out := string(Markdown("**Elevated** risk <script>alert(1)</script>"))
	assert.Contains(t, out, "<strong>Elevated</strong>")
	assert.NotContains(t, out, "<script>")
}

func TestDictRejectsOddArguments(t *testing.T) {
	_, err := dict("a", 1, "b")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
	m, err := dict("a", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, m["a"])
}

func TestEveryPageParses(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	for _, page := range []string{
		"dashboard", "companies", "company", "company_form", "statements", "statement",
		"statement_new", "financial_data", "analysis", "documents", "document_upload",
		"risk_assessments", "risk_assessment", "alerts", "alert_resolve",
		"ml_models", "ml_performance", "settings", "login", "missing", "action_failed",
	} {
		assert.True(t, r.Has(page), page)
	}
	assert.False(t, r.Has("layout"))
	assert.False(t, r.Has("partials"))
}

func TestRenderLayout(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusTeapot, "missing", Page{
		Title:  "Company not found",
		Viewer: &Viewer{Email: "ana@example.com", Role: "viewer"},
		Banner: &Banner{Kind: "warning", Message: "Heads up"},
		Data:   map[string]any{"Subject": "Company", "Back": "/companies", "BackText": "Back to companies"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	assert.Contains(t, doc.Find("title").Text(), "Company not found")
	assert.Contains(t, doc.Find(".alert-warning").First().Text(), "Heads up")
	assert.Contains(t, doc.Find(".not-found").Text(), "Company not found.")
	assert.Contains(t, doc.Find(".who").Text(), "ana@example.com")
}

func TestRenderUnknownPageWritesNothing(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Render(rec, http.StatusOK, "nope", Page{})

	assert.Error(t, err)
	assert.Zero(t, rec.Body.Len())
}

func TestStaticServesStylesheet(t *testing.T) {
	rec := httptest.NewRecorder()
	Static("/static/").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/app.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Contains(t, rec.Body.String(), ".alert-danger")
}

func TestPagerLinks(t *testing.T) {
	at := func(page string) listing.State { return listing.Parse(url.Values{"page": {page}}) }

	first := pagerOf(at("0"), 3)
	assert.Empty(t, first.Prev)
	assert.Equal(t, "?page=1", first.Next)
	require.Len(t, first.Items, 3)
	assert.True(t, first.Items[0].Current)

	last := pagerOf(at("2"), 3)
	assert.Equal(t, "?page=1", last.Prev)
	assert.Empty(t, last.Next)

	// A page past the end links back into range and marks the last page.
	beyond := pagerOf(at("9"), 3)
	assert.Equal(t, "?page=1", beyond.Prev)
	assert.Empty(t, beyond.Next)
	assert.True(t, beyond.Items[2].Current)

	single := pagerOf(at("4"), 1)
	assert.Equal(t, "?", single.Prev)
	assert.Empty(t, single.Next)
}
