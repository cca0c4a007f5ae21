package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fraud-dashboard/internal/cron"
	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/export"
	"fraud-dashboard/internal/forms"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/prefs"
	"fraud-dashboard/internal/querycache"
	"fraud-dashboard/internal/riskapi"
	"fraud-dashboard/internal/storage"
	"fraud-dashboard/internal/upload"
	"fraud-dashboard/internal/views"
)

// requestTimeout bounds the backend calls made for one request. Uploads and
// exports use their own, longer limits.
const requestTimeout = 15 * time.Second

// Deps are the collaborators shared by every handler.
type Deps struct {
	API      *riskapi.Client
	Cache    *querycache.Cache
	Views    *views.Renderer
	Prefs    prefs.Repository
	Alerts   *cron.AlertWatcher // optional
	Staging  *storage.Staging
	Uploads  *upload.Sessions
	Archiver *export.Archiver // optional
	Files    storage.Store
	FilesDir string // local directory behind Files, "" for remote stores
}

// base gives handlers rendering and caching helpers over Deps.
type base struct {
	Deps
}

// ── Cache keys ───────────────────────────────────────────────────
// Keys are "<prefix>:<kind>[/<id>][?params]". Mutations invalidate by prefix.

const (
	prefixCompanies   = "companies"
	prefixFiscalYears = "fiscal-years"
	prefixStatements  = "statements"
	prefixFinancial   = "financial-data"
	prefixAnalysis    = "analysis"
	prefixDocuments   = "documents"
	prefixRisk        = "risk-assessments"
	prefixAlerts      = "risk-alerts"
	prefixML          = "ml"
)

func listKey(prefix string, params map[string]string) string {
	return querycache.Key(prefix+":list", params)
}

func detailKey(prefix, id string, parts ...string) string {
	k := prefix + ":detail/" + id
	for _, p := range parts {
		k += "/" + p
	}
	return k
}

func pageParams(page, size int, kv ...string) map[string]string {
	m := map[string]string{"page": strconv.Itoa(page), "size": strconv.Itoa(size)}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = kv[i+1]
	}
	return m
}

// fetch runs a cached query.
func fetch[T any](ctx context.Context, b *base, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	return querycache.Fetch(ctx, b.Cache, key, fn)
}

// ── Rendering ────────────────────────────────────────────────────

func viewer(ctx context.Context) *views.Viewer {
	email := ctxkeys.Email(ctx)
	if email == "" {
		return nil
	}
	return &views.Viewer{
		Email:    email,
		Name:     ctxkeys.Name(ctx),
		Role:     ctxkeys.Role(ctx),
		CanEdit:  ctxkeys.Can(ctx, ctxkeys.RoleAnalyst),
		CanAdmin: ctxkeys.Can(ctx, ctxkeys.RoleAdmin),
	}
}

// preferences loads the analyst's notification preferences, falling back
// to the defaults when the repository fails.
func (b *base) preferences(ctx context.Context) models.NotificationPreferences {
	if b.Prefs == nil {
		return models.DefaultNotificationPreferences()
	}
	p, err := b.Prefs.Load(ctx, ctxkeys.Email(ctx))
	if err != nil {
		zap.L().Warn("handlers: load preferences", zap.Error(err))
		return models.DefaultNotificationPreferences()
	}
	return p
}

func (b *base) page(r *http.Request, title, nav string, data any) views.Page {
	p := views.Page{
		Title:  title,
		Nav:    nav,
		Viewer: viewer(r.Context()),
		Banner: notice(r.URL.Query()),
		Data:   data,
	}
	if b.Alerts != nil && p.Viewer != nil {
		p.AlertCount = len(b.Alerts.Feed(b.preferences(r.Context())))
	}
	return p
}

func (b *base) render(w http.ResponseWriter, status int, name string, p views.Page) {
	if err := b.Views.Render(w, status, name, p); err != nil {
		zap.L().Error("handlers: render page", zap.String("page", name), zap.Error(err))
		http.Error(w, "Failed to render page.", http.StatusInternalServerError)
	}
}

// redirectAfter turns p into the success state of a create flow: the banner
// stays visible for RedirectDelay seconds before the browser moves on.
func redirectAfter(p views.Page, message, target string, delay float64) views.Page {
	p.Banner = &views.Banner{Kind: "success", Message: message}
	p.Refresh = target
	p.RefreshAfter = delay
	return p
}

// failure builds the banner of a failed submission.
func failure(message string) *views.Banner {
	return &views.Banner{Kind: "danger", Message: message}
}

// ── Notices ──────────────────────────────────────────────────────
// Redirects after a mutation carry ?notice=<key> so the next page can
// show what happened.

var notices = map[string]string{
	"company-deleted":   "Company deleted successfully.",
	"statement-deleted": "Financial statement deleted successfully.",
	"status-updated":    "Statement status updated successfully.",
	"document-deleted":  "Document deleted successfully.",
	"document-uploaded": "Document uploaded successfully.",
	"alert-resolved":    "Alert resolved successfully.",
	"analysis-done":     "Financial analysis calculated successfully.",
	"assessment-done":   "Risk assessment completed successfully.",
	"prediction-done":   "ML prediction completed successfully.",
	"model-updated":     "Model status updated successfully.",
	"model-deleted":     "Model deleted successfully.",
	"report-archived":   "Risk report archived.",
	"signed-out":        "You have been signed out.",
}

func notice(q url.Values) *views.Banner {
	msg, ok := notices[q.Get("notice")]
	if !ok {
		return nil
	}
	b := &views.Banner{Kind: "success", Message: msg}
	if f := q.Get("file"); strings.HasPrefix(f, "/") || strings.HasPrefix(f, "https://") {
		b.Link, b.LinkText = f, "Open file"
	}
	return b
}

func withNotice(path, key string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "notice=" + url.QueryEscape(key)
}

// safeReturn accepts only local paths as a post-action destination.
func safeReturn(target, fallback string) string {
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\") {
		return target
	}
	return fallback
}

// logFetch records a failed query. The page shows a scoped error panel.
func logFetch(what string, err error) {
	if err == nil || riskapi.IsNotFound(err) {
		return
	}
	zap.L().Warn("handlers: fetch failed", zap.String("query", what), zap.Error(err))
}

func isNotFound(err error) bool { return riskapi.IsNotFound(err) }

// statusFor picks the response code of a failed submission.
func statusFor(out forms.Outcome) int {
	if out.Errors.Any() {
		return http.StatusUnprocessableEntity
	}
	if riskapi.ServerMessage(out.Err) != "" || riskapi.IsNotFound(out.Err) {
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

type actionFailedData struct {
	Back string
}

// actionFailed renders the result of a failed button action such as a
// delete, with a link back to where it was started.
func (b *base) actionFailed(w http.ResponseWriter, r *http.Request, back, message string) {
	p := b.page(r, "Action failed", "", actionFailedData{Back: back})
	p.Banner = &views.Banner{Kind: "danger", Message: message, Link: back, LinkText: "Go back"}
	b.render(w, http.StatusBadGateway, "action_failed", p)
}

type missingData struct {
	Subject  string
	Back     string
	BackText string
}

// missing renders the not-found warning for a record reached outside its
// own detail page, e.g. a download.
func (b *base) missing(w http.ResponseWriter, r *http.Request, subject, back, backText string) {
	p := b.page(r, subject+" not found", "", missingData{Subject: subject, Back: back, BackText: backText})
	b.render(w, http.StatusNotFound, "missing", p)
}
