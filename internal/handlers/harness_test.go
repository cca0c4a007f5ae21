package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/export"
	"fraud-dashboard/internal/middleware"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/prefs"
	"fraud-dashboard/internal/querycache"
	"fraud-dashboard/internal/resilience"
	"fraud-dashboard/internal/riskapi"
	"fraud-dashboard/internal/storage"
	"fraud-dashboard/internal/upload"
	"fraud-dashboard/internal/views"
)

const (
	testSecret   = "test-secret"
	testPassword = "password123"
)

// backend is a fake fraud API. Routes are "METHOD /path" without the /api
// prefix; unknown routes answer 404.
type backend struct {
	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	calls   map[string]int
	bodies  map[string][]byte
	queries map[string]url.Values
}

func newBackend(t *testing.T) (*backend, *riskapi.Client) {
	t.Helper()
	b := &backend{
		routes:  map[string]http.HandlerFunc{},
		calls:   map[string]int{},
		bodies:  map[string][]byte{},
		queries: map[string]url.Values{},
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, riskapi.New(srv.URL + "/api")
}

func (b *backend) on(route string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[route] = h
}

func (b *backend) reply(route string, status int, body string) {
	b.on(route, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func (b *backend) count(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

func (b *backend) body(route string) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bodies[route]
}

// query is the query string of the last call to route.
func (b *backend) query(route string) url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries[route]
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api")
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	b.mu.Lock()
	b.calls[route]++
	b.bodies[route] = body
	b.queries[route] = r.URL.Query()
	h, ok := b.routes[route]
	b.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not found"}`)
		return
	}
	h(w, r)
}

type testApp struct {
	backend  *backend
	deps     Deps
	router   http.Handler
	filesDir string
}

// newTestApp builds the router over a fake backend. configure runs on the
// Deps before the router is built.
func newTestApp(t *testing.T, configure ...func(*Deps)) *testApp {
	t.Helper()
	b, api := newBackend(t)
	dir := t.TempDir()
	filesDir := filepath.Join(dir, "files")

	files, err := storage.NewLocalStore(filesDir, "/files")
	require.NoError(t, err)
	renderer, err := views.New()
	require.NoError(t, err)

	cache := querycache.New(querycache.WithRetry(resilience.NoRetry()))
	deps := Deps{
		API:      api,
		Cache:    cache,
		Views:    renderer,
		Prefs:    prefs.NewFileRepository(filepath.Join(dir, "prefs.json")),
		Staging:  NewStaging(files),
		Uploads:  upload.NewSessions(AfterUpload(cache)),
		Archiver: export.NewArchiver(files),
		Files:    files,
		FilesDir: filesDir,
	}
	for _, c := range configure {
		c(&deps)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	router := NewRouter(deps, RouterConfig{
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
		Users: []models.User{
			{Email: "analyst@example.com", Name: "Ana Lyst", Role: ctxkeys.RoleAnalyst, PasswordHash: string(hash)},
		},
		AllowedOrigins: []string{"http://localhost:3000"},
	})

	return &testApp{backend: b, deps: deps, router: router, filesDir: filesDir}
}

// sessionCookie signs a session for <role>@example.com.
func sessionCookie(t *testing.T, role string) *http.Cookie {
	t.Helper()
	token, err := middleware.IssueToken(testSecret, models.User{Email: role + "@example.com", Name: "Test " + role, Role: role}, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

// do sends a page request as role; "" sends it without a session. A non-nil
// form is posted url-encoded.
func (a *testApp) do(t *testing.T, role, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return a.send(t, role, req)
}

func (a *testApp) send(t *testing.T, role string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html")
	}
	if role != "" {
		req.AddCookie(sessionCookie(t, role))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func parseHTML(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	return doc
}

type formFile struct {
	name        string
	contentType string
	data        []byte
}

// multipartRequest builds a POST with the given fields and optional file.
func multipartRequest(t *testing.T, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+file.name+`"`)
		h.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func httpRequest(t *testing.T, method, target string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, target, nil)
}
