// Package views renders the dashboard's server-side HTML pages from
// embedded templates.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

//go:embed templates/*.html
var files embed.FS

//go:embed static
var static embed.FS

// Shared templates parsed into every page.
var shared = []string{"templates/layout.html", "templates/partials.html"}

// Banner is a dismissable message at the top of a page or form.
type Banner struct {
	Kind     string // success | danger | warning | info
	Message  string
	Link     string
	LinkText string
}

// Viewer is the signed-in analyst as shown in the header.
type Viewer struct {
	Email string
	Name  string
	Role  string
	// CanEdit and CanAdmin gate buttons; the routes enforce the same rules.
	CanEdit  bool
	CanAdmin bool
}

// Page is the data passed to the layout.
type Page struct {
	Title      string
	Nav        string // active navigation entry
	Viewer     *Viewer
	AlertCount int
	Banner     *Banner
	// Refresh, when set, sends the browser to the URL after RefreshAfter seconds.
	Refresh      string
	RefreshAfter float64
	Data         any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page under templates/ together with the shared layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, eris.Wrap(err, "views: list templates")
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range names {
		if isShared(name) {
			continue
		}
		t, err := template.New("layout.html").Funcs(Funcs()).ParseFS(files, append(shared, name)...)
		if err != nil {
			return nil, eris.Wrapf(err, "views: parse %s", name)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}
	return r, nil
}

func isShared(name string) bool {
	for _, s := range shared {
		if s == name {
			return true
		}
	}
	return false
}

// Has reports whether a page template exists.
func (r *Renderer) Has(page string) bool {
	_, ok := r.pages[page]
	return ok
}

// Render executes page into a buffer and writes it with status. Nothing is
// written when execution fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, p Page) error {
	t, ok := r.pages[page]
	if !ok {
		return eris.Errorf("views: unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		return eris.Wrapf(err, "views: execute %s", page)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet under the prefix it is mounted at.
func Static(prefix string) http.Handler {
	sub, _ := fs.Sub(static, "static")
	return http.StripPrefix(prefix, http.FileServer(http.FS(sub)))
}
