package handlers

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"fraud-dashboard/internal/forms"
	"fraud-dashboard/internal/listing"
	"fraud-dashboard/internal/models"
)

// DocumentHandler serves the documents list and the download proxy.
type DocumentHandler struct {
	base
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(d Deps) *DocumentHandler {
	return &DocumentHandler{base{d}}
}

// ── List ───────────────────────────────────────────────────────

type documentListData struct {
	State      listing.State
	Rows       []models.Document
	Total      int
	TotalPages int
	Err        error
}

// List handles GET /documents.
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	st := listing.Parse(r.URL.Query(), "companyId", "statementId", "fileType")
	data := documentListData{State: st}

	f := models.DocumentFilter{
		CompanyID:   st.Filter("companyId"),
		StatementID: st.Filter("statementId"),
		FileType:    st.Filter("fileType"),
		Page:        st.Page,
		Size:        st.Size,
	}
	key := listKey(prefixDocuments, pageParams(f.Page, f.Size,
		"companyId", f.CompanyID, "statementId", f.StatementID, "fileType", f.FileType))
	page, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.Document], error) {
		return h.API.ListDocuments(ctx, f)
	})
	if err != nil {
		logFetch("documents", err)
		data.Err = err
	} else {
		data.Total, data.TotalPages = page.TotalElements, page.TotalPages
		data.Rows = listing.FilterPage(page.Content, st.Search, func(d models.Document) []string {
			return []string{d.FileName, d.FileType, d.UploadedBy}
		})
		switch st.SortBy {
		case "name":
			listing.Sort(data.Rows, func(d models.Document) (string, bool) { return strings.ToLower(d.FileName), d.FileName != "" }, st.Desc, listing.NilsLast)
		case "size":
			listing.Sort(data.Rows, func(d models.Document) (int64, bool) { return d.FileSize, true }, st.Desc, listing.NilsLast)
		case "uploaded":
			listing.Sort(data.Rows, func(d models.Document) (string, bool) { return d.UploadDate, d.UploadDate != "" }, st.Desc, listing.NilsLast)
		}
	}

	h.render(w, http.StatusOK, "documents", h.page(r, "Documents", "documents", data))
}

// ── Download ───────────────────────────────────────────────────

// Download handles GET /documents/{id}/download by streaming the backend
// blob with its content type.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	blob, err := h.API.DownloadDocument(ctx, id)
	switch {
	case isNotFound(err):
		h.missing(w, r, "Document", "/documents", "Back to documents")
		return
	case err != nil:
		zap.L().Warn("handlers: download document", zap.String("id", id), zap.Error(err))
		h.actionFailed(w, r, "/documents", "Failed to download document. Please try again.")
		return
	}
	defer blob.Body.Close()

	name := blob.FileName
	if name == "" {
		name = "document-" + id
	}
	ct := blob.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	if blob.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, blob.Body); err != nil {
		zap.L().Warn("handlers: stream document", zap.String("id", id), zap.Error(err))
	}
}

// ── Delete ─────────────────────────────────────────────────────

// Delete handles POST /documents/{id}/delete. The optional "return" field
// names the page to go back to.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	back := safeReturn(r.PostForm.Get("return"), "/documents")
	_, out := forms.Submit(ctx, h.Cache, forms.Action[struct{}]{
		Mutate: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, h.API.DeleteDocument(ctx, id)
		},
		Fallback:   "Failed to delete document. Please try again.",
		Invalidate: []string{prefixDocuments},
	})
	if out.Failed() {
		zap.L().Warn("handlers: delete document", zap.String("id", id), zap.Error(out.Err))
		h.actionFailed(w, r, back, out.Message)
		return
	}
	http.Redirect(w, r, withNotice(back, "document-deleted"), http.StatusSeeOther)
}
