package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"fraud-dashboard/internal/ctxkeys"
	"fraud-dashboard/internal/listing"
	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/querycache"
	"fraud-dashboard/internal/storage"
	"fraud-dashboard/internal/upload"
)

// uploadTimeout bounds one upload or download, including the transfer.
const uploadTimeout = 2 * time.Minute

// fileTooLarge is shown when the request body exceeds the upload ceiling.
const fileTooLarge = "File too large. Maximum size is 10MB."

// multipartSlack covers the multipart framing around a file of the maximum
// size, so the size check can report the file size instead of a truncated body.
const multipartSlack = 1 << 20

// UploadHandler runs the document upload flow. The selected file is staged
// so a failed upload can be retried without picking it again.
type UploadHandler struct {
	base
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(d Deps) *UploadHandler {
	return &UploadHandler{base{d}}
}

func policyFor(kind string) upload.Policy {
	if kind == upload.StatementPolicy.Name {
		return upload.StatementPolicy
	}
	return upload.DocumentPolicy
}

type uploadData struct {
	Kind         string
	Policy       upload.Policy
	MaxSize      int64
	Flow         upload.Snapshot
	Target       upload.Target
	Return       string
	Statements   []models.FinancialStatement
	StatementErr error
}

// ActionURL repeats the target in the query string so it survives a body
// that was refused for its size.
func (d uploadData) ActionURL() string {
	q := url.Values{"kind": {d.Kind}}
	for k, v := range map[string]string{"statementId": d.Target.StatementID, "companyId": d.Target.CompanyID, "return": d.Return} {
		if v != "" {
			q.Set(k, v)
		}
	}
	return "/documents/upload?" + q.Encode()
}

func (h *UploadHandler) flow(r *http.Request, kind string) *upload.Flow {
	return h.Uploads.Get(ctxkeys.Email(r.Context()), policyFor(kind))
}

// Page handles GET /documents/upload.
func (h *UploadHandler) Page(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	target := upload.Target{StatementID: q.Get("statementId"), CompanyID: q.Get("companyId")}
	h.renderPage(w, r, http.StatusOK, q.Get("kind"), target, q.Get("return"), "")
}

// renderPage shows the flow of the caller. note, when set, replaces the
// inline error of the flow.
func (h *UploadHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, kind string, target upload.Target, back, note string) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	p := policyFor(kind)
	data := uploadData{
		Kind:    p.Name,
		Policy:  p,
		MaxSize: upload.MaxUploadSize,
		Flow:    h.flow(r, kind).Snapshot(),
		Target:  target,
		Return:  safeReturn(back, ""),
	}
	if note != "" {
		data.Flow.Error = note
	}

	// The statement picker is only needed while no statement is chosen.
	if target.StatementID == "" {
		f := models.StatementFilter{CompanyID: target.CompanyID, Size: listing.MaxSize}
		key := listKey(prefixStatements, pageParams(0, f.Size, "companyId", f.CompanyID, "status", "", "statementType", ""))
		page, err := fetch(ctx, &h.base, key, func(ctx context.Context) (*models.Page[models.FinancialStatement], error) {
			return h.API.ListStatements(ctx, f)
		})
		if err != nil {
			logFetch("upload statements", err)
			data.StatementErr = err
		} else {
			data.Statements = page.Content
		}
	}

	h.render(w, status, "document_upload", h.page(r, "Upload Document", "documents", data))
}

// Submit handles POST /documents/upload. The "action" field selects the
// step: select stages a file, upload sends it (selecting first when a file
// is attached), remove drops the selection.
func (h *UploadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxUploadSize+multipartSlack)
	tooLarge := false
	if err := r.ParseMultipartForm(upload.MaxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var mbe *http.MaxBytesError
		if !errors.As(err, &mbe) {
			http.Error(w, "Invalid form body", http.StatusBadRequest)
			return
		}
		tooLarge = true
	}

	kind := r.FormValue("kind")
	target := upload.Target{StatementID: r.FormValue("statementId"), CompanyID: r.FormValue("companyId")}
	back := r.FormValue("return")
	fl := h.flow(r, kind)

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	if tooLarge {
		_ = h.release(ctx, fl.Remove)
		zap.L().Info("handlers: upload body too large")
		h.renderPage(w, r, http.StatusRequestEntityTooLarge, kind, target, back, fileTooLarge)
		return
	}

	switch r.FormValue("action") {
	case "remove", "cancel":
		if err := h.release(ctx, fl.Remove); err != nil {
			h.renderPage(w, r, http.StatusConflict, kind, target, back, "An upload is in progress. Please wait for it to finish.")
			return
		}
		h.renderPage(w, r, http.StatusOK, kind, target, back, "")
		return
	case "select":
		_, err := h.selectFile(ctx, r, fl)
		status, note := selectStatus(err)
		h.renderPage(w, r, status, kind, target, back, note)
		return
	}

	// upload
	if attached, err := h.selectFile(ctx, r, fl); attached && err != nil {
		status, note := selectStatus(err)
		h.renderPage(w, r, status, kind, target, back, note)
		return
	}
	staged := fl.Snapshot().File
	doc, err := fl.Upload(ctx, h.API, target)
	if err != nil {
		zap.L().Warn("handlers: upload document", zap.String("statement", target.StatementID), zap.Error(err))
		status := http.StatusBadGateway
		if errors.Is(err, upload.ErrNoFile) || errors.Is(err, upload.ErrNoStatement) {
			status = http.StatusUnprocessableEntity
		}
		h.renderPage(w, r, status, kind, target, back, "")
		return
	}
	if staged != nil {
		if err := h.Staging.Release(ctx, staged.Token); err != nil {
			zap.L().Warn("handlers: release staged upload", zap.Error(err))
		}
	}
	if doc == nil {
		zap.L().Warn("handlers: upload returned no document", zap.String("statement", target.StatementID))
	}

	dest := safeReturn(back, "/statements/"+target.StatementID)
	http.Redirect(w, r, withNotice(dest, "document-uploaded"), http.StatusSeeOther)
}

// selectFile stages the attached file, if any, and selects it. It reports
// whether a file was attached.
func (h *UploadHandler) selectFile(ctx context.Context, r *http.Request, fl *upload.Flow) (bool, error) {
	if r.MultipartForm == nil {
		return false, nil
	}
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return false, nil
	}
	if err != nil {
		return true, err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return true, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return true, err
	}
	name := sanitizeFilename(header.Filename)
	sel := upload.File{
		Name: name,
		Type: upload.DetectType(name, header.Header.Get("Content-Type"), head[:n]),
		Size: header.Size,
	}

	// Refused files are never staged.
	if err := fl.Policy().Check(sel); err != nil {
		_ = h.release(ctx, fl.Remove)
		return true, fl.Select(sel)
	}

	token, _, err := h.Staging.Put(ctx, name, file, sel.Type)
	if err != nil {
		zap.L().Error("handlers: stage upload", zap.Error(err))
		return true, err
	}
	sel.Token = token
	sel.Open = func(ctx context.Context) (io.ReadCloser, error) { return h.Staging.Open(ctx, token) }

	previous := fl.Snapshot().File
	if err := fl.Select(sel); err != nil {
		_ = h.Staging.Release(ctx, token)
		return true, err
	}
	if previous != nil && previous.Token != token {
		_ = h.Staging.Release(ctx, previous.Token)
	}
	return true, nil
}

// selectStatus maps a selection error to the response code and, for errors
// the flow did not record itself, the inline message.
func selectStatus(err error) (int, string) {
	var rejected *upload.RejectedError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &rejected):
		return http.StatusUnprocessableEntity, ""
	case errors.Is(err, upload.ErrUploadInProgress):
		return http.StatusConflict, "An upload is in progress. Please wait for it to finish."
	default:
		return http.StatusInternalServerError, "Failed to read the selected file. Please try again."
	}
}

// release clears the flow through drop and deletes the staged file it held.
func (h *UploadHandler) release(ctx context.Context, drop func() (*upload.File, error)) error {
	removed, err := drop()
	if err != nil {
		return err
	}
	if removed != nil {
		if err := h.Staging.Release(ctx, removed.Token); err != nil {
			zap.L().Warn("handlers: release staged upload", zap.Error(err))
		}
	}
	return nil
}

// Status handles GET /api/uploads/status and reports the caller's flow.
func (h *UploadHandler) Status(w http.ResponseWriter, r *http.Request) {
	s := h.flow(r, r.URL.Query().Get("kind")).Snapshot()
	resp := map[string]any{
		"state":    s.State.String(),
		"progress": s.Progress,
	}
	if s.Error != "" {
		resp["error"] = s.Error
	}
	if s.File != nil {
		resp["fileName"] = s.File.Name
		resp["fileSize"] = s.File.Size
	}
	JSON(w, http.StatusOK, resp)
}

// ── Files ──────────────────────────────────────────────────────

// ServeFile serves stored files such as archived exports. Remote stores
// redirect to their public URL; local stores serve from disk.
func (h *UploadHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filePath := strings.TrimPrefix(r.URL.Path, "/files/")
	if filePath == "" || filePath == r.URL.Path {
		JSONError(w, http.StatusBadRequest, "File path required.")
		return
	}
	// Staged uploads are private to the flow that selected them.
	if strings.HasPrefix(filePath, stagingPrefix+"/") {
		JSONError(w, http.StatusNotFound, "File not found.")
		return
	}

	if url := h.Files.URL(filePath); strings.HasPrefix(url, "https://") {
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}
	if h.FilesDir == "" {
		JSONError(w, http.StatusNotFound, "File not found.")
		return
	}
	clean := filepath.Clean("/" + filePath)
	http.ServeFile(w, r, filepath.Join(h.FilesDir, clean))
}

// AfterUpload drops the cached document and statement lists once the
// backend accepted a file.
func AfterUpload(cache *querycache.Cache) upload.Option {
	return upload.OnSuccess(func(doc *models.Document) {
		cache.Invalidate(prefixDocuments, prefixStatements)
		if doc == nil {
			return
		}
		zap.L().Info("handlers: document uploaded",
			zap.String("id", doc.ID),
			zap.String("file", doc.FileName),
			zap.String("statement", doc.StatementID),
		)
	})
}

// stagingPrefix is where selected uploads wait in the file store.
const stagingPrefix = "staging"

// NewStaging stages uploads in the shared file store.
func NewStaging(files storage.Store) *storage.Staging {
	return storage.NewStaging(files, stagingPrefix)
}

// sanitizeFilename removes path separators and unsafe characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}
