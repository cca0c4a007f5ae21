package riskapi

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/rotisserie/eris"

	"fraud-dashboard/internal/models"
)

// ListDocuments handles GET /documents.
func (c *Client) ListDocuments(ctx context.Context, f models.DocumentFilter) (*models.Page[models.Document], error) {
	q := pageQuery(f.Page, f.Size)
	setIf(q, "companyId", f.CompanyID)
	setIf(q, "statementId", f.StatementID)
	setIf(q, "fileType", f.FileType)
	return getPage[models.Document](ctx, c, "/documents", q)
}

// ListStatementDocuments handles GET /documents/statement/:id.
func (c *Client) ListStatementDocuments(ctx context.Context, statementID string) (*models.Page[models.Document], error) {
	return getPage[models.Document](ctx, c, "/documents/statement/"+seg(statementID), nil)
}

// GetDocument handles GET /documents/:id.
func (c *Client) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	return getDetail[models.Document](ctx, c, "/documents/"+seg(id))
}

// DeleteDocument handles DELETE /documents/:id.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	return c.remove(ctx, "/documents/"+seg(id))
}

// Blob is a streamed document download. The caller must close Body.
type Blob struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
	Size        int64 // -1 when unknown
}

// DownloadDocument handles GET /documents/:id/download.
func (c *Client) DownloadDocument(ctx context.Context, id string) (*Blob, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/documents/"+seg(id)+"/download", nil, nil, "")
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "riskapi: download document")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
		return nil, statusError(resp.StatusCode, body)
	}

	blob := &Blob{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		blob.FileName = params["filename"]
	}
	return blob, nil
}

// UploadRequest is a multipart document upload.
type UploadRequest struct {
	Path        string // backend path, "/documents/upload" when empty
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	StatementID string
	CompanyID   string

	// Progress receives the share of the request body sent so far, 0-100.
	Progress func(pct int)
}

// UploadDocument handles POST /documents/upload with the fields file,
// statementId and optional companyId.
func (c *Client) UploadDocument(ctx context.Context, up UploadRequest) (*models.Document, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": up.FileName,
	}))
	ct := up.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, eris.Wrap(err, "riskapi: create file part")
	}
	if _, err := io.Copy(part, up.Body); err != nil {
		return nil, eris.Wrap(err, "riskapi: copy file part")
	}
	if err := mw.WriteField("statementId", up.StatementID); err != nil {
		return nil, eris.Wrap(err, "riskapi: write statementId")
	}
	if up.CompanyID != "" {
		if err := mw.WriteField("companyId", up.CompanyID); err != nil {
			return nil, eris.Wrap(err, "riskapi: write companyId")
		}
	}
	if err := mw.Close(); err != nil {
		return nil, eris.Wrap(err, "riskapi: close multipart body")
	}

	path := up.Path
	if path == "" {
		path = "/documents/upload"
	}
	total := int64(buf.Len())
	body := &progressReader{r: &buf, total: total, report: up.Progress}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	req.ContentLength = total

	raw, err := c.send(req)
	if err != nil {
		return nil, err
	}
	body.finish()

	var d models.Detail[models.Document]
	if err := decodeInto(raw, &d); err != nil {
		return nil, eris.Wrap(err, "riskapi: decode upload response")
	}
	return d.Data, nil
}

// progressReader reports how much of the request body the transport has
// consumed.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct != p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}

func (p *progressReader) finish() {
	if p.report != nil && p.last != 100 {
		p.last = 100
		p.report(100)
	}
}
