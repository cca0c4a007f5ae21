package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"fraud-dashboard/internal/storage"
)

// Archiver stores generated reports in object storage.
type Archiver struct {
	store  storage.Store
	prefix string
	now    func() time.Time
}

// ArchiverOption configures an Archiver.
type ArchiverOption func(*Archiver)

// WithPrefix sets the key prefix; the default is "exports".
func WithPrefix(p string) ArchiverOption {
	return func(a *Archiver) { a.prefix = p }
}

// WithNow overrides the clock used for key dates.
func WithNow(now func() time.Time) ArchiverOption {
	return func(a *Archiver) { a.now = now }
}

// NewArchiver creates an Archiver writing to store.
func NewArchiver(store storage.Store, opts ...ArchiverOption) *Archiver {
	a := &Archiver{store: store, prefix: "exports", now: time.Now}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Key returns the object key of a report generated at t:
// <prefix>/<yyyy-mm-dd>/risk-assessments-<hhmmss>-<id>.xlsx
func (a *Archiver) Key(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%s/risk-assessments-%s-%s.xlsx",
		a.prefix, t.Format("2006-01-02"), t.Format("150405"), uuid.NewString()[:8])
}

// Archive renders r and saves it.
func (a *Archiver) Archive(ctx context.Context, r Report) (*storage.FileInfo, error) {
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = a.now()
	}
	data, err := Bytes(r)
	if err != nil {
		return nil, err
	}

	key := a.Key(r.GeneratedAt)
	info, err := a.store.Save(ctx, key, bytes.NewReader(data), ContentType)
	if err != nil {
		return nil, eris.Wrap(err, "export: archive report")
	}

	zap.L().Info("export: archived risk report",
		zap.String("key", key),
		zap.Int("assessments", len(r.Assessments)),
		zap.Int("alerts", len(r.Alerts)),
		zap.Int64("bytes", info.FileSize),
	)
	return info, nil
}
