package upload

import (
	"context"
	"io"
	"sync"

	"github.com/rotisserie/eris"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/riskapi"
)

// State is a step of the upload flow.
type State int

const (
	Idle State = iota
	FileSelected
	Uploading
	Success
)

func (s State) String() string {
	switch s {
	case FileSelected:
		return "fileSelected"
	case Uploading:
		return "uploading"
	case Success:
		return "success"
	default:
		return "idle"
	}
}

// Sentinel errors returned by Flow.
var (
	ErrUploadInProgress = eris.New("upload: an upload is in progress")
	ErrNoFile           = eris.New("upload: no file selected")
	ErrNoStatement      = eris.New("upload: statement id is required")
)

// GenericFailure is shown when the backend rejects an upload without a message.
const GenericFailure = "Failed to upload file. Please try again."

// RejectedError is returned by Select for a file the policy refuses.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string { return e.Reason }

// Opener returns the contents of a selected file. It is called once per
// upload attempt so a failed attempt can be retried.
type Opener func(ctx context.Context) (io.ReadCloser, error)

// File is a selected file. The contents stay outside the flow, behind Open.
type File struct {
	Name  string
	Type  string
	Size  int64
	Token string // staging token, if the contents were staged
	Open  Opener
}

// Target identifies what the uploaded document belongs to.
type Target struct {
	StatementID string
	CompanyID   string
}

// Sender performs the multipart upload. *riskapi.Client implements it.
type Sender interface {
	UploadDocument(ctx context.Context, req riskapi.UploadRequest) (*models.Document, error)
}

// Snapshot is a copy of the flow state for rendering.
type Snapshot struct {
	State    State
	File     *File
	Progress int
	Error    string
	Document *models.Document
}

// Flow is the upload state machine of one analyst and one policy.
// It is safe for concurrent use.
type Flow struct {
	policy    Policy
	onSuccess func(*models.Document)

	mu       sync.Mutex
	state    State
	file     *File
	progress int
	errMsg   string
	doc      *models.Document
}

// Option configures a Flow.
type Option func(*Flow)

// OnSuccess registers a callback invoked with the document returned by the
// backend after a successful upload.
func OnSuccess(fn func(*models.Document)) Option {
	return func(f *Flow) { f.onSuccess = fn }
}

// NewFlow creates an idle flow for the given policy.
func NewFlow(p Policy, opts ...Option) *Flow {
	f := &Flow{policy: p}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Policy returns the policy the flow validates against.
func (f *Flow) Policy() Policy { return f.policy }

// Snapshot returns the current state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Snapshot{State: f.state, Progress: f.progress, Error: f.errMsg, Document: f.doc}
	if f.file != nil {
		cp := *f.file
		s.File = &cp
	}
	return s
}

// Select validates file and moves to FileSelected. A rejected file leaves
// the flow Idle with the rejection as its inline error.
func (f *Flow) Select(file File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Uploading {
		return ErrUploadInProgress
	}
	if err := f.policy.Check(file); err != nil {
		f.state, f.file, f.progress, f.doc = Idle, nil, 0, nil
		f.errMsg = err.Error()
		return err
	}
	f.state, f.file, f.progress, f.errMsg, f.doc = FileSelected, &file, 0, "", nil
	return nil
}

// Upload sends the selected file. On failure the flow returns to
// FileSelected with the file kept so the analyst can retry.
func (f *Flow) Upload(ctx context.Context, sender Sender, target Target) (*models.Document, error) {
	f.mu.Lock()
	switch {
	case f.state == Uploading:
		f.mu.Unlock()
		return nil, ErrUploadInProgress
	case f.file == nil:
		f.errMsg = "Please select a file to upload."
		f.mu.Unlock()
		return nil, ErrNoFile
	case target.StatementID == "":
		f.errMsg = "Please select a financial statement first."
		f.mu.Unlock()
		return nil, ErrNoStatement
	}
	file := *f.file
	f.state, f.progress, f.errMsg = Uploading, 0, ""
	f.mu.Unlock()

	doc, err := f.send(ctx, sender, file, target)

	f.mu.Lock()
	if err != nil {
		f.state, f.progress = FileSelected, 0
		f.errMsg = GenericFailure
		if msg := riskapi.ServerMessage(err); msg != "" {
			f.errMsg = msg
		}
		f.mu.Unlock()
		return nil, err
	}
	f.state, f.file, f.progress, f.doc = Success, nil, 0, doc
	f.mu.Unlock()

	if f.onSuccess != nil {
		f.onSuccess(doc)
	}
	return doc, nil
}

func (f *Flow) send(ctx context.Context, sender Sender, file File, target Target) (*models.Document, error) {
	if file.Open == nil {
		return nil, eris.New("upload: selected file has no contents")
	}
	body, err := file.Open(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "upload: open selected file")
	}
	defer body.Close()

	return sender.UploadDocument(ctx, riskapi.UploadRequest{
		Path:        f.policy.endpoint(),
		FileName:    file.Name,
		ContentType: file.Type,
		Size:        file.Size,
		Body:        body,
		StatementID: target.StatementID,
		CompanyID:   target.CompanyID,
		Progress:    f.setProgress,
	})
}

func (f *Flow) setProgress(pct int) {
	pct = max(0, min(100, pct))
	f.mu.Lock()
	if f.state == Uploading && pct > f.progress {
		f.progress = pct
	}
	f.mu.Unlock()
}

// Remove drops the selected file and returns the flow to Idle. It returns
// the removed file, if any, so the caller can release its staged contents.
func (f *Flow) Remove() (*File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Uploading {
		return nil, ErrUploadInProgress
	}
	removed := f.file
	f.state, f.file, f.progress, f.errMsg, f.doc = Idle, nil, 0, "", nil
	return removed, nil
}

// Cancel closes the flow without uploading. Same rules as Remove.
func (f *Flow) Cancel() (*File, error) {
	return f.Remove()
}
