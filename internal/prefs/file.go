package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"

	"fraud-dashboard/internal/models"
)

// FileRepository keeps every analyst's preferences in one JSON file:
// {"<user>": {"notificationPreferences": {...}}}.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository stores preferences at path. The file is created on
// first save.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

type fileDoc map[string]map[string]json.RawMessage

func (r *FileRepository) read() (fileDoc, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fileDoc{}, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "prefs: read file")
	}
	doc := fileDoc{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, eris.Wrap(err, "prefs: parse file")
		}
	}
	return doc, nil
}

// Load returns the preferences of user, or the defaults.
func (r *FileRepository) Load(_ context.Context, user string) (models.NotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, err := r.read()
	if err != nil {
		return models.DefaultNotificationPreferences(), err
	}
	return decode(user, doc[user][Key]), nil
}

// Save replaces the preferences of user. The file is rewritten atomically.
func (r *FileRepository) Save(_ context.Context, user string, p models.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, err := r.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return eris.Wrap(err, "prefs: marshal preferences")
	}
	if doc[user] == nil {
		doc[user] = map[string]json.RawMessage{}
	}
	doc[user][Key] = raw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "prefs: marshal file")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return eris.Wrap(err, "prefs: create directory")
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return eris.Wrap(err, "prefs: write file")
	}
	return eris.Wrap(os.Rename(tmp, r.path), "prefs: replace file")
}
