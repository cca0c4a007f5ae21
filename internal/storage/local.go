package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidPath is returned for paths escaping the store root.
var ErrInvalidPath = eris.New("storage: invalid path")

// LocalStore saves files under a directory on disk. Used in development
// and as the default when no bucket is configured.
type LocalStore struct {
	root    string
	baseURL string // e.g. "/files"
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, eris.Wrap(err, "storage: create root")
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStore) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.TrimLeft(p, "/"))
	if clean == "/" || escapes(p) {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// escapes reports whether p has a ".." segment. Names that merely contain
// dots, such as "Q4..2023.pdf", are fine.
func escapes(p string) bool {
	for _, seg := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}

// Save writes r to path, replacing any existing file.
func (s *LocalStore) Save(_ context.Context, p string, r io.Reader, contentType string) (*FileInfo, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, eris.Wrap(err, "storage: create directory")
	}
	f, err := os.Create(full)
	if err != nil {
		return nil, eris.Wrap(err, "storage: create file")
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(full)
		return nil, eris.Wrap(err, "storage: write file")
	}
	return &FileInfo{
		URL:      s.URL(p),
		Path:     p,
		FileName: path.Base(p),
		FileSize: n,
		FileType: contentType,
	}, nil
}

// Open returns the contents of path.
func (s *LocalStore) Open(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, eris.Wrap(err, "storage: open file")
	}
	return f, nil
}

// Delete removes path. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, p string) error {
	full, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return eris.Wrap(err, "storage: delete file")
	}
	return nil
}

// URL returns the dashboard-relative URL of path.
func (s *LocalStore) URL(p string) string {
	return s.baseURL + "/" + strings.TrimLeft(p, "/")
}

// Root returns the directory files are stored under.
func (s *LocalStore) Root() string { return s.root }
