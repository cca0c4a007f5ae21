package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// Staging holds selected upload files between requests so that a failed
// upload can be retried without the analyst picking the file again.
type Staging struct {
	store  Store
	prefix string
}

// NewStaging stages files in store under prefix.
func NewStaging(store Store, prefix string) *Staging {
	return &Staging{store: store, prefix: strings.Trim(prefix, "/")}
}

// Put stores r and returns the token to reopen it with.
func (s *Staging) Put(ctx context.Context, fileName string, r io.Reader, contentType string) (string, *FileInfo, error) {
	token := uuid.NewString()
	info, err := s.store.Save(ctx, s.key(token, fileName), r, contentType)
	if err != nil {
		return "", nil, eris.Wrap(err, "storage: stage upload")
	}
	return token + "/" + path.Base(fileName), info, nil
}

// Open reopens a staged file.
func (s *Staging) Open(ctx context.Context, token string) (io.ReadCloser, error) {
	if !validToken(token) {
		return nil, ErrInvalidPath
	}
	return s.store.Open(ctx, s.prefix+"/"+token)
}

// Release deletes a staged file. An empty token is ignored.
func (s *Staging) Release(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if !validToken(token) {
		return ErrInvalidPath
	}
	return s.store.Delete(ctx, s.prefix+"/"+token)
}

func (s *Staging) key(token, fileName string) string {
	return s.prefix + "/" + token + "/" + path.Base(fileName)
}

// validToken accepts "<uuid>/<file name>".
func validToken(token string) bool {
	id, name, ok := strings.Cut(token, "/")
	if !ok || name == "" || name == "." || strings.Contains(name, "/") || escapes(name) {
		return false
	}
	return uuid.Validate(id) == nil
}
