// Package storage keeps files the dashboard produces or holds on to:
// staged uploads awaiting a retry and archived report exports.
package storage

import (
	"context"
	"io"
)

// FileInfo describes a stored object.
type FileInfo struct {
	URL      string `json:"url"`
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	FileType string `json:"fileType"`
}

// Store is an object store. Paths are slash separated and relative.
type Store interface {
	Save(ctx context.Context, path string, r io.Reader, contentType string) (*FileInfo, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	URL(path string) string
}
