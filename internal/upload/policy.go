// Package upload implements the document upload flow shared by the
// documents page and the statement financial-data page. The two differ
// only by Policy.
package upload

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
)

// MaxUploadSize is the size ceiling for every upload.
const MaxUploadSize = 10 << 20 // 10 MB

// DefaultEndpoint is the backend path documents are posted to.
const DefaultEndpoint = "/documents/upload"

// Policy parameterizes a Flow: which MIME types it accepts, how large a
// file may be and where it is sent.
type Policy struct {
	Name         string
	AllowedTypes map[string]string // MIME type -> short label shown to the user
	MaxSize      int64
	Endpoint     string
}

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// DocumentPolicy accepts supporting documents of any common office type.
var DocumentPolicy = Policy{
	Name: "document",
	AllowedTypes: map[string]string{
		"application/pdf":          "PDF",
		"image/jpeg":               "JPG",
		"image/png":                "PNG",
		"text/csv":                 "CSV",
		"text/plain":               "TXT",
		"application/msword":       "DOC",
		mimeDOCX:                   "DOCX",
		"application/vnd.ms-excel": "XLS",
		mimeXLSX:                   "XLSX",
	},
	MaxSize:  MaxUploadSize,
	Endpoint: DefaultEndpoint,
}

// StatementPolicy accepts the financial statement files themselves.
var StatementPolicy = Policy{
	Name: "statement",
	AllowedTypes: map[string]string{
		"application/pdf":          "PDF",
		"text/csv":                 "CSV",
		"application/vnd.ms-excel": "XLS",
		mimeXLSX:                   "XLSX",
	},
	MaxSize:  MaxUploadSize,
	Endpoint: DefaultEndpoint,
}

// extensions covers types mime.TypeByExtension does not know on every
// platform.
var extensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".csv":  "text/csv",
	".txt":  "text/plain",
	".doc":  "application/msword",
	".docx": mimeDOCX,
	".xls":  "application/vnd.ms-excel",
	".xlsx": mimeXLSX,
}

// DetectType resolves the MIME type of a file: the declared type when it is
// meaningful, then the file extension, then a sniff of the first bytes.
func DetectType(name, declared string, head []byte) string {
	if t := baseType(declared); t != "" && t != "application/octet-stream" {
		return normalize(t)
	}
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensions[ext]; ok {
		return t
	}
	if t := baseType(mime.TypeByExtension(ext)); t != "" {
		return normalize(t)
	}
	if len(head) > 0 {
		return normalize(baseType(http.DetectContentType(head)))
	}
	return "application/octet-stream"
}

func baseType(t string) string {
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(t))
	}
	return mt
}

func normalize(t string) string {
	if t == "image/jpg" {
		return "image/jpeg"
	}
	return t
}

// Check validates a file against the policy. The returned error message is
// meant to be shown inline next to the picker.
func (p Policy) Check(f File) error {
	if _, ok := p.AllowedTypes[f.Type]; !ok {
		return &RejectedError{Reason: fmt.Sprintf("File type '%s' not allowed. Accepted: %s.", f.Type, p.Accepted())}
	}
	if f.Size > p.maxSize() {
		return &RejectedError{Reason: fmt.Sprintf("File too large. Maximum size is %dMB.", p.maxSize()>>20)}
	}
	if f.Size <= 0 {
		return &RejectedError{Reason: "The selected file is empty."}
	}
	return nil
}

// Accepted lists the short labels of the allowed types, sorted.
func (p Policy) Accepted() string {
	labels := make([]string, 0, len(p.AllowedTypes))
	seen := map[string]bool{}
	for _, l := range p.AllowedTypes {
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return strings.Join(labels, ", ")
}

// AcceptAttr is the value for the accept attribute of the file input.
func (p Policy) AcceptAttr() string {
	types := make([]string, 0, len(p.AllowedTypes))
	for t := range p.AllowedTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ",")
}

func (p Policy) maxSize() int64 {
	if p.MaxSize <= 0 {
		return MaxUploadSize
	}
	return p.MaxSize
}

func (p Policy) endpoint() string {
	if p.Endpoint == "" {
		return DefaultEndpoint
	}
	return p.Endpoint
}
