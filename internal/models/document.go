package models

// ── Core Document ────────────────────────────────────────────────

// Document is the metadata of a file attached to a financial statement.
// The binary content is never held here; downloads are streamed.
type Document struct {
	ID          string `json:"id"`
	StatementID string `json:"statementId,omitempty"`
	CompanyID   string `json:"companyId,omitempty"`
	FileName    string `json:"fileName"`
	FileType    string `json:"fileType"`
	FileSize    int64  `json:"fileSize"`
	UploadDate  string `json:"uploadDate,omitempty"`
	UploadedBy  string `json:"uploadedBy,omitempty"`
}

// DocumentFilter narrows the documents list.
type DocumentFilter struct {
	CompanyID   string
	StatementID string
	FileType    string
	Page        int
	Size        int
}
