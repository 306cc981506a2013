package model

// Document is one entry in the in-memory knowledge base. Content is the
// sanitized extracted text; it stays empty when the source failed the
// readability check.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Content    string `json:"content"`
	Size       int64  `json:"size"`
	MimeType   string `json:"mime_type"`
	UploadedAt int64  `json:"uploaded_at"`
	Readable   bool   `json:"readable"`
}
