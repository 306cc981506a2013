// Package extract turns uploaded document bytes into plain text. Each
// supported extension has its own extractor; everything else is rejected
// before it reaches the knowledge base.
package extract

import (
	"io"
	"path/filepath"
	"strings"

	appErr "github.com/xxxsen/docchat/internal/pkg/errors"
)

var supportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".json":     true,
	".log":      true,
	".csv":      true,
	".pdf":      true,
	".docx":     true,
}

func Supported(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Text extracts plain text from the named document. JSON, CSV and log files
// are read as-is; the sanitizer downstream strips whatever structure remains.
func Text(r io.Reader, name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".json", ".log", ".csv":
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(data), nil
	case ".md", ".markdown":
		return markdownText(r)
	case ".pdf":
		return pdfText(r)
	case ".docx":
		return docxText(r)
	default:
		return "", appErr.ErrUnsupportedFile
	}
}
