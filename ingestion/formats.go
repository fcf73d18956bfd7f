// Package ingestion loads source papers from disk and prepares them for
// the analysis pipeline.
package ingestion

import (
	"path/filepath"
	"strings"
)

// PaperFormat enumerates supported source document formats.
type PaperFormat string

const (
	// FormatUnknown represents an unsupported or undetected format.
	FormatUnknown PaperFormat = ""
	// FormatMarkdown represents Markdown documents.
	FormatMarkdown PaperFormat = "markdown"
	// FormatPlainText represents plain text documents.
	FormatPlainText PaperFormat = "text"
	// FormatPDF represents PDF documents.
	FormatPDF PaperFormat = "pdf"
)

// DetectFormat infers a paper format from the provided path's extension.
func DetectFormat(path string) PaperFormat {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text":
		return FormatPlainText
	case ".pdf":
		return FormatPDF
	default:
		return FormatUnknown
	}
}
