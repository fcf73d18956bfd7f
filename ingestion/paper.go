package ingestion

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// Paper is an immutable source document. Content is fixed at load time and
// never mutated by the pipeline.
type Paper struct {
	Path    string
	Title   string
	Content string
	SHA     string
}

// LoadPaper reads a paper from disk, extracts its plain text and title,
// and fingerprints the raw bytes.
func LoadPaper(path string) (*Paper, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("unsupported paper format: %s", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read paper: %w", err)
	}

	hash := sha256.Sum256(data)

	var content, title string
	switch format {
	case FormatMarkdown:
		content = normalizePlainText(string(data))
		title = ExtractTitle(content, filepath.Base(path))
	case FormatPlainText:
		content = normalizePlainText(string(data))
		title = firstNonEmptyLine(content)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	case FormatPDF:
		content, err = extractPDFText(data)
		if err != nil {
			return nil, err
		}
		title = firstNonEmptyLine(content)
		if title == "" {
			title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("paper %s has no extractable text", path)
	}

	return &Paper{
		Path:    path,
		Title:   title,
		Content: content,
		SHA:     hex.EncodeToString(hash[:]),
	}, nil
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	buf := &bytes.Buffer{}
	if _, err := io.Copy(buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return normalizePlainText(buf.String()), nil
}

// ExtractTitle returns the first Markdown heading in content, or fallback
// when none exists.
func ExtractTitle(content, fallback string) string {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		}
	}
	return fallback
}

func normalizePlainText(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}

func firstNonEmptyLine(content string) string {
	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
