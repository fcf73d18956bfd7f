package ingestion

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		path string
		want PaperFormat
	}{
		{"paper.md", FormatMarkdown},
		{"paper.MARKDOWN", FormatMarkdown},
		{"notes.txt", FormatPlainText},
		{"notes.text", FormatPlainText},
		{"study.pdf", FormatPDF},
		{"study.PDF", FormatPDF},
		{"archive.docx", FormatUnknown},
		{"no-extension", FormatUnknown},
	}

	for _, tc := range cases {
		if got := DetectFormat(tc.path); got != tc.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestExtractTitle(t *testing.T) {
	content := "some preamble\n\n## Attention Is All You Need\n\nbody text"
	if got := ExtractTitle(content, "fallback"); got != "Attention Is All You Need" {
		t.Errorf("title = %q", got)
	}

	if got := ExtractTitle("no headings here", "fallback"); got != "fallback" {
		t.Errorf("fallback title = %q", got)
	}
}

func TestLoadPaperMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.md")
	body := "# Sparse Attention at Scale\r\n\r\nWe study long context inference.  \n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	paper, err := LoadPaper(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if paper.Title != "Sparse Attention at Scale" {
		t.Errorf("title = %q", paper.Title)
	}
	if strings.Contains(paper.Content, "\r") {
		t.Error("content should have normalized line endings")
	}
	if strings.Contains(paper.Content, "inference.  \n") {
		t.Error("content should have trailing whitespace trimmed")
	}
	if len(paper.SHA) != 64 {
		t.Errorf("sha length = %d, want 64 hex characters", len(paper.SHA))
	}
	if paper.Path != path {
		t.Errorf("path = %q, want %q", paper.Path, path)
	}
}

func TestLoadPaperPlainTextTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "study.txt")
	if err := os.WriteFile(path, []byte("\n\nResults of the ablation study\nmore text\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	paper, err := LoadPaper(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paper.Title != "Results of the ablation study" {
		t.Errorf("title = %q", paper.Title)
	}
}

func TestLoadPaperUnsupportedFormat(t *testing.T) {
	if _, err := LoadPaper("paper.docx"); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoadPaperEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("   \n \t \n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := LoadPaper(path); err == nil {
		t.Fatal("expected error for a paper with no extractable text")
	}
}

func TestLoadPaperMissingFile(t *testing.T) {
	if _, err := LoadPaper(filepath.Join(t.TempDir(), "absent.md")); err == nil {
		t.Fatal("expected error for a missing file")
	}
}
