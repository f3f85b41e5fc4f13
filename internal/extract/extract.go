// Package extract handles PDF text extraction for the ingestion pipeline.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Extraction is the raw text recovered from a PDF document.
type Extraction struct {
	Text      string
	PageCount int
	Info      DocumentInfo
}

// DocumentInfo carries document-level metadata.
type DocumentInfo struct {
	Filename string
	Title    string
	SizeByte int64
}

// ExtractionError indicates a PDF could not be read or yielded no text.
// Fatal for the document; a multi-document batch continues past it.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Extract reads a PDF from disk and returns its text content.
// Page counting goes through pdfcpu; text extraction shells out to
// pdftotext (poppler-utils), which handles far more real-world PDFs
// than pure-Go extractors.
func Extract(ctx context.Context, path string) (*Extraction, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("PDF not found: %w", err)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("failed to open PDF: %w", err)}
	}
	pageCount, err := api.PageCount(f, nil)
	f.Close()
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("failed to get page count: %w", err)}
	}

	text, err := extractText(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return nil, &ExtractionError{Path: path, Err: fmt.Errorf("no text content in PDF (scanned document?)")}
	}

	return &Extraction{
		Text:      text,
		PageCount: pageCount,
		Info: DocumentInfo{
			Filename: filepath.Base(path),
			Title:    deriveTitle(path),
			SizeByte: fi.Size(),
		},
	}, nil
}

// extractText runs pdftotext over the whole document, writing to stdout.
func extractText(ctx context.Context, path string) (string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not found: install poppler-utils (brew install poppler on macOS)")
	}

	cmd := exec.CommandContext(ctx, "pdftotext", path, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("pdftotext failed: %w (output: %s)", err, stderr.String())
	}

	return stdout.String(), nil
}

// deriveTitle produces a human-readable title from a PDF filename.
// e.g. "intro-to-statistics.pdf" -> "Intro To Statistics"
func deriveTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = strings.NewReplacer("-", " ", "_", " ").Replace(name)

	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
