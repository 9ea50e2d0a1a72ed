package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/gen2brain/go-fitz"
)

const pageTimeout = 10 * time.Second

// extractWithDslipak is the primary strategy: a pure-Go content-stream
// walker. Malformed xref tables and exotic encodings make it bail, which
// is exactly when the secondary strategy earns its keep.
func extractWithDslipak(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// skip the broken page, keep the rest
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractWithFitz is the secondary strategy, backed by MuPDF. A different
// engine entirely, so failures rarely correlate with the primary's.
func extractWithFitz(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf with mupdf: %w", err)
	}
	defer doc.Close()

	var parts []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// protectExtract guards a single page extraction with a timeout. Some
// malformed content streams send the parser into effectively unbounded
// loops.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(pageTimeout):
		return "", errors.New("page extraction timeout")
	}
}
