// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PDFTextConverter extracts plain text from PDF reports natively,
// without spawning external tools. It handles digitally generated
// reports; scanned reports need an OCR backend instead.
type PDFTextConverter struct{}

// NewPDFTextConverter creates a native PDF text converter.
func NewPDFTextConverter() *PDFTextConverter {
	return &PDFTextConverter{}
}

// Convert reads the PDF at path and returns its plain text content.
func (p *PDFTextConverter) Convert(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting text from %s: %w", path, err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("reading text of %s: %w", path, err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("no extractable text in %s", path)
	}

	return string(b), nil
}
