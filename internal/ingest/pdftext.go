package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// extractPDFText pulls the text layer out of a PDF. Scanned PDFs either
// error out or yield near-empty text; both are handled by the isScanned
// heuristic, so failures here return empty text rather than an error.
func extractPDFText(data []byte) (text string, err error) {
	defer func() {
		// the pdf library panics on some malformed files
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdf text extraction panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return buf.String(), nil
}

// isScanned reports whether extracted text is too thin to be a real text
// layer. Scanned PDFs typically yield nothing or a few OCR artifacts.
func isScanned(text string) bool {
	clean := strings.TrimSpace(text)
	return len(clean) < 50 || len(strings.Fields(clean)) < 10
}
