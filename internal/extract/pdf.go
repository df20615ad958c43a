package extract

import (
	"fmt"
	"os"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFExtractor pulls the text layer out of PDF documents.
type PDFExtractor struct {
	// TempDir holds the scratch copy of each document ("" = os.TempDir()).
	TempDir string
}

// Text extracts the plain text of a PDF held in memory. ledongthuc/pdf
// needs a seekable file, so body is spooled to a temporary file that is
// removed before Text returns, whatever the outcome.
func (p *PDFExtractor) Text(body []byte) (text string, err error) {
	tmp, err := os.CreateTemp(p.TempDir, "sitetext-*.pdf")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return extractPDFText(tmpPath)
}

func extractPDFText(path string) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract pdf text: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages = append(pages, strings.TrimRight(pageText, "\n"))
	}
	return strings.Join(pages, "\n"), nil
}
