package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/askpdf-dev/askpdf/internal/core"
)

// pdfStrategy parses the PDF natively page by page.
type pdfStrategy struct{}

func (s *pdfStrategy) Name() string { return "pdf" }

func (s *pdfStrategy) Extract(path string) (*core.ExtractionResult, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := r.NumPage()
	if total == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	pageTexts := make([]string, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single broken page does not abort the extraction.
			continue
		}
		pageTexts[i-1] = text
	}

	return buildResult(pageTexts)
}
