// Package extract turns PDF files into page-attributed plain text. Extraction
// strategies are tried in order; the first one that produces non-empty text
// wins, and all failures are aggregated into one ExtractionError.
package extract

import (
	"fmt"
	"strings"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/logger"
)

// Strategy is one way of pulling text out of a PDF. Implementations return an
// error rather than an empty result.
type Strategy interface {
	Name() string
	Extract(path string) (*core.ExtractionResult, error)
}

// Extractor runs an ordered list of strategies.
type Extractor struct {
	strategies []Strategy
}

var _ core.DocumentExtractor = (*Extractor)(nil)

// New builds an extractor over the given strategies, tried in order.
func New(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// Default returns the production chain: native page-by-page parsing first,
// docconv (pdftotext) as the fallback.
func Default() *Extractor {
	return New(&pdfStrategy{}, &docconvStrategy{})
}

func (e *Extractor) Extract(path string) (*core.ExtractionResult, error) {
	if len(e.strategies) == 0 {
		return nil, &core.ExtractionError{Msg: "no extraction strategies configured"}
	}

	var failures []string
	for _, s := range e.strategies {
		res, err := s.Extract(path)
		if err != nil {
			logger.Warnf("extract: strategy %s failed for %s: %v", s.Name(), path, err)
			failures = append(failures, fmt.Sprintf("%s: %v", s.Name(), err))
			continue
		}
		if strings.TrimSpace(res.Text) == "" || len(res.Pages) == 0 {
			failures = append(failures, fmt.Sprintf("%s: produced no text", s.Name()))
			continue
		}
		return res, nil
	}

	return nil, &core.ExtractionError{
		Msg: fmt.Sprintf("all strategies failed [%s]", strings.Join(failures, "; ")),
	}
}

// buildResult assembles the shared result shape from raw page texts: empty
// pages are dropped but keep their 1-based numbering, and the full text gets
// the page banner the chunker's page attribution relies on.
func buildResult(pageTexts []string) (*core.ExtractionResult, error) {
	pageCount := len(pageTexts)
	if pageCount == 0 {
		return nil, fmt.Errorf("pdf has no pages")
	}

	var (
		pages []core.ExtractedPage
		full  strings.Builder
	)
	for i, text := range pageTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pageNum := i + 1
		pages = append(pages, core.ExtractedPage{PageNumber: pageNum, Text: text})
		full.WriteString(fmt.Sprintf("\n\n---- page %d ----\n\n%s", pageNum, text))
	}

	fullText := strings.TrimSpace(full.String())
	if fullText == "" {
		return nil, fmt.Errorf("no text could be extracted from the pdf")
	}

	return &core.ExtractionResult{
		Text:      fullText,
		PageCount: pageCount,
		Pages:     pages,
	}, nil
}
