package extract

import (
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"

	"github.com/askpdf-dev/askpdf/internal/core"
)

// docconvStrategy shells out to pdftotext via docconv. pdftotext separates
// pages with form feeds, which is what keeps page attribution alive on the
// fallback path; a body without form feeds counts as a single page.
type docconvStrategy struct{}

func (s *docconvStrategy) Name() string { return "docconv" }

func (s *docconvStrategy) Extract(path string) (*core.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	body, _, err := docconv.ConvertPDF(f)
	if err != nil {
		return nil, fmt.Errorf("docconv convert: %w", err)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("docconv produced no text")
	}

	return buildResult(strings.Split(body, "\f"))
}
