package core

// ExtractedPage is one page's plain text. Numbers are 1-based and follow the
// source file's order; pages with no extractable text are omitted.
type ExtractedPage struct {
	PageNumber int
	Text       string
}

// ExtractionResult is the page-attributed output of PDF text extraction.
type ExtractionResult struct {
	Text      string
	PageCount int
	Pages     []ExtractedPage
}

// DocumentExtractor turns a PDF file on disk into page-attributed plain text.
// Implementations must not retain open handles beyond the call.
type DocumentExtractor interface {
	Extract(path string) (*ExtractionResult, error)
}
