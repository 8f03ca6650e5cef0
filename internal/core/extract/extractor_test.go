package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf-dev/askpdf/internal/core"
)

type stubStrategy struct {
	name   string
	result *core.ExtractionResult
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Extract(path string) (*core.ExtractionResult, error) {
	s.calls++
	return s.result, s.err
}

func okResult() *core.ExtractionResult {
	return &core.ExtractionResult{
		Text:      "---- page 1 ----\n\nhello",
		PageCount: 1,
		Pages:     []core.ExtractedPage{{PageNumber: 1, Text: "hello"}},
	}
}

func TestExtractFirstStrategyWins(t *testing.T) {
	primary := &stubStrategy{name: "primary", result: okResult()}
	fallback := &stubStrategy{name: "fallback", result: okResult()}

	res, err := New(primary, fallback).Extract("doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, res.PageCount)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls, "fallback must not run when the primary succeeds")
}

func TestExtractFallsBackOnError(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: errors.New("malformed xref")}
	fallback := &stubStrategy{name: "fallback", result: okResult()}

	res, err := New(primary, fallback).Extract("doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "---- page 1 ----\n\nhello", res.Text)
	assert.Equal(t, 1, fallback.calls)
}

func TestExtractFallsBackOnEmptyText(t *testing.T) {
	primary := &stubStrategy{name: "primary", result: &core.ExtractionResult{Text: "   ", PageCount: 2}}
	fallback := &stubStrategy{name: "fallback", result: okResult()}

	_, err := New(primary, fallback).Extract("doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, 1, fallback.calls)
}

func TestExtractAllStrategiesFail(t *testing.T) {
	primary := &stubStrategy{name: "primary", err: errors.New("broken")}
	fallback := &stubStrategy{name: "fallback", err: errors.New("also broken")}

	_, err := New(primary, fallback).Extract("doc.pdf")
	require.Error(t, err)

	var extractionErr *core.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, err.Error(), "primary")
	assert.Contains(t, err.Error(), "also broken")
}

func TestExtractNoStrategies(t *testing.T) {
	_, err := New().Extract("doc.pdf")
	var extractionErr *core.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
}

func TestBuildResultDropsEmptyPagesKeepsNumbering(t *testing.T) {
	res, err := buildResult([]string{"first page", "   ", "third page"})
	require.NoError(t, err)

	assert.Equal(t, 3, res.PageCount)
	require.Len(t, res.Pages, 2)
	assert.Equal(t, 1, res.Pages[0].PageNumber)
	assert.Equal(t, 3, res.Pages[1].PageNumber)
	assert.Contains(t, res.Text, "---- page 1 ----")
	assert.NotContains(t, res.Text, "---- page 2 ----")
	assert.Contains(t, res.Text, "---- page 3 ----")
}

func TestBuildResultZeroPages(t *testing.T) {
	_, err := buildResult(nil)
	require.Error(t, err)
}

func TestBuildResultAllPagesEmpty(t *testing.T) {
	_, err := buildResult([]string{"", "  \n "})
	require.Error(t, err)
}
