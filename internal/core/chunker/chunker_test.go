package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf-dev/askpdf/internal/core"
)

type fixedCounter struct{}

func (fixedCounter) Count(text string) int { return len(text) / 4 }

func TestSplitDeterministic(t *testing.T) {
	c := New(100, 20, fixedCounter{})
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 30)

	first := c.Split(text)
	second := c.Split(text)
	require.Equal(t, first, second)
	require.Greater(t, len(first), 1)
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	c := New(1000, 200, fixedCounter{})
	out := c.Split("just a short paragraph")
	require.Len(t, out, 1)
	assert.Equal(t, "just a short paragraph", out[0])
}

func TestSplitEmptyText(t *testing.T) {
	c := New(1000, 200, fixedCounter{})
	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplitRespectsChunkSize(t *testing.T) {
	c := New(100, 20, fixedCounter{})
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur adipiscing elit ", 40)

	for _, seg := range c.Split(text) {
		assert.LessOrEqual(t, len(seg), 100)
		assert.NotEmpty(t, seg)
	}
}

// Every byte of the input must appear in some chunk: dropping the overlap
// prefix of each subsequent chunk reconstructs the original text.
func TestSplitCoversWholeText(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta epsilon zeta eta theta. ", 25)

	for _, cfg := range []struct{ size, overlap int }{
		{100, 20}, {80, 0}, {150, 50},
	} {
		c := New(cfg.size, cfg.overlap, fixedCounter{})
		segs := c.Split(text)
		require.NotEmpty(t, segs)

		var sb strings.Builder
		sb.WriteString(segs[0])
		for i := 1; i < len(segs); i++ {
			// Each chunk starts overlap bytes before the previous cut, so
			// the new material is everything past that shared prefix.
			seg := segs[i]
			require.GreaterOrEqual(t, len(seg), cfg.overlap)
			require.True(t, strings.HasSuffix(sb.String(), seg[:cfg.overlap]))
			sb.WriteString(seg[cfg.overlap:])
		}
		assert.Equal(t, text, sb.String(), "size=%d overlap=%d", cfg.size, cfg.overlap)
	}
}

func TestSplitPrefersParagraphBoundary(t *testing.T) {
	c := New(60, 10, fixedCounter{})
	text := "first paragraph here.\n\nsecond paragraph follows with more words than fit."

	segs := c.Split(text)
	require.Greater(t, len(segs), 1)
	assert.Equal(t, "first paragraph here.\n\n", segs[0])
}

func TestSplitHardCutKeepsRunesIntact(t *testing.T) {
	c := New(10, 0, fixedCounter{})
	text := strings.Repeat("héllo wörld", 20)

	for _, seg := range c.Split(text) {
		assert.True(t, strings.ToValidUTF8(seg, "") == seg, "segment is valid utf-8: %q", seg)
	}
}

func TestBuildChunksPageAttribution(t *testing.T) {
	ext := &core.ExtractionResult{
		Text: "---- page 1 ----\n\nAlpha content on the first page.\n\n" +
			"---- page 2 ----\n\nBeta content on the second page.\n\n" +
			"---- page 3 ----\n\nGamma content on the third page.",
		PageCount: 3,
		Pages: []core.ExtractedPage{
			{PageNumber: 1, Text: "Alpha content on the first page."},
			{PageNumber: 2, Text: "Beta content on the second page."},
			{PageNumber: 3, Text: "Gamma content on the third page."},
		},
	}

	c := New(60, 10, fixedCounter{})
	chunks := c.BuildChunks("doc-1", ext)
	require.NotEmpty(t, chunks)

	pageSeen := map[int]bool{}
	for i, ch := range chunks {
		assert.Equal(t, "doc-1", ch.DocumentID)
		assert.Equal(t, i, ch.ChunkIndex)
		assert.NotEmpty(t, ch.ID)
		if ch.PageNumber != nil {
			pageSeen[*ch.PageNumber] = true
		}
	}
	// The chunk starting with "Beta content" must resolve to page 2.
	assert.True(t, pageSeen[2], "expected a chunk attributed to page 2")
}

func TestBuildChunksNoPageMatch(t *testing.T) {
	ext := &core.ExtractionResult{
		Text:      "text that appears in no page",
		PageCount: 1,
		Pages:     []core.ExtractedPage{{PageNumber: 1, Text: "entirely different content"}},
	}

	c := New(1000, 200, fixedCounter{})
	chunks := c.BuildChunks("doc-1", ext)
	require.Len(t, chunks, 1)
	assert.Nil(t, chunks[0].PageNumber)
}

func TestBuildChunksTokenCounts(t *testing.T) {
	ext := &core.ExtractionResult{
		Text:      strings.Repeat("word ", 100),
		PageCount: 1,
		Pages:     []core.ExtractedPage{{PageNumber: 1, Text: strings.Repeat("word ", 100)}},
	}

	c := New(1000, 200, fixedCounter{})
	chunks := c.BuildChunks("doc-1", ext)
	require.Len(t, chunks, 1)
	assert.Equal(t, len(chunks[0].Content)/4, chunks[0].TokenCount)
}

func TestNewGuardsBadConfig(t *testing.T) {
	c := New(0, -1, fixedCounter{})
	assert.Equal(t, DefaultChunkSize, c.chunkSize)
	assert.Equal(t, DefaultOverlap, c.overlap)

	// An overlap that would prevent forward progress is reduced.
	c = New(100, 100, fixedCounter{})
	assert.Equal(t, 25, c.overlap)
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, approxTokens("abc"))
	assert.Equal(t, 1, approxTokens("abcd"))
	assert.Equal(t, 25, approxTokens(strings.Repeat("x", 100)))
}
