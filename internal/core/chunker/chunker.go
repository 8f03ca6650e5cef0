// Package chunker splits extracted text into overlapping fixed-size segments
// with page attribution and token counts. Splitting is deterministic: the
// same text and configuration always yield the same boundaries.
package chunker

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultOverlap is the default number of characters shared between
// consecutive chunks.
const DefaultOverlap = 200

// pageProbeLen is how many leading characters of a chunk are used to locate
// its page.
const pageProbeLen = 100

// separators in preference order: paragraph, line, sentence, word.
var separators = []string{"\n\n", "\n", ". ", " "}

type Chunker struct {
	chunkSize int
	overlap   int
	counter   TokenCounter
}

// New builds a chunker. Non-positive sizes fall back to the defaults, and an
// overlap that would prevent forward progress is reduced.
func New(chunkSize, overlap int, counter TokenCounter) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if counter == nil {
		counter = NewTokenCounter()
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap, counter: counter}
}

// BuildChunks splits the extraction into chunk records for the document.
// Embeddings are left nil; the embedding stage fills them in later.
func (c *Chunker) BuildChunks(documentID string, ext *core.ExtractionResult) []models.DocumentChunk {
	segments := c.Split(ext.Text)

	now := time.Now()
	chunks := make([]models.DocumentChunk, 0, len(segments))
	for i, seg := range segments {
		chunks = append(chunks, models.DocumentChunk{
			ID:         uuid.NewString(),
			DocumentID: documentID,
			ChunkIndex: i,
			Content:    seg,
			PageNumber: findPageNumber(seg, ext.Pages),
			TokenCount: c.counter.Count(seg),
			CreatedAt:  now,
		})
	}
	return chunks
}

// Split cuts text into segments of at most chunkSize bytes, preferring
// paragraph, line, sentence and word boundaries in that order and falling
// back to a hard cut (on a rune boundary) only when the window contains none.
// Consecutive segments share overlap bytes.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= c.chunkSize {
		return []string{text}
	}

	var out []string
	start := 0
	for start < len(text) {
		end := start + c.chunkSize
		if end >= len(text) {
			out = append(out, text[start:])
			break
		}

		cut := c.findCut(text[start:end])
		out = append(out, text[start:start+cut])

		next := start + cut - c.overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
	return out
}

// findCut returns the byte offset to cut the window at: just after the last
// occurrence of the highest-priority separator present, or a rune-aligned
// hard cut at the window end.
func (c *Chunker) findCut(window string) int {
	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return idx + len(sep)
		}
	}
	cut := len(window)
	for cut > 0 && !utf8.RuneStart(window[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = len(window)
	}
	return cut
}

// findPageNumber locates the chunk's leading text inside the extracted
// pages; the first matching page in document order wins. Page banner lines
// (and cut fragments of them) are skipped when building the probe, so a
// chunk that begins at a page boundary is attributed to the page its first
// real content belongs to. A chunk with no locatable content gets no page.
func findPageNumber(chunk string, pages []core.ExtractedPage) *int {
	probe := probeText(chunk)
	if probe == "" {
		return nil
	}
	for _, p := range pages {
		if strings.Contains(p.Text, probe) {
			n := p.PageNumber
			return &n
		}
	}
	return nil
}

// probeText returns the first run of banner-free lines, capped at
// pageProbeLen runes. The run stops at the next banner line so the probe
// never spans two pages.
func probeText(chunk string) string {
	var (
		run     []string
		started bool
	)
	for _, line := range strings.Split(chunk, "\n") {
		if strings.Contains(line, "----") {
			if started {
				break
			}
			continue
		}
		if strings.TrimSpace(line) != "" {
			started = true
		}
		if started {
			run = append(run, line)
		}
	}
	probe := strings.TrimSpace(strings.Join(run, "\n"))
	if runes := []rune(probe); len(runes) > pageProbeLen {
		probe = strings.TrimSpace(string(runes[:pageProbeLen]))
	}
	return probe
}
