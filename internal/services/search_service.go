package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/core/chunker"
	"github.com/askpdf-dev/askpdf/internal/logger"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// DefaultTopK is how many chunks a search returns when the caller does not
// ask for a specific count.
const DefaultTopK = 5

// sourcePreviewLen is how many characters of a chunk a source reference
// carries.
const sourcePreviewLen = 100

// SearchChunk is one retrieved chunk with its similarity score.
type SearchChunk struct {
	ChunkID         string  `json:"chunk_id"`
	ChunkIndex      int     `json:"chunk_index"`
	PageNumber      *int    `json:"page_number,omitempty"`
	Content         string  `json:"content"`
	TokenCount      int     `json:"token_count"`
	SimilarityScore float64 `json:"similarity_score"`
}

// SearchResult is the full retrieval response for one query.
type SearchResult struct {
	DocumentID    string        `json:"document_id"`
	DocumentTitle string        `json:"document_title"`
	Query         string        `json:"query"`
	ResultsCount  int           `json:"results_count"`
	Chunks        []SearchChunk `json:"chunks"`
}

// SourceReference is the compact citation form of a retrieved chunk.
type SourceReference struct {
	ChunkID         string  `json:"chunk_id"`
	PageNumber      *int    `json:"page_number,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
	Preview         string  `json:"preview"`
}

// SearchService retrieves the most relevant chunks of a completed document
// for a query.
type SearchService struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	index    core.VectorIndex
	counter  chunker.TokenCounter
}

func NewSearchService(db core.DbClient, emb core.EmbeddingProvider, index core.VectorIndex) *SearchService {
	return &SearchService{db: db, embedder: emb, index: index, counter: chunker.NewTokenCounter()}
}

// SearchDocument embeds the query and returns the topK most similar chunks,
// best first. The document must exist and be completed; an index collection
// missing for a completed document is reported as not ready rather than as
// an internal failure.
func (s *SearchService) SearchDocument(ctx context.Context, documentID, query string, topK int) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &core.ValidationError{Msg: "query must not be empty"}
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	doc, err := s.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, &core.NotFoundError{Resource: "document", ID: documentID}
	}
	if doc.Status != models.StatusCompleted {
		return nil, &core.NotReadyError{Status: doc.Status}
	}

	vec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := s.index.Query(ctx, documentID, vec, topK)
	if err != nil {
		var missing *core.CollectionNotFoundError
		if errors.As(err, &missing) {
			return nil, &core.NotReadyError{Status: doc.Status}
		}
		return nil, fmt.Errorf("query vector index: %w", err)
	}

	chunks, err := s.enrich(ctx, hits)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		DocumentID:    doc.ID,
		DocumentTitle: doc.Title,
		Query:         query,
		ResultsCount:  len(chunks),
		Chunks:        chunks,
	}, nil
}

// enrich joins index hits with their relational chunk rows, preserving hit
// order. A hit whose row has vanished (a rebuild raced the query) is dropped
// with a warning rather than failing the search.
func (s *SearchService) enrich(ctx context.Context, hits []core.IndexHit) ([]SearchChunk, error) {
	if len(hits) == 0 {
		return []SearchChunk{}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
	}
	rows, err := s.db.GetChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	byID := make(map[string]models.DocumentChunk, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	out := make([]SearchChunk, 0, len(hits))
	for _, h := range hits {
		row, ok := byID[h.ChunkID]
		if !ok {
			logger.Warnf("search: chunk %s in index but not in store, dropping", h.ChunkID)
			continue
		}
		out = append(out, SearchChunk{
			ChunkID:         row.ID,
			ChunkIndex:      row.ChunkIndex,
			PageNumber:      row.PageNumber,
			Content:         row.Content,
			TokenCount:      row.TokenCount,
			SimilarityScore: roundScore(h.Score),
		})
	}
	return out, nil
}

// BuildContext concatenates retrieved chunks, in order, into a prompt
// context bounded by maxTokens. Inclusion is greedy: assembly stops at the
// first chunk that would overflow the budget, even if a later, smaller chunk
// would still fit. Each chunk is preceded by a source header carrying its
// page and similarity.
func (s *SearchService) BuildContext(result *SearchResult, maxTokens int) string {
	if result == nil || len(result.Chunks) == 0 {
		return ""
	}

	var sb strings.Builder
	used := 0
	for i, ch := range result.Chunks {
		header := fmt.Sprintf("--- Source %d (page %s, similarity: %.4f) ---", i+1, pageLabel(ch.PageNumber), ch.SimilarityScore)
		cost := ch.TokenCount + s.counter.Count(header)
		if used+cost > maxTokens {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(header)
		sb.WriteString("\n")
		sb.WriteString(ch.Content)
		used += cost
	}
	return sb.String()
}

// SourceReferences reduces a search result to citation stubs: chunk ID, page
// and a short content preview.
func SourceReferences(result *SearchResult) []SourceReference {
	if result == nil {
		return nil
	}
	refs := make([]SourceReference, 0, len(result.Chunks))
	for _, ch := range result.Chunks {
		preview := ch.Content
		if runes := []rune(preview); len(runes) > sourcePreviewLen {
			preview = string(runes[:sourcePreviewLen]) + "..."
		}
		refs = append(refs, SourceReference{
			ChunkID:         ch.ChunkID,
			PageNumber:      ch.PageNumber,
			SimilarityScore: ch.SimilarityScore,
			Preview:         preview,
		})
	}
	return refs
}

func pageLabel(p *int) string {
	if p == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *p)
}

func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}
