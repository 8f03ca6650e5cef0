// Package ingestion_engine drives the document pipeline: extract text, chunk
// it, embed the chunks, rebuild the per-document vector collection and stamp
// the lifecycle status. The relational status column is the single source of
// truth for "is this document queryable"; it only flips to completed after
// both stores hold the new data.
package ingestion_engine

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/core/chunker"
	"github.com/askpdf-dev/askpdf/internal/logger"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// Ingestor is what the HTTP layer sees of the pipeline.
type Ingestor interface {
	Start(ctx context.Context, numWorkers int)
	Enqueue(documentID string)
	ProcessDocument(ctx context.Context, documentID string) error
}

// DocumentIngestor orchestrates the pipeline for one document at a time per
// worker. Ingestions of distinct documents may run in parallel; a second
// ingestion of the same document is rejected by the processing claim.
type DocumentIngestor struct {
	db        core.DbClient
	obj       core.ObjectClient
	extractor core.DocumentExtractor
	embedder  core.EmbeddingProvider
	index     core.VectorIndex
	chunker   *chunker.Chunker
	jobs      chan string
}

var _ Ingestor = (*DocumentIngestor)(nil)

// NewDocumentIngestor constructs the ingestor with a bounded job queue.
func NewDocumentIngestor(
	db core.DbClient,
	obj core.ObjectClient,
	extractor core.DocumentExtractor,
	embedder core.EmbeddingProvider,
	index core.VectorIndex,
	cfg *IngestConfig,
) *DocumentIngestor {
	queue := 64
	if cfg != nil && cfg.QueueSize > 0 {
		queue = cfg.QueueSize
	}
	size, overlap := chunker.DefaultChunkSize, chunker.DefaultOverlap
	if cfg != nil {
		size, overlap = cfg.ChunkSize, cfg.ChunkOverlap
	}
	return &DocumentIngestor{
		db:        db,
		obj:       obj,
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		chunker:   chunker.New(size, overlap, nil),
		jobs:      make(chan string, queue),
	}
}

// Start runs numWorkers goroutines reading from the jobs channel.
func (i *DocumentIngestor) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					logger.Infof("ingestor: worker %d shutting down", w)
					return
				case docID := <-i.jobs:
					logger.Infof("ingestor: worker %d processing document %s", w, docID)
					if err := i.ProcessDocument(ctx, docID); err != nil {
						logger.Errorf("ingestor: document %s failed: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a document ID for ingestion. Blocks while the queue is
// full.
func (i *DocumentIngestor) Enqueue(documentID string) {
	i.jobs <- documentID
}

// ProcessDocument runs the whole pipeline synchronously for one document.
// Any stage failure marks the document failed with the verbatim error; the
// document is never left in processing.
func (i *DocumentIngestor) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := i.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return &core.NotFoundError{Resource: "document", ID: documentID}
	}

	claimed, err := i.db.ClaimProcessing(ctx, documentID)
	if err != nil {
		return fmt.Errorf("claim document: %w", err)
	}
	if !claimed {
		return &core.ValidationError{Msg: "document is already being processed"}
	}

	pageCount, chunkCount, err := i.runPipeline(ctx, doc)
	if err != nil {
		if markErr := i.db.MarkFailed(ctx, documentID, err.Error()); markErr != nil {
			logger.Errorf("ingestor: could not mark %s failed: %v", documentID, markErr)
		}
		return err
	}

	if err := i.db.MarkCompleted(ctx, documentID, pageCount, time.Now()); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	logger.Infof("ingestor: document %s completed (%d pages, %d chunks)", documentID, pageCount, chunkCount)
	return nil
}

func (i *DocumentIngestor) runPipeline(ctx context.Context, doc *models.Document) (pageCount, chunkCount int, err error) {
	path, cleanup, err := i.fetchToTemp(ctx, doc)
	if err != nil {
		return 0, 0, err
	}
	defer cleanup()

	ext, err := i.extractor.Extract(path)
	if err != nil {
		return 0, 0, err
	}

	chunks := i.chunker.BuildChunks(doc.ID, ext)
	if len(chunks) == 0 {
		return 0, 0, &core.ExtractionError{Msg: "document produced no chunks"}
	}

	texts := make([]string, len(chunks))
	for n, ch := range chunks {
		texts[n] = ch.Content
	}
	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, 0, err
	}
	if len(vectors) != len(chunks) {
		return 0, 0, &core.EmbeddingError{Msg: "embedding count does not match chunk count"}
	}
	for n := range chunks {
		chunks[n].Embedding = vectors[n]
	}

	if err := i.db.ReplaceDocumentChunks(ctx, doc.ID, chunks); err != nil {
		return 0, 0, fmt.Errorf("replace chunks: %w", err)
	}

	entries := make([]core.IndexEntry, len(chunks))
	for n, ch := range chunks {
		entries[n] = core.IndexEntry{
			ChunkID:    ch.ID,
			Embedding:  ch.Embedding,
			ChunkIndex: ch.ChunkIndex,
			PageNumber: ch.PageNumber,
			TokenCount: ch.TokenCount,
		}
	}
	if err := i.index.Rebuild(ctx, doc.ID, entries); err != nil {
		return 0, 0, fmt.Errorf("rebuild vector collection: %w", err)
	}

	return ext.PageCount, len(chunks), nil
}

// fetchToTemp pulls the stored PDF down to a temp file, because extraction
// libraries want a path, not a stream.
func (i *DocumentIngestor) fetchToTemp(ctx context.Context, doc *models.Document) (string, func(), error) {
	bucket, key := core.ParseS3URL(doc.StorageURL)
	data, err := i.obj.GetFile(ctx, bucket, key)
	if err != nil {
		return "", nil, fmt.Errorf("fetch stored file: %w", err)
	}

	f, err := os.CreateTemp("", "askpdf-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
