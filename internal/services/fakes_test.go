package services

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/askpdf-dev/askpdf/internal/core"
	db "github.com/askpdf-dev/askpdf/internal/core/database"
	"github.com/askpdf-dev/askpdf/internal/core/vectorstore"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// fakeEmbedder returns the vector registered for a text, or a constant
// vector for anything unregistered.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    error
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.EmbedText(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// fakeGenerator counts calls so tests can assert the generator was skipped.
type fakeGenerator struct {
	answer string
	fail   error
	calls  int
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.fail != nil {
		return "", f.fail
	}
	return f.answer, nil
}

// fakeObjectClient records deletions; uploads return a deterministic URL.
type fakeObjectClient struct {
	uploaded map[string][]byte
	deleted  []string
	failUp   error
}

func newFakeObjectClient() *fakeObjectClient {
	return &fakeObjectClient{uploaded: make(map[string][]byte)}
}

func (f *fakeObjectClient) UploadFile(_ context.Context, bucket, key string, data io.Reader, _ string) (string, error) {
	if f.failUp != nil {
		return "", f.failUp
	}
	b, _ := io.ReadAll(data)
	f.uploaded[key] = b
	return "https://" + bucket + ".s3.us-east-2.amazonaws.com/" + key, nil
}

func (f *fakeObjectClient) DeleteFile(_ context.Context, _, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjectClient) GetFile(_ context.Context, _, key string) ([]byte, error) {
	b, ok := f.uploaded[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return b, nil
}

func (f *fakeObjectClient) GetObjectReader(_ context.Context, _, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

// fakeIngestor records enqueued document IDs.
type fakeIngestor struct {
	enqueued []string
}

func (f *fakeIngestor) Start(_ context.Context, _ int) {}
func (f *fakeIngestor) Enqueue(documentID string)      { f.enqueued = append(f.enqueued, documentID) }
func (f *fakeIngestor) ProcessDocument(_ context.Context, _ string) error {
	return errors.New("not implemented")
}

// seedCompletedDocument stores a completed three-chunk document with its
// vector collection and returns it with its chunks.
func seedCompletedDocument(client *db.MemClient, index *vectorstore.Memory, userID string) (*models.Document, []models.DocumentChunk) {
	ctx := context.Background()
	now := time.Now()
	doc := &models.Document{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      "handbook",
		FileName:   "handbook.pdf",
		StorageURL: "https://bucket.s3.us-east-2.amazonaws.com/u/d/handbook.pdf",
		FileSize:   1024,
		PageCount:  3,
		Status:     models.StatusCompleted,
		UploadedAt: now,
	}
	_ = client.CreateDocument(ctx, doc)

	page1, page2, page3 := 1, 2, 3
	chunks := []models.DocumentChunk{
		{ID: uuid.NewString(), DocumentID: doc.ID, ChunkIndex: 0, Content: "Alpha section about onboarding.", PageNumber: &page1, TokenCount: 100, Embedding: []float32{1, 0, 0}},
		{ID: uuid.NewString(), DocumentID: doc.ID, ChunkIndex: 1, Content: "Beta section about benefits.", PageNumber: &page2, TokenCount: 100, Embedding: []float32{0, 1, 0}},
		{ID: uuid.NewString(), DocumentID: doc.ID, ChunkIndex: 2, Content: "Gamma section about offboarding.", PageNumber: &page3, TokenCount: 100, Embedding: []float32{0, 0, 1}},
	}
	_ = client.ReplaceDocumentChunks(ctx, doc.ID, chunks)

	entries := make([]core.IndexEntry, len(chunks))
	for i, ch := range chunks {
		entries[i] = core.IndexEntry{
			ChunkID:    ch.ID,
			Embedding:  ch.Embedding,
			ChunkIndex: ch.ChunkIndex,
			PageNumber: ch.PageNumber,
			TokenCount: ch.TokenCount,
		}
	}
	_ = index.Rebuild(ctx, doc.ID, entries)
	return doc, chunks
}
