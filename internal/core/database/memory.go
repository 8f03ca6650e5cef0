package db

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// MemClient is an in-memory DbClient. It backs credential-free local runs and
// the service tests; semantics mirror the Postgres client (wholesale chunk
// replacement, oldest-first history, conditional processing claim).
type MemClient struct {
	mu        sync.Mutex
	users     map[string]models.User
	documents map[string]models.Document
	chunks    map[string][]models.DocumentChunk // keyed by document ID
	messages  []models.ChatMessage
}

var _ core.DbClient = (*MemClient)(nil)

func NewMemClient() *MemClient {
	return &MemClient{
		users:     make(map[string]models.User),
		documents: make(map[string]models.Document),
		chunks:    make(map[string][]models.DocumentChunk),
	}
}

func (c *MemClient) Close() error { return nil }

func (c *MemClient) CreateUser(_ context.Context, user *models.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if strings.EqualFold(u.Email, user.Email) {
			return &core.ValidationError{Msg: "email already registered"}
		}
	}
	c.users[user.ID] = *user
	return nil
}

func (c *MemClient) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, nil
}

func (c *MemClient) CreateDocument(_ context.Context, doc *models.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[doc.ID] = *doc
	return nil
}

func (c *MemClient) GetDocumentByID(_ context.Context, id string) (*models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.documents[id]
	if !ok {
		return nil, nil
	}
	out := d
	return &out, nil
}

func (c *MemClient) ListDocumentsByUser(_ context.Context, userID string) ([]models.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.Document
	for _, d := range c.documents {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (c *MemClient) DeleteDocument(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.documents[id]; !ok {
		return &core.NotFoundError{Resource: "document", ID: id}
	}
	delete(c.documents, id)
	delete(c.chunks, id)
	kept := c.messages[:0]
	for _, m := range c.messages {
		if m.DocumentID != id {
			kept = append(kept, m)
		}
	}
	c.messages = kept
	return nil
}

func (c *MemClient) ClaimProcessing(_ context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.documents[id]
	if !ok || d.Status == models.StatusProcessing {
		return false, nil
	}
	d.Status = models.StatusProcessing
	d.ErrorMessage = nil
	d.ProcessedAt = nil
	c.documents[id] = d
	return true, nil
}

func (c *MemClient) MarkCompleted(_ context.Context, id string, pageCount int, processedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.documents[id]
	if !ok {
		return &core.NotFoundError{Resource: "document", ID: id}
	}
	d.Status = models.StatusCompleted
	d.PageCount = pageCount
	d.ProcessedAt = &processedAt
	d.ErrorMessage = nil
	c.documents[id] = d
	return nil
}

func (c *MemClient) MarkFailed(_ context.Context, id string, errorMessage string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.documents[id]
	if !ok {
		return &core.NotFoundError{Resource: "document", ID: id}
	}
	d.Status = models.StatusFailed
	d.ErrorMessage = &errorMessage
	c.documents[id] = d
	return nil
}

func (c *MemClient) ReplaceDocumentChunks(_ context.Context, documentID string, chunks []models.DocumentChunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	replaced := make([]models.DocumentChunk, len(chunks))
	copy(replaced, chunks)
	sort.Slice(replaced, func(i, j int) bool { return replaced[i].ChunkIndex < replaced[j].ChunkIndex })
	c.chunks[documentID] = replaced
	return nil
}

func (c *MemClient) GetChunksByDocument(_ context.Context, documentID string) ([]models.DocumentChunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.DocumentChunk, len(c.chunks[documentID]))
	copy(out, c.chunks[documentID])
	return out, nil
}

func (c *MemClient) GetChunksByIDs(_ context.Context, ids []string) ([]models.DocumentChunk, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.DocumentChunk
	for _, list := range c.chunks {
		for _, ch := range list {
			if want[ch.ID] {
				out = append(out, ch)
			}
		}
	}
	return out, nil
}

func (c *MemClient) CountChunksByDocument(_ context.Context, documentID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chunks[documentID]), nil
}

func (c *MemClient) AddChatMessage(_ context.Context, msg *models.ChatMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := *msg
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	c.messages = append(c.messages, m)
	return nil
}

func (c *MemClient) GetChatHistory(_ context.Context, documentID, userID string, limit int) ([]models.ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.ChatMessage
	for _, m := range c.messages {
		if m.DocumentID == documentID && m.UserID == userID {
			out = append(out, m)
		}
	}
	// Stable sort keeps insertion order for equal timestamps, matching the
	// created_at plus seq ordering of the Postgres query.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *MemClient) ClearChatHistory(_ context.Context, documentID, userID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var removed int64
	kept := c.messages[:0]
	for _, m := range c.messages {
		if m.DocumentID == documentID && m.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	c.messages = kept
	return removed, nil
}
