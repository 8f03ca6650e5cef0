package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/core/llm"
	"github.com/askpdf-dev/askpdf/internal/logger"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// DefaultHistoryLimit caps how many messages a history read returns when the
// caller does not specify one.
const DefaultHistoryLimit = 50

// ChatAnswer is the response to one question.
type ChatAnswer struct {
	Answer     string            `json:"answer"`
	Sources    []SourceReference `json:"sources"`
	Question   string            `json:"question"`
	ChunksUsed int               `json:"chunks_used"`
}

// ChatService answers questions about a document over retrieved context and
// keeps the per-document conversation history.
type ChatService struct {
	db        core.DbClient
	search    *SearchService
	generator core.LLMProvider

	topK             int
	maxContextTokens int
}

func NewChatService(db core.DbClient, search *SearchService, gen core.LLMProvider, topK, maxContextTokens int) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if maxContextTokens <= 0 {
		maxContextTokens = 2000
	}
	return &ChatService{db: db, search: search, generator: gen, topK: topK, maxContextTokens: maxContextTokens}
}

// AskQuestion retrieves context for the question, generates an answer and
// appends the exchange to the document's history. When retrieval returns no
// chunks the canned no-answer reply is returned without calling the
// generator, and nothing is persisted. The exchange is persisted only after
// generation succeeds, so a failed call leaves no trace in the history.
func (s *ChatService) AskQuestion(ctx context.Context, documentID, userID, question string, topK int) (*ChatAnswer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &core.ValidationError{Msg: "question must not be empty"}
	}
	if topK <= 0 {
		topK = s.topK
	}

	doc, err := s.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return nil, &core.NotFoundError{Resource: "document", ID: documentID}
	}
	if doc.UserID != userID {
		return nil, &core.AccessError{}
	}
	if doc.Status != models.StatusCompleted {
		return nil, &core.NotReadyError{Status: doc.Status}
	}

	result, err := s.search.SearchDocument(ctx, documentID, question, topK)
	if err != nil {
		return nil, err
	}

	if len(result.Chunks) == 0 {
		logger.Infof("chat: no relevant chunks for document %s, returning canned answer", documentID)
		return &ChatAnswer{
			Answer:     llm.NoAnswerText,
			Sources:    []SourceReference{},
			Question:   question,
			ChunksUsed: 0,
		}, nil
	}

	contextText := s.search.BuildContext(result, s.maxContextTokens)
	prompt := llm.ChatPrompt(question, contextText, doc.Title)

	answer, err := s.generator.Generate(ctx, llm.SystemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	sources := SourceReferences(result)
	sourceIDs := make([]string, len(sources))
	for i, ref := range sources {
		sourceIDs[i] = ref.ChunkID
	}

	// The assistant timestamp must be strictly later than the user's so
	// created_at ordering keeps the question before its answer.
	now := time.Now()
	userMsg := &models.ChatMessage{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		UserID:     userID,
		Role:       models.RoleUser,
		Content:    question,
		CreatedAt:  now,
	}
	assistantMsg := &models.ChatMessage{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		UserID:     userID,
		Role:       models.RoleAssistant,
		Content:    answer,
		Sources:    sourceIDs,
		CreatedAt:  now.Add(time.Millisecond),
	}
	if err := s.db.AddChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}
	if err := s.db.AddChatMessage(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("persist assistant message: %w", err)
	}

	return &ChatAnswer{
		Answer:     answer,
		Sources:    sources,
		Question:   question,
		ChunksUsed: len(result.Chunks),
	}, nil
}

// GetHistory returns the caller's conversation with the document, oldest
// first, at most limit messages.
func (s *ChatService) GetHistory(ctx context.Context, documentID, userID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if err := s.checkOwnership(ctx, documentID, userID); err != nil {
		return nil, err
	}
	return s.db.GetChatHistory(ctx, documentID, userID, limit)
}

// ClearHistory deletes the caller's conversation with the document and
// reports how many messages were removed. Clearing an empty history is not
// an error.
func (s *ChatService) ClearHistory(ctx context.Context, documentID, userID string) (int64, error) {
	if err := s.checkOwnership(ctx, documentID, userID); err != nil {
		return 0, err
	}
	return s.db.ClearChatHistory(ctx, documentID, userID)
}

func (s *ChatService) checkOwnership(ctx context.Context, documentID, userID string) error {
	doc, err := s.db.GetDocumentByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		return &core.NotFoundError{Resource: "document", ID: documentID}
	}
	if doc.UserID != userID {
		return &core.AccessError{}
	}
	return nil
}
