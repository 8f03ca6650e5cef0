package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askpdf-dev/askpdf/internal/config"
	"github.com/askpdf-dev/askpdf/internal/core"
	"github.com/askpdf-dev/askpdf/internal/core/ingestion_engine"
	"github.com/askpdf-dev/askpdf/internal/logger"
	"github.com/askpdf-dev/askpdf/internal/models"
)

// DocumentStatus is the processing report for one document.
type DocumentStatus struct {
	ID           string  `json:"id"`
	Status       string  `json:"status"`
	ErrorMessage *string `json:"error_message,omitempty"`
	PageCount    int     `json:"page_count"`
	ChunkCount   int     `json:"chunk_count"`
	IsReady      bool    `json:"is_ready"`
}

// DocumentService owns the document lifecycle outside the ingestion
// pipeline: upload, listing, status, re-ingestion and deletion.
type DocumentService struct {
	db       core.DbClient
	obj      core.ObjectClient
	index    core.VectorIndex
	ingestor ingestion_engine.Ingestor
	cfg      *config.Config
}

func NewDocumentService(db core.DbClient, obj core.ObjectClient, index core.VectorIndex, ing ingestion_engine.Ingestor, cfg *config.Config) *DocumentService {
	return &DocumentService{db: db, obj: obj, index: index, ingestor: ing, cfg: cfg}
}

// Upload validates and stores an incoming PDF, records it as pending and
// queues it for ingestion. The returned document carries the pending status;
// the caller polls Status to see it progress.
func (s *DocumentService) Upload(ctx context.Context, userID, fileName, contentType string, size int64, data io.Reader) (*models.Document, error) {
	cleanName := filepath.Base(fileName)
	if !strings.EqualFold(filepath.Ext(cleanName), ".pdf") {
		return nil, &core.ValidationError{Msg: "only PDF files are supported"}
	}
	if size <= 0 {
		return nil, &core.ValidationError{Msg: "file is empty"}
	}
	if size > s.cfg.MaxUploadBytes {
		return nil, &core.ValidationError{Msg: fmt.Sprintf("file exceeds the %d MB upload limit", s.cfg.MaxUploadBytes>>20)}
	}
	if contentType == "" {
		contentType = "application/pdf"
	}

	docID := uuid.NewString()
	key := fmt.Sprintf("%s/%s/%s", userID, docID, cleanName)

	uploadCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	url, err := s.obj.UploadFile(uploadCtx, s.cfg.BucketName, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	doc := &models.Document{
		ID:         docID,
		UserID:     userID,
		Title:      strings.TrimSuffix(cleanName, filepath.Ext(cleanName)),
		FileName:   cleanName,
		StorageURL: url,
		FileSize:   size,
		Status:     models.StatusPending,
		UploadedAt: time.Now(),
	}
	if err := s.db.CreateDocument(uploadCtx, doc); err != nil {
		return nil, fmt.Errorf("record document: %w", err)
	}

	s.ingestor.Enqueue(doc.ID)
	logger.Infof("document %s uploaded by %s, queued for ingestion", doc.ID, userID)
	return doc, nil
}

// List returns the caller's documents, newest upload first.
func (s *DocumentService) List(ctx context.Context, userID string) ([]models.Document, error) {
	return s.db.ListDocumentsByUser(ctx, userID)
}

// Get returns one document after the ownership check.
func (s *DocumentService) Get(ctx context.Context, documentID, userID string) (*models.Document, error) {
	return s.owned(ctx, documentID, userID)
}

// Status reports the document's lifecycle state together with its chunk
// count. ChunkCount is meaningful only once IsReady is true.
func (s *DocumentService) Status(ctx context.Context, documentID, userID string) (*DocumentStatus, error) {
	doc, err := s.owned(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.db.CountChunksByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	return &DocumentStatus{
		ID:           doc.ID,
		Status:       doc.Status,
		ErrorMessage: doc.ErrorMessage,
		PageCount:    doc.PageCount,
		ChunkCount:   count,
		IsReady:      doc.Status == models.StatusCompleted,
	}, nil
}

// Reingest queues a full re-run of the pipeline for a completed or failed
// document. A document still pending or processing is rejected.
func (s *DocumentService) Reingest(ctx context.Context, documentID, userID string) error {
	doc, err := s.owned(ctx, documentID, userID)
	if err != nil {
		return err
	}
	if doc.Status != models.StatusCompleted && doc.Status != models.StatusFailed {
		return &core.ValidationError{Msg: fmt.Sprintf("document is %s, wait for ingestion to finish", doc.Status)}
	}
	s.ingestor.Enqueue(documentID)
	return nil
}

// Delete removes the document everywhere: chunk rows (cascade), chat history
// (cascade), vector collection and the stored object. A vector collection
// that was never built is not an error.
func (s *DocumentService) Delete(ctx context.Context, documentID, userID string) error {
	doc, err := s.owned(ctx, documentID, userID)
	if err != nil {
		return err
	}

	if err := s.index.Drop(ctx, documentID); err != nil {
		var missing *core.CollectionNotFoundError
		if !errors.As(err, &missing) {
			return fmt.Errorf("drop vector collection: %w", err)
		}
	}

	bucket, key := core.ParseS3URL(doc.StorageURL)
	if err := s.obj.DeleteFile(ctx, bucket, key); err != nil {
		logger.Warnf("document %s: stored object not deleted: %v", documentID, err)
	}

	if err := s.db.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Infof("document %s deleted", documentID)
	return nil
}

func (s *DocumentService) owned(ctx context.Context, documentID, userID string) (*models.Document, error) {
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
	return doc, nil
}
