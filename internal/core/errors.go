package core

import "fmt"

// ValidationError marks bad input the caller can correct; never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError marks a missing document, chunk or user; terminal for the call.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// AccessError marks an ownership mismatch. The message is deliberately
// generic so it never confirms that another user's document exists.
type AccessError struct{}

func (e *AccessError) Error() string { return "you don't have access to this document" }

// NotReadyError marks a document whose status is not completed yet.
// Transient from the caller's perspective; retry once ingestion finishes.
type NotReadyError struct {
	Status string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("document is not ready: %s", e.Status)
}

// ExtractionError aggregates the failures of every extraction strategy.
type ExtractionError struct {
	Msg string
	Err error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Msg)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError marks a failure to initialize the embedding backend or to
// embed a text.
type EmbeddingError struct {
	Msg string
	Err error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("embedding failed: %s", e.Msg)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError marks a failure of the answer-generation backend.
type GenerationError struct {
	Msg string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Msg)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// DegenerateVectorError marks a zero-norm vector reaching a similarity
// computation. Valid embeddings never produce one, so this is an invariant
// violation, not a user error.
type DegenerateVectorError struct{}

func (e *DegenerateVectorError) Error() string {
	return "cosine similarity undefined for zero-norm vector"
}

// CollectionNotFoundError marks a query or drop against a document whose
// vector collection was never built. Callers treat it as "document not
// indexed", not as a fatal error.
type CollectionNotFoundError struct {
	DocumentID string
}

func (e *CollectionNotFoundError) Error() string {
	return fmt.Sprintf("vector collection not found for document %s", e.DocumentID)
}
