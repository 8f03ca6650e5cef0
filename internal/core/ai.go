package core

import "context"

// EmbeddingProvider converts text into fixed-dimension vectors. EmbedTexts
// must return vectors in input order and is expected to batch; it is never
// just a loop over EmbedText.
type EmbeddingProvider interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates free text from an assembled prompt. One attempt per
// call; retry policy belongs to the caller.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
