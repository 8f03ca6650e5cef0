package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"

	"github.com/askpdf-dev/askpdf/internal/core"
)

// embedParallelism bounds concurrent batch requests against the backend.
const embedParallelism = 4

// GeminiEmbedder embeds text with Gemini's embedding models. The client is
// created lazily once and reused for the process lifetime.
type GeminiEmbedder struct {
	apiKey    string
	modelName string
	batchSize int

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ core.EmbeddingProvider = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(apiKey, modelName string, batchSize int) *GeminiEmbedder {
	if modelName == "" {
		modelName = "text-embedding-004"
	}
	if batchSize <= 0 {
		batchSize = 16
	}
	return &GeminiEmbedder{apiKey: apiKey, modelName: modelName, batchSize: batchSize}
}

func (g *GeminiEmbedder) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = &core.EmbeddingError{Msg: "GEMINI_API_KEY not set"}
			return
		}
		cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
		if err != nil {
			g.initErr = &core.EmbeddingError{Msg: "init gemini client", Err: err}
			return
		}
		g.client = cl
	})
	return g.client, g.initErr
}

func (g *GeminiEmbedder) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vecs, err := g.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts embeds all texts, preserving input order. Texts are grouped into
// batches and the batches run through one BatchEmbedContents call each, with
// bounded parallelism across batches.
func (g *GeminiEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, &core.EmbeddingError{Msg: fmt.Sprintf("cannot embed empty text (index %d)", i)}
		}
	}

	cl, err := g.getClient(ctx)
	if err != nil {
		return nil, err
	}
	em := cl.EmbeddingModel(g.modelName)

	out := make([][]float32, len(texts))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(embedParallelism)

	for offset := 0; offset < len(texts); offset += g.batchSize {
		lo, hi := offset, offset+g.batchSize
		if hi > len(texts) {
			hi = len(texts)
		}
		grp.Go(func() error {
			batch := em.NewBatch()
			for _, t := range texts[lo:hi] {
				batch.AddContent(genai.Text(t))
			}
			resp, err := em.BatchEmbedContents(gctx, batch)
			if err != nil {
				return &core.EmbeddingError{Msg: "gemini batch embed", Err: err}
			}
			if len(resp.Embeddings) != hi-lo {
				return &core.EmbeddingError{Msg: "gemini returned wrong embedding count"}
			}
			for i, e := range resp.Embeddings {
				out[lo+i] = e.Values
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
