package llm

import (
	"context"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/askpdf-dev/askpdf/internal/core"
)

// GeminiLLM generates answers with a Gemini chat model. Stateless per call;
// the client is created lazily once and reused. No retries: a failed call
// surfaces as a GenerationError and retry policy belongs to the caller.
type GeminiLLM struct {
	apiKey    string
	modelName string

	once    sync.Once
	client  *genai.Client
	initErr error
}

var _ core.LLMProvider = (*GeminiLLM)(nil)

func NewGeminiLLM(apiKey, modelName string) *GeminiLLM {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{apiKey: apiKey, modelName: modelName}
}

func (g *GeminiLLM) getClient(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		if g.apiKey == "" {
			g.initErr = &core.GenerationError{Msg: "GEMINI_API_KEY not set"}
			return
		}
		cl, err := genai.NewClient(ctx, option.WithAPIKey(g.apiKey))
		if err != nil {
			g.initErr = &core.GenerationError{Msg: "init gemini client", Err: err}
			return
		}
		g.client = cl
	})
	return g.client, g.initErr
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func (g *GeminiLLM) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cl, err := g.getClient(ctx)
	if err != nil {
		return "", err
	}

	m := cl.GenerativeModel(g.modelName)
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", &core.GenerationError{Msg: "gemini generate", Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &core.GenerationError{Msg: "gemini returned no candidates"}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", &core.GenerationError{Msg: "gemini returned an empty answer"}
	}
	return answer, nil
}
