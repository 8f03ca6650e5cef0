package chunker

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/askpdf-dev/askpdf/internal/logger"
)

// TokenCounter estimates how many model tokens a text costs.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts with the cl100k_base encoding, falling back to the
// chars/4 estimate when the encoding cannot be loaded. The decision is made
// once, so every chunk of a run is counted the same way.
type tiktokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTokenCounter() TokenCounter { return &tiktokenCounter{} }

func (t *tiktokenCounter) Count(text string) int {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			logger.Warnf("chunker: tiktoken unavailable, using chars/4 estimate: %v", err)
			return
		}
		t.enc = enc
	})
	if t.enc != nil {
		return len(t.enc.Encode(text, nil, nil))
	}
	return approxTokens(text)
}

// approxTokens is the deterministic fallback estimate (~4 chars per token).
func approxTokens(s string) int {
	return len([]rune(s)) / 4
}
