package embedder

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter estimates the number of model tokens in a text. Counts are
// used to keep embedding requests under the provider's token budget.
type TokenCounter interface {
	Count(text string) int
}

// heuristicCharsPerToken approximates tokens as chars/4 for mixed prose.
// Used when the exact tokenizer is unavailable.
const heuristicCharsPerToken = 4

// tiktokenCounter counts tokens with the cl100k_base encoding.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// heuristicCounter approximates token counts from byte length.
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + heuristicCharsPerToken - 1) / heuristicCharsPerToken
}

var (
	counterOnce sync.Once
	counter     TokenCounter
)

// NewTokenCounter returns the process-wide token counter. It uses the
// cl100k_base tokenizer when its encoding data can be loaded, and falls
// back to a chars/4 heuristic otherwise. Loading happens once; the result
// is shared because the encoder is immutable and safe for concurrent use.
func NewTokenCounter() TokenCounter {
	counterOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil || enc == nil {
			counter = heuristicCounter{}
			return
		}
		counter = &tiktokenCounter{enc: enc}
	})
	return counter
}
