package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// tokenCounter counts prompt tokens for context-growth logging. The
// cl100k_base encoding is close enough for every backend we target;
// if the encoding cannot be loaded we fall back to a rough estimate
// rather than failing the turn over telemetry.
type tokenCounter struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func (c *tokenCounter) count(text string) int {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			c.enc = enc
		}
	})
	if c.enc == nil {
		return len(text) / 4
	}
	return len(c.enc.Encode(text, nil, nil))
}

func (c *tokenCounter) countPayload(payload prompt.Payload) int {
	if payload.Text != "" {
		return c.count(payload.Text)
	}
	total := 0
	for _, rec := range payload.Messages {
		total += c.count(rec.Content)
	}
	return total
}

// warnIfLarge logs when an assembled prompt is approaching the size
// where backends start rejecting or silently truncating input.
func warnIfLarge(logger *zap.Logger, counter *tokenCounter, payload prompt.Payload, limit int) {
	tokens := counter.countPayload(payload)
	if tokens > limit {
		logger.Warn("assembled prompt exceeds token warning limit",
			zap.Int("tokens", tokens),
			zap.Int("limit", limit),
			zap.Int("messages", len(payload.Messages)))
	}
}
