package llm

import (
	"context"
	"errors"
	"time"

	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// Backend executes one turn of generation given an assembled payload.
// Implementations own their provider's client, timeout, and payload
// shape; callers treat them as an opaque generate function that may be
// slow or fail.
type Backend interface {
	Kind() prompt.BackendKind
	Generate(ctx context.Context, payload prompt.Payload) (string, error)
}

// ErrEmptyCompletion is returned when a backend answers without usable
// text. Callers treat it like any other generation failure.
var ErrEmptyCompletion = errors.New("backend returned an empty completion")

// Options configures a backend adapter. Zero values fall back to the
// defaults below.
type Options struct {
	BaseURL    string
	Token      string
	Model      string
	Timeout    time.Duration
	// TokenWarnLimit is the prompt size, in tokens, above which the
	// adapter logs a warning. History is never truncated, so this is
	// the operator's early signal that a conversation is outgrowing
	// the model's context window.
	TokenWarnLimit int
}

const (
	defaultTimeout        = 30 * time.Second
	defaultTokenWarnLimit = 6144
)

func (o Options) timeout() time.Duration {
	if o.Timeout <= 0 {
		return defaultTimeout
	}
	return o.Timeout
}

func (o Options) tokenWarnLimit() int {
	if o.TokenWarnLimit <= 0 {
		return defaultTokenWarnLimit
	}
	return o.TokenWarnLimit
}
