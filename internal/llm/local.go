package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// LocalBackend talks to a locally hosted model behind an
// OpenAI-compatible completion endpoint (ollama, llama.cpp server).
// It consumes the flat chat-template payload.
type LocalBackend struct {
	llm     llms.Model
	opts    Options
	logger  *zap.Logger
	counter tokenCounter
}

func NewLocal(opts Options, logger *zap.Logger) (*LocalBackend, error) {
	client, err := openai.New(
		openai.WithToken(opts.Token),
		openai.WithBaseURL(opts.BaseURL),
		openai.WithModel(opts.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local model client: %w", err)
	}
	return &LocalBackend{llm: client, opts: opts, logger: logger}, nil
}

func (b *LocalBackend) Kind() prompt.BackendKind {
	return prompt.BackendLocal
}

func (b *LocalBackend) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	if payload.Kind != prompt.BackendLocal || payload.Text == "" {
		return "", fmt.Errorf("local backend requires a flat prompt payload, got kind %q", payload.Kind)
	}
	warnIfLarge(b.logger, &b.counter, payload, b.opts.tokenWarnLimit())

	ctx, cancel := context.WithTimeout(ctx, b.opts.timeout())
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, b.llm, payload.Text)
	if err != nil {
		return "", fmt.Errorf("local generation failed: %w", err)
	}
	completion = strings.TrimSpace(completion)
	if completion == "" {
		return "", ErrEmptyCompletion
	}
	return completion, nil
}
