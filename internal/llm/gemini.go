package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// GeminiBackend talks to the Gemini API. It consumes the structured
// payload; Gemini keeps the "model" label for the agent role.
type GeminiBackend struct {
	client  *genai.Client
	opts    Options
	logger  *zap.Logger
	counter tokenCounter
}

func NewGemini(ctx context.Context, opts Options, logger *zap.Logger) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.Token,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}
	return &GeminiBackend{client: client, opts: opts, logger: logger}, nil
}

func (b *GeminiBackend) Kind() prompt.BackendKind {
	return prompt.BackendGemini
}

func (b *GeminiBackend) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	if payload.Kind != prompt.BackendGemini {
		return "", fmt.Errorf("payload assembled for kind %q, want %q", payload.Kind, prompt.BackendGemini)
	}
	contents := make([]*genai.Content, 0, len(payload.Messages))
	for _, rec := range payload.Messages {
		switch rec.Role {
		case genai.RoleUser, genai.RoleModel:
		default:
			return "", fmt.Errorf("unsupported role label %q for gemini", rec.Role)
		}
		contents = append(contents, &genai.Content{
			Role:  rec.Role,
			Parts: []*genai.Part{{Text: rec.Content}},
		})
	}
	warnIfLarge(b.logger, &b.counter, payload, b.opts.tokenWarnLimit())

	ctx, cancel := context.WithTimeout(ctx, b.opts.timeout())
	defer cancel()

	resp, err := b.client.Models.GenerateContent(ctx, b.opts.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	completion := strings.TrimSpace(resp.Text())
	if completion == "" {
		return "", ErrEmptyCompletion
	}
	return completion, nil
}
