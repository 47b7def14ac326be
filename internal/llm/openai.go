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

// OpenAIBackend talks to a remote OpenAI-compatible chat API. It
// consumes the structured payload, already normalized to the
// user/assistant vocabulary.
type OpenAIBackend struct {
	llm     llms.Model
	opts    Options
	logger  *zap.Logger
	counter tokenCounter
}

func NewOpenAI(opts Options, logger *zap.Logger) (*OpenAIBackend, error) {
	clientOpts := []openai.Option{
		openai.WithToken(opts.Token),
		openai.WithModel(opts.Model),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(opts.BaseURL))
	}
	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}
	return &OpenAIBackend{llm: client, opts: opts, logger: logger}, nil
}

func (b *OpenAIBackend) Kind() prompt.BackendKind {
	return prompt.BackendOpenAI
}

func (b *OpenAIBackend) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	if payload.Kind != prompt.BackendOpenAI {
		return "", fmt.Errorf("payload assembled for kind %q, want %q", payload.Kind, prompt.BackendOpenAI)
	}
	content, err := chatMessages(payload.Messages)
	if err != nil {
		return "", err
	}
	warnIfLarge(b.logger, &b.counter, payload, b.opts.tokenWarnLimit())

	ctx, cancel := context.WithTimeout(ctx, b.opts.timeout())
	defer cancel()

	resp, err := b.llm.GenerateContent(ctx, content)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	completion := strings.TrimSpace(resp.Choices[0].Content)
	if completion == "" {
		return "", ErrEmptyCompletion
	}
	return completion, nil
}

// chatMessages converts normalized records into langchaingo message
// contents. The record roles are the wire labels the normalizer
// produced for this backend kind.
func chatMessages(records []prompt.Record) ([]llms.MessageContent, error) {
	content := make([]llms.MessageContent, 0, len(records))
	for _, rec := range records {
		var msgType llms.ChatMessageType
		switch rec.Role {
		case "user":
			msgType = llms.ChatMessageTypeHuman
		case "assistant":
			msgType = llms.ChatMessageTypeAI
		default:
			return nil, fmt.Errorf("unsupported role label %q for chat completion", rec.Role)
		}
		content = append(content, llms.TextParts(msgType, rec.Content))
	}
	return content, nil
}
