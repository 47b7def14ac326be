package chat

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DhruvJain7/ChatBot/internal/llm"
	"github.com/DhruvJain7/ChatBot/internal/models"
	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// Store is the conversation persistence the orchestrator drives. The
// SQLite database in internal/db implements it.
type Store interface {
	LoadConversation(ctx context.Context, userID string) ([]models.Message, error)
	SaveConversation(ctx context.Context, userID string, messages []models.Message) error
	DeleteConversation(ctx context.Context, userID string) error
}

// Orchestrator runs one conversational turn end to end: load history,
// assemble the prompt, call the backend once, append the user and
// agent messages, persist. It is the only component callers invoke.
type Orchestrator struct {
	store   Store
	backend llm.Backend
	logger  *zap.Logger
	locks   *userLocks
}

func New(store Store, backend llm.Backend, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:   store,
		backend: backend,
		logger:  logger,
		locks:   newUserLocks(),
	}
}

// HandleTurn processes one user message and returns the agent's reply.
//
// The two-message append (user then agent) is one atomic unit as far
// as callers can observe: a failed generation leaves the stored
// conversation exactly as it was, and a failed save after a successful
// generation is logged but does not un-send the response the caller
// already has.
func (o *Orchestrator) HandleTurn(ctx context.Context, userID, userText string) (string, error) {
	if userText == "" {
		return "", ErrEmptyInput
	}

	lock := o.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()

	history, err := o.store.LoadConversation(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	userMsg := models.Message{Role: models.RoleUser, Content: userText}
	payload, err := prompt.Assemble(history, userMsg, o.backend.Kind())
	if err != nil {
		return "", fmt.Errorf("failed to assemble prompt: %w", err)
	}

	response, err := o.backend.Generate(ctx, payload)
	if err != nil {
		return "", &GenerationError{Cause: err}
	}
	agentMsg := models.Message{Role: models.RoleAgent, Content: response}

	updated := make([]models.Message, 0, len(history)+2)
	updated = append(updated, history...)
	updated = append(updated, userMsg, agentMsg)

	if err := o.store.SaveConversation(ctx, userID, updated); err != nil {
		// The caller still gets the response; losing this history
		// entry is degraded but non-fatal.
		o.logger.Error("failed to persist turn",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	o.logger.Info("turn completed",
		zap.String("user_id", userID),
		zap.Int("history_len", len(updated)),
		zap.Duration("duration", time.Since(start)))

	return response, nil
}

// History returns the stored conversation for userID.
func (o *Orchestrator) History(ctx context.Context, userID string) ([]models.Message, error) {
	return o.store.LoadConversation(ctx, userID)
}

// Reset removes the stored conversation for userID. Resetting an
// absent conversation is not an error.
func (o *Orchestrator) Reset(ctx context.Context, userID string) error {
	lock := o.locks.get(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := o.store.DeleteConversation(ctx, userID); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}
	o.logger.Info("conversation reset", zap.String("user_id", userID))
	return nil
}
