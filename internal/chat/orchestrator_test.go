package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DhruvJain7/ChatBot/internal/db"
	"github.com/DhruvJain7/ChatBot/internal/models"
	"github.com/DhruvJain7/ChatBot/internal/prompt"
)

// stubBackend fakes a generation backend for tests.
type stubBackend struct {
	generate func(ctx context.Context, payload prompt.Payload) (string, error)
}

func (b *stubBackend) Kind() prompt.BackendKind { return prompt.BackendLocal }

func (b *stubBackend) Generate(ctx context.Context, payload prompt.Payload) (string, error) {
	return b.generate(ctx, payload)
}

func fixedBackend(reply string) *stubBackend {
	return &stubBackend{generate: func(context.Context, prompt.Payload) (string, error) {
		return reply, nil
	}}
}

func testStore(t *testing.T) *db.Database {
	t.Helper()
	database, err := db.New(t.TempDir()+"/chat.db", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestHandleTurnAppendsUserAndAgent(t *testing.T) {
	store := testStore(t)
	orch := New(store, fixedBackend("hi"), zap.NewNop())
	ctx := context.Background()

	response, err := orch.HandleTurn(ctx, "u1", "hello")
	require.NoError(t, err)
	require.Equal(t, "hi", response)

	history, err := store.LoadConversation(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []models.Message{
		{Role: models.RoleUser, Content: "hello"},
		{Role: models.RoleAgent, Content: "hi"},
	}, history)
}

func TestHandleTurnPreservesPriorHistory(t *testing.T) {
	store := testStore(t)
	orch := New(store, fixedBackend("hi"), zap.NewNop())
	ctx := context.Background()

	_, err := orch.HandleTurn(ctx, "u1", "hello")
	require.NoError(t, err)
	_, err = orch.HandleTurn(ctx, "u1", "again")
	require.NoError(t, err)

	history, err := store.LoadConversation(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 4)
	require.Equal(t, models.Message{Role: models.RoleUser, Content: "hello"}, history[0])
	require.Equal(t, models.Message{Role: models.RoleAgent, Content: "hi"}, history[1])
	require.Equal(t, models.Message{Role: models.RoleUser, Content: "again"}, history[2])
}

func TestHandleTurnRejectsEmptyInput(t *testing.T) {
	store := testStore(t)
	orch := New(store, fixedBackend("hi"), zap.NewNop())
	ctx := context.Background()

	_, err := orch.HandleTurn(ctx, "u1", "")
	require.ErrorIs(t, err, ErrEmptyInput)

	history, err := store.LoadConversation(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestFailedGenerationLeavesStoreUntouched(t *testing.T) {
	store := testStore(t)
	backend := &stubBackend{generate: func(context.Context, prompt.Payload) (string, error) {
		return "", errors.New("model exploded")
	}}
	orch := New(store, backend, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := orch.HandleTurn(ctx, "u1", "hello")
		var genErr *GenerationError
		require.ErrorAs(t, err, &genErr)
	}

	history, err := store.LoadConversation(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, history)
}

// failingSaveStore succeeds at everything except persistence.
type failingSaveStore struct {
	Store
}

func (s failingSaveStore) SaveConversation(context.Context, string, []models.Message) error {
	return errors.New("disk full")
}

func TestFailedPersistenceStillReturnsResponse(t *testing.T) {
	store := failingSaveStore{Store: testStore(t)}
	orch := New(store, fixedBackend("hi"), zap.NewNop())

	response, err := orch.HandleTurn(context.Background(), "u1", "hello")
	require.NoError(t, err)
	require.Equal(t, "hi", response)
}

func TestResetClearsAndIsIdempotent(t *testing.T) {
	store := testStore(t)
	orch := New(store, fixedBackend("hi"), zap.NewNop())
	ctx := context.Background()

	_, err := orch.HandleTurn(ctx, "u1", "hello")
	require.NoError(t, err)

	require.NoError(t, orch.Reset(ctx, "u1"))
	history, err := store.LoadConversation(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, history)

	require.NoError(t, orch.Reset(ctx, "u1"))
}

func TestConcurrentTurnsSameUserDoNotLoseUpdates(t *testing.T) {
	store := testStore(t)
	backend := &stubBackend{generate: func(context.Context, prompt.Payload) (string, error) {
		time.Sleep(10 * time.Millisecond)
		return "reply", nil
	}}
	orch := New(store, backend, zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, msg := range []string{"first", "second"} {
		wg.Add(1)
		go func(msg string) {
			defer wg.Done()
			_, err := orch.HandleTurn(ctx, "u1", msg)
			assert.NoError(t, err)
		}(msg)
	}
	wg.Wait()

	history, err := store.LoadConversation(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 4)

	// Each turn appended its user/agent pair intact, in some serial
	// order, and both user messages survived.
	var userContents []string
	for i, msg := range history {
		if i%2 == 0 {
			require.Equal(t, models.RoleUser, msg.Role)
			userContents = append(userContents, msg.Content)
		} else {
			require.Equal(t, models.RoleAgent, msg.Role)
		}
	}
	require.ElementsMatch(t, []string{"first", "second"}, userContents)
}

func TestConcurrentTurnsDifferentUsersRunIndependently(t *testing.T) {
	store := testStore(t)
	orch := New(store, fixedBackend("hi"), zap.NewNop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, userID := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := orch.HandleTurn(ctx, userID, "hello "+userID)
			assert.NoError(t, err)
		}(userID)
	}
	wg.Wait()

	for _, userID := range []string{"a", "b", "c", "d"} {
		history, err := store.LoadConversation(ctx, userID)
		require.NoError(t, err)
		require.Len(t, history, 2)
		require.Equal(t, "hello "+userID, history[0].Content)
	}
}
