package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DhruvJain7/ChatBot/internal/models"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    user_id TEXT PRIMARY KEY,
    messages TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

// Database persists one conversation per user as a JSON array of
// role/content records. It is the sole source of truth for history;
// there is no cache in front of it.
type Database struct {
	db     *sql.DB
	logger *zap.Logger
}

func New(dbPath string, logger *zap.Logger) (*Database, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open db at %s: %w", dbPath, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Database{db: db, logger: logger}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// LoadConversation returns the stored history for userID, or an empty
// slice if the key is absent. A record that cannot be decoded into a
// valid message sequence is logged and treated as absent: the user
// starts over rather than the request failing on unreadable state.
func (d *Database) LoadConversation(ctx context.Context, userID string) ([]models.Message, error) {
	var raw string
	err := d.db.QueryRowContext(ctx,
		`SELECT messages FROM conversations WHERE user_id = ?`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return []models.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation for %s: %w", userID, err)
	}

	var messages []models.Message
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		d.logger.Warn("discarding corrupt conversation record",
			zap.String("user_id", userID),
			zap.Error(err))
		return []models.Message{}, nil
	}
	for i, msg := range messages {
		if err := msg.Validate(); err != nil {
			d.logger.Warn("discarding structurally invalid conversation record",
				zap.String("user_id", userID),
				zap.Int("index", i),
				zap.Error(err))
			return []models.Message{}, nil
		}
	}
	return messages, nil
}

// SaveConversation replaces the whole stored history for userID in a
// single upsert, so a concurrent load sees either the old or the new
// sequence, never a partial one.
func (d *Database) SaveConversation(ctx context.Context, userID string, messages []models.Message) error {
	raw, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode conversation for %s: %w", userID, err)
	}

	_, err = d.db.ExecContext(ctx, `
        INSERT INTO conversations (user_id, messages, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(user_id) DO UPDATE SET
            messages = excluded.messages,
            updated_at = CURRENT_TIMESTAMP`,
		userID, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save conversation for %s: %w", userID, err)
	}
	return nil
}

// DeleteConversation removes the history for userID. Deleting an
// absent key succeeds silently.
func (d *Database) DeleteConversation(ctx context.Context, userID string) error {
	if _, err := d.db.ExecContext(ctx,
		`DELETE FROM conversations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete conversation for %s: %w", userID, err)
	}
	return nil
}
