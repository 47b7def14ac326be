package models

import "errors"

// Role is the speaker category of a message at the orchestration layer,
// independent of any backend's own vocabulary for the same concept.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAgent
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

var ErrEmptyContent = errors.New("message content is empty")

// Validate checks the invariants every persisted message must hold.
func (m Message) Validate() error {
	if !m.Role.Valid() {
		return errors.New("unknown role: " + string(m.Role))
	}
	if m.Content == "" {
		return ErrEmptyContent
	}
	return nil
}
