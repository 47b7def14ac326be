package prompt

import (
	"fmt"

	"github.com/DhruvJain7/ChatBot/internal/models"
)

// BackendKind identifies which generation provider a turn targets. It
// determines both the role labels and the payload shape a backend
// expects.
type BackendKind string

const (
	// BackendLocal is a locally hosted model served behind an
	// OpenAI-compatible completion endpoint. It consumes a flat
	// chat-template string and labels the agent "model".
	BackendLocal BackendKind = "local"
	// BackendOpenAI is a remote OpenAI-compatible chat API. It
	// consumes structured messages and labels the agent "assistant".
	BackendOpenAI BackendKind = "openai"
	// BackendGemini is the Gemini API. It consumes structured
	// messages and labels the agent "model".
	BackendGemini BackendKind = "gemini"
)

func ParseBackendKind(s string) (BackendKind, error) {
	switch BackendKind(s) {
	case BackendLocal, BackendOpenAI, BackendGemini:
		return BackendKind(s), nil
	}
	return "", fmt.Errorf("unknown backend kind %q", s)
}

// roleLabels is the single place backend role vocabularies are
// defined. Adding a backend kind means adding its row here.
var roleLabels = map[BackendKind]map[models.Role]string{
	BackendLocal: {
		models.RoleUser:  "user",
		models.RoleAgent: "model",
	},
	BackendOpenAI: {
		models.RoleUser:  "user",
		models.RoleAgent: "assistant",
	},
	BackendGemini: {
		models.RoleUser:  "user",
		models.RoleAgent: "model",
	},
}

// Normalize translates an internal role into the label the given
// backend expects. Every Role × BackendKind combination is defined;
// an unmapped combination is a programming error and is returned as
// one rather than letting a raw internal label reach a backend.
func Normalize(role models.Role, kind BackendKind) (string, error) {
	labels, ok := roleLabels[kind]
	if !ok {
		return "", fmt.Errorf("no role mapping for backend kind %q", kind)
	}
	label, ok := labels[role]
	if !ok {
		return "", fmt.Errorf("no %q label for backend kind %q", role, kind)
	}
	return label, nil
}
