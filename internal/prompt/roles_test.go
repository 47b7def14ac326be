package prompt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DhruvJain7/ChatBot/internal/models"
)

func TestNormalizeCoversEveryCombination(t *testing.T) {
	kinds := []BackendKind{BackendLocal, BackendOpenAI, BackendGemini}
	roles := []models.Role{models.RoleUser, models.RoleAgent}

	for _, kind := range kinds {
		for _, role := range roles {
			label, err := Normalize(role, kind)
			require.NoError(t, err, "kind=%s role=%s", kind, role)
			require.NotEmpty(t, label)
		}
	}
}

func TestNormalizeAgentLabels(t *testing.T) {
	tests := []struct {
		kind BackendKind
		want string
	}{
		{BackendLocal, "model"},
		{BackendGemini, "model"},
		{BackendOpenAI, "assistant"},
	}
	for _, tt := range tests {
		label, err := Normalize(models.RoleAgent, tt.kind)
		require.NoError(t, err)
		require.Equal(t, tt.want, label, "kind=%s", tt.kind)
	}
}

func TestNormalizeUnknownKind(t *testing.T) {
	_, err := Normalize(models.RoleAgent, BackendKind("mystery"))
	require.Error(t, err)
}

func TestParseBackendKind(t *testing.T) {
	for _, s := range []string{"local", "openai", "gemini"} {
		kind, err := ParseBackendKind(s)
		require.NoError(t, err)
		require.Equal(t, BackendKind(s), kind)
	}

	_, err := ParseBackendKind("claude")
	require.Error(t, err)
}
