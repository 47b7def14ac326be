package prompt

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/DhruvJain7/ChatBot/internal/models"
)

// Record is one normalized message as a backend sees it: the role is
// already in the backend's own vocabulary.
type Record struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is the assembled input for one generation call. Flat-input
// backends read Text; structured backends read Messages. Both are
// derived from the same normalized record list.
type Payload struct {
	Kind     BackendKind
	Text     string
	Messages []Record
}

// Turn markers for the flat chat template, Gemma style.
const (
	startOfTurn = "<start_of_turn>"
	endOfTurn   = "<end_of_turn>"
)

const flatTemplate = `{{range .Messages}}{{$.Start}}{{.Role}}
{{.Content}}{{$.End}}
{{end}}{{$.Start}}model
`

var flatTmpl = template.Must(template.New("chat").Parse(flatTemplate))

// ErrUnsafeContent marks content that would break the flat template's
// role boundaries if rendered verbatim.
var ErrUnsafeContent = errors.New("content contains a turn marker")

// Assemble builds the full ordered list history ++ [newMsg], normalizes
// every role for the target backend, and renders the payload shape that
// backend expects. The history slice is never mutated; committing the
// extended list is the orchestrator's decision.
func Assemble(history []models.Message, newMsg models.Message, kind BackendKind) (Payload, error) {
	if err := newMsg.Validate(); err != nil {
		return Payload{}, err
	}

	records := make([]Record, 0, len(history)+1)
	for _, msg := range history {
		rec, err := normalizeMessage(msg, kind)
		if err != nil {
			return Payload{}, err
		}
		records = append(records, rec)
	}
	rec, err := normalizeMessage(newMsg, kind)
	if err != nil {
		return Payload{}, err
	}
	records = append(records, rec)

	payload := Payload{Kind: kind, Messages: records}
	if kind == BackendLocal {
		text, err := renderFlat(records)
		if err != nil {
			return Payload{}, err
		}
		payload.Text = text
	}
	return payload, nil
}

func normalizeMessage(msg models.Message, kind BackendKind) (Record, error) {
	label, err := Normalize(msg.Role, kind)
	if err != nil {
		return Record{}, err
	}
	return Record{Role: label, Content: msg.Content}, nil
}

// renderFlat produces the single templated string a local model
// consumes, ending in the cue that the agent speaks next. Content that
// embeds a turn marker is rejected so role boundaries stay unambiguous.
func renderFlat(records []Record) (string, error) {
	for _, rec := range records {
		if strings.Contains(rec.Content, startOfTurn) || strings.Contains(rec.Content, endOfTurn) {
			return "", fmt.Errorf("%w: %q", ErrUnsafeContent, rec.Role)
		}
	}

	var sb strings.Builder
	err := flatTmpl.Execute(&sb, struct {
		Messages []Record
		Start    string
		End      string
	}{Messages: records, Start: startOfTurn, End: endOfTurn})
	if err != nil {
		return "", fmt.Errorf("failed to render chat template: %w", err)
	}
	return sb.String(), nil
}
