package intake

import (
	"strings"
	"unicode/utf8"

	"github.com/sif-medellin/sifgpt/internal/conversation"
)

const minClassifiableLen = 10

// Short acknowledgements that never warrant a fresh classification.
var acknowledgements = map[string]bool{
	"ok":       true,
	"sí":       true,
	"si":       true,
	"no":       true,
	"gracias":  true,
	"perfecto": true,
}

// Markers that signal the citizen is opening a new request mid-session.
var newTopicMarkers = []string{"nuevo", "otra", "también", "además", "diferente"}

// requiresFullClassification decides whether a turn needs the
// classification oracle or can be answered from accumulated context.
// Rules run in order; the first match wins. Trivial acknowledgements
// and continuations reuse the previous classification.
func requiresFullClassification(text string, conv *conversation.Context) bool {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	if utf8.RuneCountInString(trimmed) < minClassifiableLen || acknowledgements[lower] {
		return false
	}
	if len(conv.Turns) <= 1 {
		return true
	}
	for _, marker := range newTopicMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
