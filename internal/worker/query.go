package worker

import (
	"strings"

	"sherpa/internal/constants"
)

// ExtractQuery derives the backend query from a message text by dropping
// leading-or-anywhere mention tokens ("<@U...>") and trimming. A text that is
// nothing but mentions falls back to the original unmodified text, so the
// backend never sees an empty query.
func ExtractQuery(text string) string {
	words := strings.Fields(text)
	kept := make([]string, 0, len(words))
	for _, word := range words {
		if strings.HasPrefix(word, constants.MentionPrefix) {
			continue
		}
		kept = append(kept, word)
	}

	query := strings.TrimSpace(strings.Join(kept, " "))
	if query == "" {
		return text
	}
	return query
}
