package embedding

import (
	"strings"
	"unicode/utf8"
)

// BuildInput joins title and description with a blank line. Either part may
// be empty; when both are, the result is empty and the job must not be sent
// to a provider.
func BuildInput(title, description string) string {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	switch {
	case title == "":
		return description
	case description == "":
		return title
	}
	return title + "\n\n" + description
}

// Truncate cuts text to at most maxRunes runes. The cut point depends only on
// the text and the limit, so the same job always yields the same input.
// This is our policy for over-long postings; providers are never asked to
// reject them.
func Truncate(text string, maxRunes int) (string, bool) {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text, false
	}
	n := 0
	for i := range text {
		if n == maxRunes {
			return strings.TrimRightFunc(text[:i], isSpace), true
		}
		n++
	}
	return text, false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
