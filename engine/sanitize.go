package engine

import (
	"regexp"
	"strings"
)

const (
	maxReplyLen  = 250
	maxSentences = 3
)

var (
	disallowed = regexp.MustCompile(`[^\w\s.!?,'"\-:]`)
	whitespace = regexp.MustCompile(`\s+`)
	terminal   = regexp.MustCompile(`[.!?]+`)
)

// sanitize normalizes raw generated text into a bounded, well-punctuated
// reply. Returns ok=false when nothing survives the whitelist, which the
// caller treats as a generation failure. The clamp runs before the terminal
// punctuation check so the result always ends cleanly even when cut short.
func sanitize(raw string) (string, bool) {
	text := disallowed.ReplaceAllString(raw, "")
	text = strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
	if text == "" {
		return "", false
	}

	if parts := splitSentences(text); len(parts) > maxSentences {
		text = strings.Join(parts[:maxSentences], ". ")
	}
	if len(text) >= maxReplyLen {
		text = strings.TrimSpace(text[:maxReplyLen-1])
	}
	if !strings.ContainsRune(`.!?"'`, rune(text[len(text)-1])) {
		text += "!"
	}
	return text, true
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range terminal.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
