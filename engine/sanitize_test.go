package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStripsDisallowedRunes(t *testing.T) {
	out, ok := sanitize("Blood* and <darkness> @eternal #night; forever~")
	require.True(t, ok)
	for _, r := range `*<>@#;~` {
		assert.NotContains(t, out, string(r))
	}
	assert.Contains(t, out, "Blood and darkness")
}

func TestSanitizeCollapsesWhitespace(t *testing.T) {
	out, ok := sanitize("  The   night \n\t is   eternal.  ")
	require.True(t, ok)
	assert.Equal(t, "The night is eternal.", out)
}

func TestSanitizeEmptyAfterStripping(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t", "@#$%^&*()<>", "***"} {
		_, ok := sanitize(raw)
		assert.False(t, ok, "raw %q must signal fallback", raw)
	}
}

func TestSanitizeClampsSentences(t *testing.T) {
	out, ok := sanitize("One sentence! Two sentences? Three sentences. Four sentences. Five sentences.")
	require.True(t, ok)
	assert.Equal(t, "One sentence. Two sentences. Three sentences!", out)
}

func TestSanitizeAppendsTerminalPunctuation(t *testing.T) {
	out, ok := sanitize("I am Nadja of Antipaxos")
	require.True(t, ok)
	assert.Equal(t, "I am Nadja of Antipaxos!", out)
}

func TestSanitizeKeepsExistingTerminator(t *testing.T) {
	for _, raw := range []string{"Begone.", "Begone!", "Begone?", `He said "begone"`, "It is Laszlo's'"} {
		out, ok := sanitize(raw)
		require.True(t, ok)
		assert.Equal(t, raw, out)
	}
}

func TestSanitizeTruncatesLongText(t *testing.T) {
	out, ok := sanitize("My tale of woe begins " + strings.Repeat("a", 600))
	require.True(t, ok)
	assert.LessOrEqual(t, len(out), maxReplyLen)
}

// For any input, a non-null result is bounded, whitelisted and properly
// terminated.
func TestSanitizeProperties(t *testing.T) {
	inputs := []string{
		"ordinary reply.",
		strings.Repeat("dramatic woe! ", 100),
		"no punctuation at all " + strings.Repeat("x", 300),
		"unicode víctims — em-dash café 🦇 removed",
		"A! B? C. D! E? F.",
		"   leading and trailing   ",
		"quoted \"ending\"",
	}
	for _, raw := range inputs {
		out, ok := sanitize(raw)
		if !ok {
			continue
		}
		assert.LessOrEqual(t, len(out), maxReplyLen, "input %q", raw)
		assert.NotEmpty(t, out)
		last := out[len(out)-1]
		assert.Contains(t, `.!?"'`, string(last), "input %q output %q", raw, out)
		assert.False(t, disallowed.MatchString(out), "input %q leaked disallowed runes: %q", raw, out)
	}
}
