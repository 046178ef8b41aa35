package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nadja_ai/provider"
)

func TestFallbackNeverEmpty(t *testing.T) {
	e := testEngine(provider.Unconfigured{})
	for i := 0; i < 200; i++ {
		assert.NotEmpty(t, e.pickFallback(KindNormal))
		assert.NotEmpty(t, e.pickFallback(KindWake))
	}
}

func TestFallbackDrawsFromKindPool(t *testing.T) {
	e := testEngine(provider.Unconfigured{})
	wake := toSet(e.persona.WakeLines)
	normal := toSet(e.persona.FallbackLines)

	for i := 0; i < 100; i++ {
		assert.Contains(t, wake, e.pickFallback(KindWake))
		assert.Contains(t, normal, e.pickFallback(KindNormal))
	}
}

func TestFallbackEmptyPoolStillAnswers(t *testing.T) {
	e := testEngine(provider.Unconfigured{})
	e.persona.WakeLines = nil
	e.persona.FallbackLines = nil

	assert.NotEmpty(t, e.pickFallback(KindWake))
	assert.NotEmpty(t, e.pickFallback(KindNormal))
}

func toSet(lines []string) map[string]struct{} {
	out := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		out[l] = struct{}{}
	}
	return out
}
