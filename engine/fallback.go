package engine

import "math/rand"

// pickFallback returns a canned in-character line for the given reply kind:
// scripted awakenings for KindWake, degradation lines for KindNormal. It is
// the reply of last resort and never returns an empty string.
func (e *Engine) pickFallback(kind ReplyKind) string {
	lines := e.persona.FallbackLines
	if kind == KindWake {
		lines = e.persona.WakeLines
	}
	if len(lines) == 0 {
		return "The void whispers nothing back..."
	}
	return lines[rand.Intn(len(lines))]
}
