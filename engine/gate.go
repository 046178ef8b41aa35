package engine

import (
	"strings"

	"nadja_ai/session"
)

// ReplyKind classifies a turn the engine has decided to answer.
type ReplyKind int

const (
	KindWake ReplyKind = iota
	KindNormal
)

// decide is the state gate: it answers whether a message should be replied
// to at all, and whether the reply is a scripted awakening or a normal turn.
// It is the only code that flips a session awake. Matching is lower-cased
// substring matching, so "Hey NADJA please respond" wakes her.
func (e *Engine) decide(message string, s *session.Session) (bool, ReplyKind) {
	msg := strings.ToLower(strings.TrimSpace(message))

	for _, phrase := range e.persona.WakePhrases {
		if strings.Contains(msg, phrase) {
			s.Wake()
			return true, KindWake
		}
	}
	if !s.Awake() {
		for _, kw := range e.persona.AddressKeywords {
			if strings.Contains(msg, kw) {
				s.Wake()
				return true, KindWake
			}
		}
		return false, KindNormal
	}
	// Awake is terminal until reset: everything gets a normal reply.
	return true, KindNormal
}
