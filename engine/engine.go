// Package engine is the conversational turn engine: it gates incoming
// messages through the wake state machine, keeps the bounded per-user
// transcript, builds prompts, calls the generation provider, and sanitizes
// or falls back before anything reaches the caller.
package engine

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"nadja_ai/prompts"
	"nadja_ai/provider"
	"nadja_ai/session"
)

var (
	ErrUnauthorized = errors.New("secret mismatch")
	ErrEmptyMessage = errors.New("empty message")
)

// GenerateTimeout bounds one provider call so a slow backend cannot hold a
// session lock indefinitely.
const GenerateTimeout = 30 * time.Second

// Result is the outcome of one handled turn.
type Result struct {
	Reply string
	// Responded is false when the gate suppressed the message (asleep, not
	// addressed). That is a defined outcome, not an error.
	Responded bool
	// GenerationUsed reports whether Reply came from the provider rather
	// than a canned line.
	GenerationUsed bool
	Awake          bool
}

// Stats is the read-only snapshot served by the health endpoint.
type Stats struct {
	ProviderReady bool
	Model         string
	Sessions      int
	Awake         int
}

// Engine orchestrates one turn at a time per user. Concurrent requests for
// different users proceed in parallel; requests for the same user serialize
// on the session's turn lock.
type Engine struct {
	secret   string
	persona  prompts.Persona
	provider provider.Provider
	sessions *session.Manager
	logger   *slog.Logger
}

func New(secret string, persona prompts.Persona, p provider.Provider, logger *slog.Logger) *Engine {
	return &Engine{
		secret:   secret,
		persona:  persona,
		provider: p,
		sessions: session.NewManager(),
		logger:   logger.With("component", "engine"),
	}
}

// Handle runs one chat turn. Secret and message validation happen before any
// session mutation. The returned error is ErrUnauthorized, ErrEmptyMessage,
// or nil; provider failures never escape, they degrade to fallback lines.
func (e *Engine) Handle(ctx context.Context, userID, message, secret string) (Result, error) {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(e.secret)) != 1 {
		return Result{}, ErrUnauthorized
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return Result{}, ErrEmptyMessage
	}

	s := e.sessions.Get(userID)
	s.Lock()
	defer s.Unlock()

	respond, kind := e.decide(message, s)
	if !respond {
		// Observed but suppressed: she is asleep and was not addressed.
		// No history mutation, no provider call.
		e.logger.Info("message suppressed", "user", userID)
		turnsTotal.WithLabelValues(outcomeSuppressed).Inc()
		return Result{Responded: false, Awake: s.Awake()}, nil
	}

	s.Append(session.Turn{Speaker: session.User, Content: message})

	var reply string
	aiUsed := false
	switch kind {
	case KindWake:
		reply = e.pickFallback(KindWake)
		turnsTotal.WithLabelValues(outcomeWake).Inc()
	default:
		reply, aiUsed = e.generateReply(ctx, s, message)
	}

	s.Append(session.Turn{Speaker: session.Assistant, Content: reply})

	return Result{
		Reply:          reply,
		Responded:      true,
		GenerationUsed: aiUsed,
		Awake:          s.Awake(),
	}, nil
}

// generateReply asks the provider for an in-character line and sanitizes it.
// Any failure along the way degrades to a canned fallback.
func (e *Engine) generateReply(ctx context.Context, s *session.Session, message string) (string, bool) {
	if !e.provider.Available() {
		e.logger.Warn("provider unavailable, using fallback")
		turnsTotal.WithLabelValues(outcomeFallback).Inc()
		return e.pickFallback(KindNormal), false
	}

	// History already contains the inbound turn; the builder renders prior
	// turns, so pass everything before it.
	history := s.History()
	prompt := prompts.Build(e.persona, history[:len(history)-1], message, false)

	gctx, cancel := context.WithTimeout(ctx, GenerateTimeout)
	defer cancel()

	start := time.Now()
	raw, err := e.provider.Generate(gctx, prompt)
	generateSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := provider.Unknown
		var perr *provider.Error
		if errors.As(err, &perr) {
			kind = perr.Kind
		}
		e.logger.Error("generation failed", "kind", kind.String(), "error", err)
		providerErrors.WithLabelValues(kind.String()).Inc()
		turnsTotal.WithLabelValues(outcomeFallback).Inc()
		return e.pickFallback(KindNormal), false
	}

	clean, ok := sanitize(raw)
	if !ok {
		e.logger.Warn("generated text empty after sanitizing")
		providerErrors.WithLabelValues(provider.Empty.String()).Inc()
		turnsTotal.WithLabelValues(outcomeFallback).Inc()
		return e.pickFallback(KindNormal), false
	}

	turnsTotal.WithLabelValues(outcomeGenerated).Inc()
	return clean, true
}

// Reset discards the user's session: history gone, state back to asleep.
// Resetting an unknown user succeeds; reset is idempotent.
func (e *Engine) Reset(userID, secret string) error {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(e.secret)) != 1 {
		return ErrUnauthorized
	}
	e.sessions.Remove(userID)
	e.logger.Info("session reset", "user", userID)
	return nil
}

// Stats reports provider readiness and session counts without touching any
// session state.
func (e *Engine) Stats() Stats {
	return Stats{
		ProviderReady: e.provider.Available(),
		Model:         e.provider.ModelID(),
		Sessions:      e.sessions.Count(),
		Awake:         e.sessions.AwakeCount(),
	}
}
