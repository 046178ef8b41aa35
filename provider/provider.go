// Package provider abstracts the external text-generation backend. The
// concrete Gemini adapter lives in gemini.go; Unconfigured stands in when no
// API key is present so callers never branch on nil.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind categorizes a provider failure. Provider failures are expected,
// frequent outcomes; callers degrade to canned replies rather than surfacing
// them.
type Kind int

const (
	Unknown Kind = iota
	Auth
	Quota
	RateLimit
	Timeout
	Empty
)

func (k Kind) String() string {
	switch k {
	case Auth:
		return "auth"
	case Quota:
		return "quota"
	case RateLimit:
		return "rate_limit"
	case Timeout:
		return "timeout"
	case Empty:
		return "empty"
	default:
		return "unknown"
	}
}

// Error is the single error type Generate returns.
type Error struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s", e.Model, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Model, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Provider is the generation backend seen by the engine. Implementations
// must be safe for concurrent use.
type Provider interface {
	// Generate issues exactly one completion call for prompt. No retries;
	// the caller's context bounds the call. Failures are always *Error.
	Generate(ctx context.Context, prompt string) (string, error)

	// Available reports whether the startup probe selected a working model.
	Available() bool

	// ModelID returns the probed model identifier, or "" if unavailable.
	ModelID() string
}

// Classify maps a transport error onto a Kind. All substring matching on
// provider error text lives here and nowhere else.
func Classify(err error) Kind {
	if err == nil {
		return Unknown
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Timeout
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 401, 403:
			return Auth
		case 429:
			if strings.Contains(strings.ToLower(gerr.Message), "quota") {
				return Quota
			}
			return RateLimit
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "unauthorized") || strings.Contains(msg, "permission denied") || strings.Contains(msg, "unauthenticated"):
		return Auth
	case strings.Contains(msg, "quota"):
		return Quota
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "resource exhausted") || strings.Contains(msg, "429"):
		return RateLimit
	case strings.Contains(msg, "deadline") || strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return Timeout
	default:
		return Unknown
	}
}

// Unconfigured is the provider used when no API key is set. It is
// permanently unavailable and fails every generation deterministically.
type Unconfigured struct{}

func (Unconfigured) Generate(context.Context, string) (string, error) {
	return "", &Error{Kind: Unknown, Err: errors.New("no provider configured")}
}

func (Unconfigured) Available() bool { return false }

func (Unconfigured) ModelID() string { return "" }
