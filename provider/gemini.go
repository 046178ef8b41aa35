package provider

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModels is the probe order: newest flash model first, older models
// as fallbacks for accounts that cannot reach it.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-1.5-flash",
	"gemini-1.5-pro",
}

const (
	probeTimeout = 15 * time.Second
	probePrompt  = "Reply with the single word: awake."

	// Sampling parameters for the Nadja voice. High temperature on purpose;
	// the sanitizer downstream bounds the damage.
	temperature     = 0.95
	topP            = 0.85
	topK            = 45
	maxOutputTokens = 200
)

// Gemini talks to the Google generative API through one probed model.
// Immutable after NewGemini returns.
type Gemini struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	modelID string
	logger  *slog.Logger
}

// NewGemini dials the API and probes candidates in order with a minimal test
// generation. The first model that answers with non-empty text is memoized
// for the life of the process. If every candidate fails, the returned adapter
// is permanently unavailable; there are no runtime re-probes.
func NewGemini(ctx context.Context, apiKey string, candidates []string, logger *slog.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		candidates = DefaultModels
	}
	g := &Gemini{client: client, logger: logger.With("component", "provider")}

	for _, id := range candidates {
		m := configureModel(client, id)
		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		text, err := generate(pctx, m, id, probePrompt)
		cancel()
		if err != nil {
			kind := Unknown
			var perr *Error
			if errors.As(err, &perr) {
				kind = perr.Kind
			}
			g.logger.Warn("model probe rejected candidate",
				"model", id, "kind", kind.String(), "error", err)
			continue
		}
		g.logger.Info("model probe selected candidate", "model", id, "reply", text)
		g.model = m
		g.modelID = id
		return g, nil
	}
	g.logger.Error("model probe exhausted all candidates, generation disabled",
		"candidates", strings.Join(candidates, ","))
	return g, nil
}

func configureModel(client *genai.Client, id string) *genai.GenerativeModel {
	m := client.GenerativeModel(id)
	m.SetTemperature(temperature)
	m.SetTopP(topP)
	m.SetTopK(topK)
	m.SetMaxOutputTokens(maxOutputTokens)
	return m
}

// Close releases the underlying API client.
func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) Available() bool { return g.model != nil }

func (g *Gemini) ModelID() string { return g.modelID }

// Generate issues one completion call against the probed model.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	if g.model == nil {
		return "", &Error{Kind: Unknown, Model: g.modelID, Err: errNoModel}
	}
	return generate(ctx, g.model, g.modelID, prompt)
}

var errNoModel = errors.New("no usable model selected at startup")

func generate(ctx context.Context, m *genai.GenerativeModel, id, prompt string) (string, error) {
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &Error{Kind: Classify(err), Model: id, Err: err}
	}
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &Error{Kind: Empty, Model: id}
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
