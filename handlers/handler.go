// Package handlers is the thin HTTP layer over the turn engine: JSON
// decoding, status codes, CORS, and the health/status endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nadja_ai/engine"
)

const serviceVersion = "3.0-go"

type Handler struct {
	Engine *engine.Engine
	Logger *slog.Logger
}

// Router assembles the full route table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/", h.Home)
	r.Get("/health", h.Health)
	r.Post("/chat", h.Chat)
	r.Post("/reset/{user_id}", h.Reset)
	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":               "Endpoint not found",
			"available_endpoints": []string{"/chat", "/health", "/reset/{user_id}"},
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type chatRequest struct {
	Secret  string `json:"secret"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Response  string `json:"response"`
	Responded bool   `json:"responded"`
	AIUsed    bool   `json:"ai_used"`
	UserState string `json:"user_state"`
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}
	if req.UserID == "" {
		req.UserID = "unknown"
	}

	res, err := h.Engine.Handle(r.Context(), req.UserID, req.Message, req.Secret)
	switch {
	case errors.Is(err, engine.ErrUnauthorized):
		h.Logger.Warn("unauthorized chat request")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	case errors.Is(err, engine.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Empty message"})
		return
	case err != nil:
		h.Logger.Error("chat turn failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response:  res.Reply,
		Responded: res.Responded,
		AIUsed:    res.GenerationUsed,
		UserState: stateLabel(res.Awake),
	})
}

type resetRequest struct {
	Secret string `json:"secret"`
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")

	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON"})
		return
	}

	if err := h.Engine.Reset(userID, req.Secret); err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "reset",
		"message": fmt.Sprintf("Memory of %s has been erased from my eternal consciousness", userID),
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats := h.Engine.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "VAMPIRIC",
		"gemini_ready": stats.ProviderReady,
		"model":        stats.Model,
		"active_users": stats.Sessions,
		"awake_users":  stats.Awake,
		"server_time":  time.Now().Unix(),
	})
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	stats := h.Engine.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "alive",
		"service":           "Nadja Doll API",
		"version":           serviceVersion,
		"gemini_configured": stats.ProviderReady,
	})
}

func stateLabel(awake bool) string {
	if awake {
		return "awake"
	}
	return "asleep"
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
