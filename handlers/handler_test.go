package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nadja_ai/engine"
	"nadja_ai/prompts"
	"nadja_ai/provider"
)

const testSecret = "NADJAS_DOLL_SECRET_666"

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	eng := engine.New(testSecret, prompts.Default(), provider.Unconfigured{}, logger)
	h := &Handler{Engine: eng, Logger: logger}
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestChatUnauthorized(t *testing.T) {
	srv := testServer(t)
	resp, body := postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": "wrong", "message": "hey nadja", "user_id": "u1",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestChatEmptyMessage(t *testing.T) {
	srv := testServer(t)
	resp, body := postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": testSecret, "message": "   ", "user_id": "u1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Empty message", body["error"])
}

func TestChatMalformedJSON(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatSuppressedWhileAsleep(t *testing.T) {
	srv := testServer(t)
	resp, body := postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": testSecret, "message": "hi", "user_id": "u1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["responded"])
	assert.Equal(t, "asleep", body["user_state"])
	assert.Equal(t, "", body["response"])
}

func TestChatWake(t *testing.T) {
	srv := testServer(t)
	resp, body := postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": testSecret, "message": "hey nadja", "user_id": "u1",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["responded"])
	assert.Equal(t, "awake", body["user_state"])
	assert.Equal(t, false, body["ai_used"])
	assert.NotEmpty(t, body["response"])

	wakeLines := map[string]struct{}{}
	for _, l := range prompts.Default().WakeLines {
		wakeLines[l] = struct{}{}
	}
	assert.Contains(t, wakeLines, body["response"])
}

func TestChatMissingUserIDDefaultsToUnknown(t *testing.T) {
	srv := testServer(t)
	resp, _ := postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": testSecret, "message": "hey nadja",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The anonymous session shows up in health.
	hresp, hbody := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, hresp.StatusCode)
	assert.Equal(t, float64(1), hbody["active_users"])
	assert.Equal(t, float64(1), hbody["awake_users"])
}

func TestResetFlow(t *testing.T) {
	srv := testServer(t)

	_, _ = postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": testSecret, "message": "hey nadja", "user_id": "resident",
	})

	resp, body := postJSON(t, srv.URL+"/reset/resident", map[string]string{"secret": testSecret})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reset", body["status"])
	assert.Contains(t, body["message"], "resident")

	// Idempotent: same outcome the second time.
	resp2, body2 := postJSON(t, srv.URL+"/reset/resident", map[string]string{"secret": testSecret})
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, body, body2)

	// Back asleep: a plain message is suppressed again.
	_, chat := postJSON(t, srv.URL+"/chat", map[string]string{
		"secret": testSecret, "message": "hello", "user_id": "resident",
	})
	assert.Equal(t, false, chat["responded"])
	assert.Equal(t, "asleep", chat["user_state"])
}

func TestResetUnauthorized(t *testing.T) {
	srv := testServer(t)
	resp, body := postJSON(t, srv.URL+"/reset/resident", map[string]string{"secret": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", body["error"])
}

func TestHealth(t *testing.T) {
	srv := testServer(t)
	resp, body := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "VAMPIRIC", body["status"])
	assert.Equal(t, false, body["gemini_ready"])
	assert.Equal(t, float64(0), body["active_users"])
	assert.NotNil(t, body["server_time"])
}

func TestHome(t *testing.T) {
	srv := testServer(t)
	resp, body := getJSON(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
	assert.Equal(t, "Nadja Doll API", body["service"])
}

func TestNotFound(t *testing.T) {
	srv := testServer(t)
	resp, body := getJSON(t, srv.URL+"/nowhere")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Endpoint not found", body["error"])
}

func TestCORSPreflight(t *testing.T) {
	srv := testServer(t)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/chat", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsExposed(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}
