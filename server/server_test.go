package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/agent"
	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/memory"
	"github.com/hupe1980/agentloop/model"
	"github.com/hupe1980/agentloop/runner"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, m model.Model, cfg config.ModelConfig, optFns ...func(o *Options)) *Server {
	t.Helper()

	a, err := agent.New(m, cfg, func(o *agent.Options) {
		o.Memory = memory.NewInMemoryStore()
	})
	require.NoError(t, err)

	return New(runner.New(a), a, optFns...)
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}

	return rec, out
}

func TestServer_Healthz(t *testing.T) {
	s := newTestServer(t, model.NewMockModel("mock", "test"), config.ModelConfig{Model: "m", APIKey: "k"})

	rec, body := do(t, s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_CreateThread(t *testing.T) {
	s := newTestServer(t, model.NewMockModel("mock", "test"), config.ModelConfig{Model: "m", APIKey: "k"})

	rec, body := do(t, s.Handler(), http.MethodPost, "/v1/threads", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, body["thread_id"])
}

func TestServer_TurnAndHistory(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	m.AddResponse("Hello", "Hi there")
	s := newTestServer(t, m, config.ModelConfig{Model: "m", APIKey: "k"})

	rec, body := do(t, s.Handler(), http.MethodPost, "/v1/threads/t1/turns", `{"input":"Hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "t1", body["thread_id"])
	assert.Equal(t, "Hi there", body["payload"])
	assert.Equal(t, float64(1), body["turns_used"])
	assert.Equal(t, []any{}, body["tool_invocations"])

	rec, body = do(t, s.Handler(), http.MethodGet, "/v1/threads/t1/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "Hello", msgs[0].(map[string]any)["content"])
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["role"])
	assert.Equal(t, "Hi there", msgs[1].(map[string]any)["content"])
}

func TestServer_StructuredInput(t *testing.T) {
	m := model.NewMockModel("mock", "test")
	s := newTestServer(t, m, config.ModelConfig{Model: "m", APIKey: "k"})

	rec, body := do(t, s.Handler(), http.MethodPost, "/v1/threads/t1/turns", `{"input":{"city":"Berlin"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `Mock response to: {"city":"Berlin"}`, body["payload"])
}

func TestServer_BadRequest(t *testing.T) {
	s := newTestServer(t, model.NewMockModel("mock", "test"), config.ModelConfig{Model: "m", APIKey: "k"})

	rec, body := do(t, s.Handler(), http.MethodPost, "/v1/threads/t1/turns", `{"input":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "invalid request body")
}

func TestServer_ErrorStatus(t *testing.T) {
	t.Run("configuration", func(t *testing.T) {
		m := model.NewMockModel("mock", "test")
		s := newTestServer(t, m, config.ModelConfig{Model: "m"})

		rec, body := do(t, s.Handler(), http.MethodPost, "/v1/threads/t1/turns", `{"input":"hi"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.NotEmpty(t, body["error"])
		assert.Equal(t, 0, m.Calls())
	})

	t.Run("transport", func(t *testing.T) {
		m := model.NewMockModel("mock", "test")
		m.QueueError(core.NewTransportError("upstream down", nil))
		s := newTestServer(t, m, config.ModelConfig{Model: "m", APIKey: "k"})

		rec, body := do(t, s.Handler(), http.MethodPost, "/v1/threads/t1/turns", `{"input":"hi"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, body["error"], "AI API Error")
	})
}

func TestServer_CORS(t *testing.T) {
	s := newTestServer(t, model.NewMockModel("mock", "test"), config.ModelConfig{Model: "m", APIKey: "k"}, func(o *Options) {
		o.CORSOrigins = []string{"https://app.example.com"}
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	s := newTestServer(t, model.NewMockModel("mock", "test"), config.ModelConfig{Model: "m", APIKey: "k"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(core.NewConfigurationError("x")))
	assert.Equal(t, http.StatusBadGateway, statusFor(core.NewTransportError("x", nil)))
	assert.Equal(t, http.StatusBadGateway, statusFor(core.NewToolResolutionError("x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.Canceled))
}
