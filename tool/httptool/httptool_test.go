package httptool

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentloop/core"
	"github.com/hupe1980/agentloop/tool"
	"github.com/hupe1980/agentloop/transport"
)

func newToolContext() *core.ToolContext {
	return core.NewToolContext(context.Background(), "thread-1", "call-1", "weather", nil)
}

func TestTool_Call_SubstitutesURLAndHeaders(t *testing.T) {
	var gotPath, gotQuery, gotHeader, gotMethod string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotHeader = r.Header.Get("X-City")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"temp":21}`))
	}))
	defer srv.Close()

	ht, err := New(Config{
		Name:    "weather",
		URL:     srv.URL + "/weather/${user.id}?q=${city}",
		Headers: map[string]string{"X-City": "${city}"},
	})
	require.NoError(t, err)

	out, err := ht.Call(newToolContext(), map[string]any{
		"city": "Berlin",
		"user": map[string]any{"id": 7.0},
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/weather/7", gotPath)
	assert.Equal(t, "Berlin", gotQuery)
	assert.Equal(t, "Berlin", gotHeader)

	res := out.(map[string]any)
	assert.Equal(t, 200, res["status"])
	assert.Equal(t, map[string]any{"temp": 21.0}, res["data"])
	assert.Equal(t, "application/json", res["headers"].(map[string]string)["content-type"])
}

func TestTool_Call_JSONBody(t *testing.T) {
	var gotBody, gotType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte("created"))
	}))
	defer srv.Close()

	ht, err := New(Config{
		Name:   "create",
		Method: "post",
		URL:    srv.URL,
		Body:   `{"title":"${title}"}`,
	})
	require.NoError(t, err)

	out, err := ht.Call(newToolContext(), map[string]any{"title": "hello"})
	require.NoError(t, err)

	assert.Equal(t, `{"title":"hello"}`, gotBody)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "created", out.(map[string]any)["data"])
}

func TestTool_Call_TextBody(t *testing.T) {
	var gotType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	ht, err := New(Config{Name: "note", Method: http.MethodPut, URL: srv.URL, Body: "note: ${text}"})
	require.NoError(t, err)

	_, err = ht.Call(newToolContext(), map[string]any{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", gotType)
}

func TestTool_Call_GetSendsNoBody(t *testing.T) {
	var gotLen int64 = -2

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLen = r.ContentLength
	}))
	defer srv.Close()

	ht, err := New(Config{Name: "get", URL: srv.URL, Body: `{"ignored":true}`})
	require.NoError(t, err)

	_, err = ht.Call(newToolContext(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gotLen)
}

func TestTool_Call_NonSuccessStatusIsData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such city"}`))
	}))
	defer srv.Close()

	ht, err := New(Config{Name: "weather", URL: srv.URL})
	require.NoError(t, err)

	out, err := ht.Call(newToolContext(), nil)
	require.NoError(t, err)

	res := out.(map[string]any)
	assert.Equal(t, 404, res["status"])
	assert.Equal(t, map[string]any{"error": "no such city"}, res["data"])
}

func TestTool_Call_TransportFailure(t *testing.T) {
	failing := transport.Func(func(ctx context.Context, req *transport.Request) (*transport.Response, error) {
		return nil, errors.New("connection refused")
	})

	ht, err := New(Config{Name: "weather", URL: "http://unreachable"}, func(o *Options) {
		o.Transport = failing
	})
	require.NoError(t, err)

	_, err = ht.Call(newToolContext(), nil)
	require.Error(t, err)

	var toolErr *tool.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, tool.CodeExecution, toolErr.Code)
	assert.ErrorIs(t, err, core.ErrToolExecution)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{URL: "http://x"})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = New(Config{Name: "x"})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	ht, err := New(Config{Name: "x", URL: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, "HTTP GET http://x", ht.Description())
	assert.Equal(t, "object", ht.Parameters()["type"])
}

func TestDecode(t *testing.T) {
	cfg, err := Decode(map[string]any{
		"name":    "create",
		"method":  "POST",
		"url":     "http://api/items",
		"headers": map[string]any{"Authorization": "Bearer ${token}"},
		"body":    map[string]any{"title": "${title}"},
		"timeout": "5s",
	})
	require.NoError(t, err)

	assert.Equal(t, "create", cfg.Name)
	assert.Equal(t, "Bearer ${token}", cfg.Headers["Authorization"])
	assert.Equal(t, `{"title":"${title}"}`, cfg.Body)
	assert.Equal(t, "5s", cfg.Timeout.String())

	_, err = Decode(map[string]any{"headers": []any{1, 2}})
	assert.ErrorIs(t, err, core.ErrConfiguration)
}
