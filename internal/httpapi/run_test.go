package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/httpapi"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

func newTestServer() http.Handler {
	reg := executor.NewRegistry()
	reg.Register(workflow.NodeGPT, executor.ExecutorFunc(func(ctx context.Context, req executor.Request) adapter.Result {
		return adapter.AIText("ok")
	}))
	eng := executor.New(reg)
	r := chi.NewRouter()
	httpapi.NewHandler(eng, nil).Mount(r)
	return r
}

func TestHandleRun_RequiresUserHeader(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`{"nodes":[]}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleRun_RejectsInvalidBody(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(`not json`))
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRun_ExecutesAndReturnsResults(t *testing.T) {
	srv := newTestServer()
	body := `{"nodes":[{"id":"a","kind":"gpt"}],"edges":[]}`
	req := httptest.NewRequest(http.MethodPost, "/run", strings.NewReader(body))
	req.Header.Set("X-User-ID", "u1")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var decoded struct {
		Message map[string]string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Equal(t, "ok", decoded.Message["a"])
}
