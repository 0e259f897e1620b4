package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/internal/interfaces/http/handlers"
	"github.com/brailleforge/brailleforge/pkg/errors"
)

func TestHealthHandler_Liveness(t *testing.T) {
	t.Parallel()
	h := handlers.NewHealthHandler("1.2.3")

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.LivenessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestHealthHandler_ReadinessWithoutCheckers(t *testing.T) {
	t.Parallel()
	h := handlers.NewHealthHandler("dev")

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handlers.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
}

func TestHealthHandler_ReadinessFailingChecker(t *testing.T) {
	t.Parallel()
	h := handlers.NewHealthHandler("dev",
		handlers.HealthCheckFunc{ComponentName: "ok", Fn: func(context.Context) error { return nil }},
		handlers.HealthCheckFunc{ComponentName: "bad", Fn: func(context.Context) error {
			return errors.New(errors.ErrCodeServiceUnavailable, "down")
		}},
	)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp handlers.ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "healthy", resp.Components["ok"].Status)
	assert.Equal(t, "unhealthy", resp.Components["bad"].Status)
	assert.Contains(t, resp.Components["bad"].Error, "down")
}
