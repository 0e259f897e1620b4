package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appplate "github.com/brailleforge/brailleforge/internal/application/plate"
	"github.com/brailleforge/brailleforge/internal/domain/assembly"
	"github.com/brailleforge/brailleforge/internal/infrastructure/csg"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/logging"
	"github.com/brailleforge/brailleforge/internal/infrastructure/monitoring/prometheus"
	httpiface "github.com/brailleforge/brailleforge/internal/interfaces/http"
	"github.com/brailleforge/brailleforge/internal/interfaces/http/handlers"
	platetypes "github.com/brailleforge/brailleforge/pkg/types/plate"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	asm := assembly.New([]assembly.Engine{csg.NewBSP()}, assembly.Config{}, nil)
	svc := appplate.NewService(asm, appplate.Options{
		FeatureWorkers: 4,
		MaxConcurrent:  2,
	}, nil, nil)

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "test",
		Subsystem: "router",
	}, logging.NewNopLogger())
	require.NoError(t, err)

	return httpiface.NewRouter(httpiface.RouterConfig{
		PlateHandler:   handlers.NewPlateHandler(svc, 1<<20, nil),
		HealthHandler:  handlers.NewHealthHandler("test"),
		Logger:         logging.NewNopLogger(),
		Metrics:        prometheus.NewAppMetrics(collector),
		MetricsHandler: collector.Handler(),
	})
}

func generateBody(t *testing.T) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(platetypes.GenerateRequest{
		Lines:       []string{"⠁⠃"},
		SourceLines: []string{"ab"},
		Settings: map[string]interface{}{
			"grid_columns": 5,
			"grid_rows":    2,
			"card_width":   40,
			"card_height":  30,
			"dot_segments": 8,
		},
	})
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func TestRouter_GenerateRoute(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/plates/generate", generateBody(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "model/stl", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "bsp", rec.Header().Get("X-Plate-Engine"))
}

func TestRouter_LegacyRoutesForcePlateType(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate_counter_plate_stl", generateBody(t)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "_counter_plate.stl")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/generate_braille_stl", generateBody(t)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "_braille.stl")
}

func TestRouter_PreviewRoute(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/plates/preview", generateBody(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	var stats platetypes.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.DotBosses)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	// A request must pass through the metrics middleware before scraping so
	// the counter series exists.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/plates/preview", generateBody(t)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_router_http_requests_total{method="POST",path="/api/v1/plates/preview",status_code="200"} 1`)
}

func TestRouter_UnknownRoute(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
