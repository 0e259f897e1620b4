package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Plate generation
	PlatesGeneratedTotal     CounterVec
	PlateGenerationDuration  HistogramVec
	PlatePlacements          HistogramVec
	PlateTriangles           HistogramVec
	PlateCapacityRejectsTotal CounterVec

	// Assembly
	AssemblyDuration       HistogramVec
	AssemblyFallbacksTotal CounterVec
	AssemblySkippedTools   CounterVec
	WatertightOutcomes     CounterVec
	HoleRepairsTotal       CounterVec

	// Export
	ExportDuration HistogramVec
	ExportBytes    HistogramVec

	// System health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAssemblyDurationBuckets = []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultSizeBuckets             = []float64{1000, 10000, 100000, 1000000, 10000000, 100000000}
	DefaultCountBuckets            = []float64{0, 10, 50, 100, 250, 500, 1000, 5000}
	DefaultTriangleBuckets         = []float64{100, 1000, 5000, 20000, 50000, 200000, 1000000}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Plate generation
	m.PlatesGeneratedTotal = collector.RegisterCounter("plates_generated_total", "Generated plates", "kind", "shape", "status")
	m.PlateGenerationDuration = collector.RegisterHistogram("plate_generation_duration_seconds", "End-to-end plate generation duration", DefaultAssemblyDurationBuckets, "kind", "shape")
	m.PlatePlacements = collector.RegisterHistogram("plate_placements", "Feature placements per plate", DefaultCountBuckets, "kind")
	m.PlateTriangles = collector.RegisterHistogram("plate_triangles", "Triangles in the final plate mesh", DefaultTriangleBuckets, "kind")
	m.PlateCapacityRejectsTotal = collector.RegisterCounter("plate_capacity_rejects_total", "Requests rejected for exceeding grid capacity", "kind")

	// Assembly
	m.AssemblyDuration = collector.RegisterHistogram("assembly_duration_seconds", "Boolean assembly duration", DefaultAssemblyDurationBuckets, "engine")
	m.AssemblyFallbacksTotal = collector.RegisterCounter("assembly_fallbacks_total", "Assemblies that left the primary path", "engine")
	m.AssemblySkippedTools = collector.RegisterCounter("assembly_skipped_tools_total", "Subtractive primitives dropped by fallback", "engine")
	m.WatertightOutcomes = collector.RegisterCounter("watertight_outcomes_total", "Final watertight audit verdicts", "outcome")
	m.HoleRepairsTotal = collector.RegisterCounter("hole_repairs_total", "Boundary loops closed by mesh repair")

	// Export
	m.ExportDuration = collector.RegisterHistogram("export_duration_seconds", "STL encoding duration", DefaultHTTPDurationBuckets, "format")
	m.ExportBytes = collector.RegisterHistogram("export_bytes", "Exported file size", DefaultSizeBuckets, "format")

	// System health
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// RegisterAppMetrics is an alias for NewAppMetrics.
func RegisterAppMetrics(collector MetricsCollector) *AppMetrics {
	return NewAppMetrics(collector)
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, respSize int64) {
	status := strconv.Itoa(statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordPlateGenerated(metrics *AppMetrics, kind, shape string, success bool, duration time.Duration, placements, triangles int) {
	status := "success"
	if !success {
		status = "failure"
	}
	metrics.PlatesGeneratedTotal.WithLabelValues(kind, shape, status).Inc()
	metrics.PlateGenerationDuration.WithLabelValues(kind, shape).Observe(duration.Seconds())
	if success {
		metrics.PlatePlacements.WithLabelValues(kind).Observe(float64(placements))
		metrics.PlateTriangles.WithLabelValues(kind).Observe(float64(triangles))
	}
}

func RecordAssembly(metrics *AppMetrics, engine string, duration time.Duration, degraded bool, skippedTools, repairedHoles int, watertight bool) {
	if engine == "" {
		engine = "none"
	}
	metrics.AssemblyDuration.WithLabelValues(engine).Observe(duration.Seconds())
	if degraded {
		metrics.AssemblyFallbacksTotal.WithLabelValues(engine).Inc()
	}
	if skippedTools > 0 {
		metrics.AssemblySkippedTools.WithLabelValues(engine).Add(float64(skippedTools))
	}
	if repairedHoles > 0 {
		metrics.HoleRepairsTotal.WithLabelValues().Add(float64(repairedHoles))
	}
	outcome := "watertight"
	if !watertight {
		outcome = "leaky"
	}
	metrics.WatertightOutcomes.WithLabelValues(outcome).Inc()
}

func RecordExport(metrics *AppMetrics, format string, duration time.Duration, size int64) {
	metrics.ExportDuration.WithLabelValues(format).Observe(duration.Seconds())
	metrics.ExportBytes.WithLabelValues(format).Observe(float64(size))
}

func RecordError(metrics *AppMetrics, component, code string) {
	metrics.ErrorsTotal.WithLabelValues(component, code).Inc()
}
