package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/alikamatu/medi-rides-sub003/internal/common/telemetry"
)

var (
	metricsOnce          sync.Once
	httpRequestsTotal    metric.Int64Counter
	httpRequestDuration  metric.Float64Histogram
	httpRequestsInFlight metric.Int64UpDownCounter
)

func initMetrics() {
	metricsOnce.Do(func() {
		if telemetry.Meter == nil {
			return
		}

		var err error
		httpRequestsTotal, err = telemetry.Meter.Int64Counter(
			"http.server.request.count",
			metric.WithDescription("Total number of HTTP requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			panic(err)
		}

		httpRequestDuration, err = telemetry.Meter.Float64Histogram(
			"http.server.request.duration",
			metric.WithDescription("HTTP request latency"),
			metric.WithUnit("s"),
		)
		if err != nil {
			panic(err)
		}

		httpRequestsInFlight, err = telemetry.Meter.Int64UpDownCounter(
			"http.server.request.active",
			metric.WithDescription("Number of active HTTP requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			panic(err)
		}
	})
}

// shouldSkipMetrics returns true for paths that would only add noise.
func shouldSkipMetrics(path string) bool {
	skipPaths := []string{"/metrics", "/health", "/ping"}
	for _, skip := range skipPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

// HTTPMetrics records request count, latency and in-flight gauge per
// chi route pattern.
func HTTPMetrics(serviceName string) func(next http.Handler) http.Handler {
	initMetrics()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipMetrics(r.URL.Path) || httpRequestsTotal == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ctx := r.Context()

			routePattern := chi.RouteContext(ctx).RoutePattern()
			if routePattern == "" {
				routePattern = r.URL.Path
			}

			attrs := []attribute.KeyValue{
				attribute.String("service.name", serviceName),
				attribute.String("http.method", r.Method),
				attribute.String("http.route", routePattern),
			}

			httpRequestsInFlight.Add(ctx, 1, metric.WithAttributes(attrs...))
			defer httpRequestsInFlight.Add(ctx, -1, metric.WithAttributes(attrs...))

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			attrsWithStatus := append(attrs, attribute.String("http.status_code", strconv.Itoa(ww.statusCode)))

			httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrsWithStatus...))
			httpRequestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrsWithStatus...))
		})
	}
}

// ShouldSkipTrace mirrors shouldSkipMetrics for the otelhttp filter.
func ShouldSkipTrace(path string) bool {
	return shouldSkipMetrics(path)
}
