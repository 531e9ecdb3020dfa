package telemetry

import (
	"context"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	// Tracer is the global tracer instance
	Tracer trace.Tracer
	// Meter is the global meter instance used by the metrics middleware
	Meter metric.Meter

	loggerProviderSet bool
)

// HasLoggerProvider reports whether InitTracer installed an OTLP log
// exporter. The otel global falls back to a noop provider, so callers
// cannot learn this from global.GetLoggerProvider.
func HasLoggerProvider() bool {
	return loggerProviderSet
}

// InitTracer initializes OpenTelemetry tracing with OTLP or stdout export.
//
// Environment variables:
//   - OTEL_EXPORTER: "otlp" for OTLP, anything else for stdout
//   - OTEL_COLLECTOR_ENDPOINT: endpoint URL or host:port
//   - OTEL_EXPORTER_OTLP_HEADERS: optional headers (e.g. "Authorization=Basic xxx")
//   - OTEL_INSECURE: "true" to disable TLS for local development
func InitTracer(serviceName, serviceVersion string) (func(context.Context) error, error) {
	ctx := context.Background()

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	exporterType := os.Getenv("OTEL_EXPORTER")
	var tp *sdktrace.TracerProvider
	var lp *sdklog.LoggerProvider

	if exporterType == "otlp" {
		endpoint := os.Getenv("OTEL_COLLECTOR_ENDPOINT")
		if endpoint == "" {
			endpoint = "alloy:4317"
		}

		if strings.HasPrefix(endpoint, "https://") {
			traceExporter, err := createHTTPTraceExporter(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			tp = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(traceExporter),
				sdktrace.WithResource(res),
				sdktrace.WithSampler(sdktrace.AlwaysSample()),
			)

			logExporter, err := createHTTPLogExporter(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			lp = sdklog.NewLoggerProvider(
				sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
				sdklog.WithResource(res),
			)
		} else {
			traceExporter, err := createGRPCTraceExporter(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			tp = sdktrace.NewTracerProvider(
				sdktrace.WithBatcher(traceExporter),
				sdktrace.WithResource(res),
				sdktrace.WithSampler(sdktrace.AlwaysSample()),
			)

			logExporter, err := createGRPCLogExporter(ctx, endpoint)
			if err != nil {
				return nil, err
			}
			lp = sdklog.NewLoggerProvider(
				sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
				sdklog.WithResource(res),
			)
		}
	} else {
		// stdout exporter for development
		exporter, err := stdouttrace.New(
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return nil, err
		}

		tp = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
		lp = nil
	}

	otel.SetTracerProvider(tp)
	Tracer = tp.Tracer(serviceName)
	Meter = otel.GetMeterProvider().Meter(serviceName)

	if lp != nil {
		global.SetLoggerProvider(lp)
		loggerProviderSet = true
	}

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
		if lp != nil {
			if err := lp.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return errs[0]
		}
		return nil
	}

	return shutdown, nil
}

func createGRPCTraceExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
	}

	if os.Getenv("OTEL_INSECURE") == "true" || !strings.Contains(endpoint, ":443") {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	return otlptracegrpc.New(ctx, opts...)
}

func createHTTPTraceExporter(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
	}

	if headers := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); headers != "" {
		opts = append(opts, otlptracehttp.WithHeaders(parseHeaders(headers)))
	}

	if os.Getenv("OTEL_INSECURE") == "true" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return otlptracehttp.New(ctx, opts...)
}

func createGRPCLogExporter(ctx context.Context, endpoint string) (sdklog.Exporter, error) {
	opts := []otlploggrpc.Option{
		otlploggrpc.WithEndpoint(endpoint),
	}

	if os.Getenv("OTEL_INSECURE") == "true" || !strings.Contains(endpoint, ":443") {
		opts = append(opts, otlploggrpc.WithInsecure())
	}

	return otlploggrpc.New(ctx, opts...)
}

func createHTTPLogExporter(ctx context.Context, endpoint string) (sdklog.Exporter, error) {
	endpoint = strings.TrimPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	opts := []otlploghttp.Option{
		otlploghttp.WithEndpoint(endpoint),
	}

	if headers := os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"); headers != "" {
		opts = append(opts, otlploghttp.WithHeaders(parseHeaders(headers)))
	}

	if os.Getenv("OTEL_INSECURE") == "true" {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	return otlploghttp.New(ctx, opts...)
}

// parseHeaders parses a header string like "Key1=Value1,Key2=Value2".
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(headerStr, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			headers[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return headers
}

// StartSpan starts a new span with the given name.
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	if Tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return Tracer.Start(ctx, spanName)
}

// GetTraceID returns the trace ID from context if available.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
