package tracer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yusufsyaifudin/cyberhook/assets"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"
)

const tracerAppName = "github.com/yusufsyaifudin/cyberhook"

func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.GetTracerProvider().Tracer(tracerAppName).Start(ctx, spanName, opts...)
}

// InitTraceProvider sets the global tracer provider, caller must Shutdown it to flush the batch.
func InitTraceProvider(exp sdktrace.SpanExporter, environment string) *sdktrace.TracerProvider {
	if environment == "" {
		environment = "development"
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(assets.ServiceName),
			semconv.ServiceVersionKey.String(assets.Version),
			attribute.String("environment", environment),
		)),
	)

	otel.SetTracerProvider(tp)
	return tp
}

type MiddlewareConfig struct {
	TracerName     string                        `validate:"required"`
	ServiceName    string                        `validate:"required"`
	SkipFunc       func(r *http.Request) bool    `validate:"-"`
	TracerProvider trace.TracerProvider          `validate:"required"`
	TextPropagator propagation.TextMapPropagator `validate:"required"`
}

// Middleware starts a server span per request. Propagation header is written to the response right before the status line.
func Middleware(cfg MiddlewareConfig, next http.Handler) http.HandlerFunc {
	if _err := validator.Validate(cfg); _err != nil {
		return next.ServeHTTP
	}

	if cfg.SkipFunc == nil {
		cfg.SkipFunc = func(r *http.Request) bool {
			return false
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if cfg.SkipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		ctx := cfg.TextPropagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		opts := []trace.SpanStartOption{
			trace.WithAttributes(semconv.NetAttributesFromHTTPRequest("tcp", r)...),
			trace.WithAttributes(semconv.EndUserAttributesFromHTTPRequest(r)...),
			trace.WithAttributes(semconv.HTTPServerAttributesFromHTTPRequest(cfg.ServiceName, r.URL.Path, r)...),
			trace.WithSpanKind(trace.SpanKindServer),
		}

		spanName := fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
		newCtx, span := cfg.TracerProvider.Tracer(cfg.TracerName).Start(ctx, spanName, opts...)
		defer span.End()

		sw := &statusWriter{
			ResponseWriter: w,
			beforeHeader: func(h http.Header) {
				cfg.TextPropagator.Inject(newCtx, propagation.HeaderCarrier(h))
			},
		}

		next.ServeHTTP(sw, r.WithContext(newCtx))

		code := sw.status
		if code == 0 {
			code = http.StatusOK
		}

		spanStatus, spanMessage := semconv.SpanStatusFromHTTPStatusCodeAndSpanKind(code, trace.SpanKindServer)
		span.SetAttributes(semconv.HTTPAttributesFromHTTPStatusCode(code)...)
		span.SetStatus(spanStatus, spanMessage)
	}
}

type statusWriter struct {
	http.ResponseWriter

	status       int
	beforeHeader func(h http.Header)
}

func (s *statusWriter) WriteHeader(code int) {
	if s.status != 0 {
		return
	}

	s.status = code
	s.beforeHeader(s.Header())
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusWriter) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.WriteHeader(http.StatusOK)
	}

	return s.ResponseWriter.Write(b)
}
