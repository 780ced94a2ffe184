package tracer_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Handler", "ok")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	t.Run("invalid config pass through", func(t *testing.T) {
		h := tracer.Middleware(tracer.MiddlewareConfig{}, next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, `{"ok":true}`, rec.Body.String())
	})

	t.Run("span recorded and propagated", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

		h := tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "test",
			ServiceName:    "cyberhook",
			TracerProvider: tp,
			TextPropagator: propagation.TraceContext{},
		}, next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/session", nil))

		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Equal(t, "ok", rec.Header().Get("X-Handler"))
		assert.NotEmpty(t, rec.Header().Get("traceparent"))
		assert.Equal(t, `{"ok":true}`, rec.Body.String())

		spans := recorder.Ended()
		assert.Len(t, spans, 1)
		assert.Equal(t, "HTTP GET /api/v1/session", spans[0].Name())
	})

	t.Run("skipped path", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		tp := trace.NewTracerProvider(trace.WithSpanProcessor(recorder))

		h := tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "test",
			ServiceName:    "cyberhook",
			TracerProvider: tp,
			TextPropagator: propagation.TraceContext{},
			SkipFunc: func(r *http.Request) bool {
				return r.URL.Path == "/health"
			},
		}, next)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		assert.Empty(t, recorder.Ended())
	})
}
