package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

// NoopBackend is a dry run sender: nothing leaves the process.
type NoopBackend struct{}

var _ Sender = (*NoopBackend)(nil)

func NewNoopSender() *NoopBackend {
	be := &NoopBackend{}

	return be
}

func (b *NoopBackend) Send(ctx context.Context, endpoint string, body webhook.Body) (report *Report, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "backend.NoopBackend.Send")
	defer span.End()

	t0 := time.Now()
	if len(body.Data) == 0 || body.ContentType == "" {
		err = fmt.Errorf("noop backend: empty body")
		return
	}

	ylog.Debug(ctx, "noop backend accept webhook body",
		ylog.KV("content_type", body.ContentType),
		ylog.KV("size", len(body.Data)),
		ylog.KV("parts", body.PartNames),
	)

	report = &Report{
		Provider:    "noop",
		StatusCode:  http.StatusNoContent,
		ElapsedTime: time.Since(t0).Milliseconds(),
	}

	return
}
