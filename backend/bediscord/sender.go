package bediscord

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/backend"
	"github.com/yusufsyaifudin/cyberhook/pkg/httplog"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const Provider = "discord"

type Config struct {
	// RoundTripper is wrapped with outgoing request logger. Nil means http.DefaultTransport.
	RoundTripper http.RoundTripper

	// Timeout zero means no timeout other than the transport default.
	Timeout time.Duration `validate:"min=0"`
}

type Backend struct {
	client *resty.Client
}

var _ backend.Sender = (*Backend)(nil)

func NewBE(cfg Config) (*Backend, error) {
	err := validator.Validate(cfg)
	if err != nil {
		err = fmt.Errorf("discord backend config: %w", err)
		return nil, err
	}

	client := resty.New().
		SetTransport(httplog.New(cfg.RoundTripper)).
		SetRetryCount(0)

	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}

	return &Backend{client: client}, nil
}

// errorResponse is Discord's error object, i.e: {"message": "Invalid Webhook Token", "code": 50027}
type errorResponse struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (b *Backend) Send(ctx context.Context, endpoint string, body webhook.Body) (report *backend.Report, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "bediscord.Send")
	defer span.End()

	t0 := time.Now()
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", body.ContentType).
		SetBody(body.Data).
		Post(endpoint)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "network failure")
		err = &webhook.TransportError{NetworkFailure: true, Err: err}
		return
	}

	statusCode := resp.StatusCode()
	span.SetAttributes(attribute.Int("http.status_code", statusCode))

	if statusCode < 200 || statusCode > 299 {
		var errResp errorResponse
		if strings.Contains(resp.Header().Get("Content-Type"), "json") {
			if _err := json.Unmarshal(resp.Body(), &errResp); _err != nil {
				ylog.Debug(ctx, "discord error response is not a valid json", ylog.KV("error", _err.Error()))
			}
		}

		err = &webhook.TransportError{
			HTTPStatus:    statusCode,
			ServerMessage: errResp.Message,
		}

		span.SetStatus(codes.Error, err.Error())
		return
	}

	report = &backend.Report{
		Provider:    Provider,
		StatusCode:  statusCode,
		ElapsedTime: time.Since(t0).Milliseconds(),
	}

	return
}
