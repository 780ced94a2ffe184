package submitsvc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yusufsyaifudin/cyberhook/backend"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/uid"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Repo   sessionrepo.Repo `validate:"required"`
	Sender backend.Sender   `validate:"required"`
	UIDGen uid.UID          `validate:"required"`

	// Now defaults to time.Now
	Now func() time.Time `validate:"-"`
}

type DefaultService struct {
	Config Config

	lock       sync.Mutex
	session    webhook.Session
	isSending  bool
	lastSentAt time.Time
	quota      int
}

var _ Service = (*DefaultService)(nil)

// New loads the saved session. Cooldown and quota always start fresh.
func New(ctx context.Context, cfg Config) (*DefaultService, error) {
	if err := validator.Validate(cfg); err != nil {
		err = fmt.Errorf("submit service config: %w", err)
		return nil, err
	}

	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	loaded := cfg.Repo.Load(ctx)

	return &DefaultService{
		Config:  cfg,
		session: loaded.Session,
		quota:   webhook.DefaultQuotaPercent,
	}, nil
}

func (d *DefaultService) Submit(ctx context.Context, input InputSubmit) (out OutSubmit, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "submitsvc.Submit")
	defer span.End()

	if err = webhook.ValidateDraft(input.Content, input.Embeds); err != nil {
		return
	}

	if err = webhook.ValidateEmbeds(input.Embeds); err != nil {
		return
	}

	if err = webhook.ValidateAttachments(input.Attachments); err != nil {
		return
	}

	cfg, err := d.begin()
	if err != nil {
		return
	}

	// sending flag must be released even when the sender panics
	delivered := false
	defer func() {
		if !delivered {
			d.finish()
		}
	}()

	msg, err := snapshot(d.Config.UIDGen, cfg, input)
	if err != nil {
		return
	}

	body, err := webhook.Assemble(webhook.AssembleInput{
		Config:      cfg,
		Content:     input.Content,
		Embeds:      input.Embeds,
		Attachments: input.Attachments,
	})
	if err != nil {
		return
	}

	span.SetAttributes(
		attribute.Bool("webhook.multipart", body.IsMultipart()),
		attribute.Int("webhook.attachments", len(input.Attachments)),
	)

	// once issued, delivery must not be cancelled by the caller
	deliverCtx := context.WithoutCancel(ctx)
	report, err := d.Config.Sender.Send(deliverCtx, cfg.URL, body)
	if err != nil {
		ylog.Error(ctx, "webhook delivery failed", ylog.KV("error", err.Error()))
		return
	}

	if report == nil {
		report = &backend.Report{}
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	// lastSentAt keeps the monotonic reading, cooldown must not follow wall clock steps
	completedAt := d.Config.Now()
	msg.Timestamp = completedAt.UTC()

	d.session.Messages = sessionrepo.AppendHistory(d.session.Messages, msg)
	d.lastSentAt = completedAt
	d.quota -= webhook.QuotaStep
	if d.quota < 0 {
		d.quota = 0
	}
	d.isSending = false
	delivered = true

	out = OutSubmit{
		Message:               msg,
		Report:                *report,
		RemainingQuotaPercent: d.quota,
		Persisted:             d.save(deliverCtx),
	}

	ylog.Info(ctx, "message sent",
		ylog.KV("id", msg.ID),
		ylog.KV("status_code", report.StatusCode),
		ylog.KV("remaining_quota_percent", d.quota),
	)

	return
}

// begin checks the endpoint, the in flight guard and the cooldown, then enter sending phase.
func (d *DefaultService) begin() (cfg webhook.Config, err error) {
	d.lock.Lock()
	defer d.lock.Unlock()

	cfg = d.session.CurrentConfig
	if !webhook.IsWebhookEndpointValid(cfg.URL) {
		err = webhook.ErrWebhookNotConfigured
		return
	}

	if d.isSending {
		err = webhook.ErrSubmissionInFlight
		return
	}

	if wait := d.cooldownRemaining(d.Config.Now()); wait > 0 {
		err = &webhook.RateLimitedError{Wait: wait}
		return
	}

	d.isSending = true
	return
}

func (d *DefaultService) finish() {
	d.lock.Lock()
	d.isSending = false
	d.lock.Unlock()
}

// cooldownRemaining must be called with lock held.
func (d *DefaultService) cooldownRemaining(now time.Time) time.Duration {
	if d.lastSentAt.IsZero() {
		return 0
	}

	elapsed := now.Sub(d.lastSentAt)
	if elapsed >= webhook.CooldownWindow {
		return 0
	}

	return webhook.CooldownWindow - elapsed
}

// save must be called with lock held. Write error is logged only, in memory state stays the source of truth.
func (d *DefaultService) save(ctx context.Context) bool {
	err := d.Config.Repo.Save(ctx, sessionrepo.InputSave{
		Config:   d.session.CurrentConfig,
		Messages: d.session.Messages,
	})
	if err != nil {
		ylog.Error(ctx, "cannot persist session", ylog.KV("error", err.Error()))
		return false
	}

	return true
}

func (d *DefaultService) UpdateConfig(ctx context.Context, input InputUpdateConfig) (out OutUpdateConfig, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "submitsvc.UpdateConfig")
	defer span.End()

	cfg := normalizeConfig(input.Config)
	if err = webhook.ValidateConfig(cfg); err != nil {
		return
	}

	d.lock.Lock()
	defer d.lock.Unlock()

	d.session.CurrentConfig = cfg
	out = OutUpdateConfig{
		Config:    cfg,
		Persisted: d.save(ctx),
	}

	return
}

func (d *DefaultService) ClearHistory(ctx context.Context) (out OutClearHistory, err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "submitsvc.ClearHistory")
	defer span.End()

	d.lock.Lock()
	defer d.lock.Unlock()

	d.session.Messages = make([]webhook.HistoryMessage, 0)

	err = d.Config.Repo.ClearHistory(ctx, sessionrepo.InputClearHistory{Config: d.session.CurrentConfig})
	if err != nil {
		ylog.Error(ctx, "cannot persist cleared history", ylog.KV("error", err.Error()))
		err = nil
		return
	}

	out.Persisted = true
	return
}

func (d *DefaultService) State(_ context.Context) (state State) {
	d.lock.Lock()
	defer d.lock.Unlock()

	now := d.Config.Now()
	messages := make([]webhook.HistoryMessage, len(d.session.Messages))
	copy(messages, d.session.Messages)

	state = State{
		Messages:              messages,
		CurrentConfig:         d.session.CurrentConfig,
		IsSending:             d.isSending,
		LastSentAt:            d.lastSentAt.UTC(),
		RemainingQuotaPercent: d.quota,
		Phase:                 PhaseIdle,
		Connected:             webhook.IsWebhookEndpointValid(d.session.CurrentConfig.URL),
		CooldownRemaining:     d.cooldownRemaining(now),
	}

	switch {
	case d.isSending:
		state.Phase = PhaseSending
	case state.CooldownRemaining > 0:
		state.Phase = PhaseCooldown
	}

	return
}

// IsUserError reports whether err is caused by the caller input or timing, not by the system.
func IsUserError(err error) bool {
	var rateLimited *webhook.RateLimitedError
	return errors.Is(err, webhook.ErrValidation) ||
		errors.Is(err, webhook.ErrWebhookNotConfigured) ||
		errors.Is(err, webhook.ErrSubmissionInFlight) ||
		errors.As(err, &rateLimited)
}
