package submitsvc

import (
	"context"
	"time"

	"github.com/yusufsyaifudin/cyberhook/backend"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

// Service is the only mutator of the session: config, history, cooldown and quota.
// Any caller (HTTP handler, CLI) must go through it.
type Service interface {
	Submit(ctx context.Context, input InputSubmit) (out OutSubmit, err error)
	UpdateConfig(ctx context.Context, input InputUpdateConfig) (out OutUpdateConfig, err error)
	ClearHistory(ctx context.Context) (out OutClearHistory, err error)
	State(ctx context.Context) (state State)
}

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseSending  Phase = "sending"
	PhaseCooldown Phase = "cooldown"
)

// State is a read model, Messages must be treated as read only.
type State struct {
	Messages              []webhook.HistoryMessage
	CurrentConfig         webhook.Config
	IsSending             bool
	LastSentAt            time.Time // zero means never sent in this process
	RemainingQuotaPercent int

	Phase             Phase
	Connected         bool
	CooldownRemaining time.Duration
}

type InputSubmit struct {
	Content     string
	Embeds      []webhook.Embed
	Attachments []webhook.Attachment
}

type OutSubmit struct {
	Message               webhook.HistoryMessage
	Report                backend.Report
	RemainingQuotaPercent int

	// Persisted is false when history is updated in memory but the store write failed.
	Persisted bool
}

type InputUpdateConfig struct {
	Config webhook.Config
}

type OutUpdateConfig struct {
	Config    webhook.Config
	Persisted bool
}

type OutClearHistory struct {
	Persisted bool
}
