package httptyped

import (
	"time"

	"github.com/yusufsyaifudin/cyberhook/backend"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

// ConfigEntity uses the same keys as the persisted config.
type ConfigEntity struct {
	URL       string `json:"url"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func ConfigEntityFromSvc(cfg webhook.Config) ConfigEntity {
	return ConfigEntity{
		URL:       cfg.URL,
		Username:  cfg.Username,
		AvatarURL: cfg.AvatarURL,
	}
}

func (c ConfigEntity) ToSvc() webhook.Config {
	return webhook.Config{
		URL:       c.URL,
		Username:  c.Username,
		AvatarURL: c.AvatarURL,
	}
}

type StateEntity struct {
	Messages              []webhook.HistoryMessage `json:"messages"`
	CurrentConfig         ConfigEntity             `json:"currentConfig"`
	IsSending             bool                     `json:"isSending"`
	LastSentAt            *time.Time               `json:"lastSentAt"`
	RemainingQuotaPercent int                      `json:"remainingQuotaPercent"`
	Phase                 string                   `json:"phase"`
	Connected             bool                     `json:"connected"`
	CooldownRemainingMs   int64                    `json:"cooldownRemainingMs"`
}

func StateEntityFromSvc(state submitsvc.State) StateEntity {
	var lastSentAt *time.Time
	if !state.LastSentAt.IsZero() {
		t := state.LastSentAt
		lastSentAt = &t
	}

	messages := state.Messages
	if messages == nil {
		messages = make([]webhook.HistoryMessage, 0)
	}

	return StateEntity{
		Messages:              messages,
		CurrentConfig:         ConfigEntityFromSvc(state.CurrentConfig),
		IsSending:             state.IsSending,
		LastSentAt:            lastSentAt,
		RemainingQuotaPercent: state.RemainingQuotaPercent,
		Phase:                 string(state.Phase),
		Connected:             state.Connected,
		CooldownRemainingMs:   (&webhook.RateLimitedError{Wait: state.CooldownRemaining}).WaitMs(),
	}
}

type ReportEntity struct {
	Provider    string `json:"provider"`
	StatusCode  int    `json:"status_code"`
	ElapsedTime int64  `json:"elapsed_time_ms"`
}

func ReportEntityFromSvc(report backend.Report) ReportEntity {
	return ReportEntity{
		Provider:    report.Provider,
		StatusCode:  report.StatusCode,
		ElapsedTime: report.ElapsedTime,
	}
}
