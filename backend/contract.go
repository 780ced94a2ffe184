package backend

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/cyberhook/webhook"
)

var (
	ErrProviderAlreadyRegistered = fmt.Errorf("provider already registered")
	ErrProviderNotRegistered     = fmt.Errorf("provider not registered")
)

// Sender delivers one assembled body to the webhook endpoint.
// Implementation must issue at most one request per call, there is no retry.
type Sender interface {
	Send(ctx context.Context, endpoint string, body webhook.Body) (report *Report, err error)
}

// SenderMux selects the Sender configured as webhook backend.
type SenderMux interface {
	Lookup(provider string) (sender Sender, err error)

	// ListProviders is sorted by name.
	ListProviders(ctx context.Context) (providers []string)
}

// Report describes accepted delivery, StatusCode is always 2xx.
type Report struct {
	Provider    string `json:"provider"`
	StatusCode  int    `json:"status_code"`
	ElapsedTime int64  `json:"elapsed_time_ms"`
}
