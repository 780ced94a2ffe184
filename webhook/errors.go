package webhook

import (
	"errors"
	"fmt"
	"time"
)

// ErrValidation is wrapped by every draft, embed, attachment and config validation error.
var ErrValidation = errors.New("validation error")

var (
	ErrEmptyContent       = fmt.Errorf("%w: message content or embed is required", ErrValidation)
	ErrContentTooLong     = fmt.Errorf("%w: message content cannot exceed %d characters", ErrValidation, MaxContentLength)
	ErrTooManyEmbeds      = fmt.Errorf("%w: cannot send more than %d embeds", ErrValidation, MaxEmbeds)
	ErrTooManyEmbedFields = fmt.Errorf("%w: an embed cannot have more than %d fields", ErrValidation, MaxEmbedFields)
	ErrInvalidColor       = fmt.Errorf("%w: embed color must be between 0 and 0xFFFFFF", ErrValidation)
	ErrTooManyAttachments = fmt.Errorf("%w: cannot attach more than %d files", ErrValidation, MaxAttachments)
	ErrAttachmentTooLarge = fmt.Errorf("%w: attachment exceeds %d bytes", ErrValidation, MaxAttachmentSize)

	ErrWebhookEndpointInvalid = fmt.Errorf("%w: invalid Discord webhook URL", ErrValidation)
)

var (
	ErrWebhookNotConfigured = errors.New("webhook is not configured")
	ErrSubmissionInFlight   = errors.New("another message is still being sent")
)

// RateLimitedError returned when a submission comes before the cooldown window passed.
type RateLimitedError struct {
	Wait time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: wait %d ms before sending again", e.WaitMs())
}

// WaitMs rounds up, waiting exactly that many milliseconds is always enough.
func (e *RateLimitedError) WaitMs() int64 {
	return int64((e.Wait + time.Millisecond - 1) / time.Millisecond)
}

// TransportError is either a non 2xx response or a network failure, never both.
type TransportError struct {
	HTTPStatus     int
	ServerMessage  string
	NetworkFailure bool
	Err            error
}

func (e *TransportError) Error() string {
	// http client errors carry the request URL, the token must not leak through it
	if e.NetworkFailure {
		return RedactEndpoint(fmt.Sprintf("webhook network failure: %v", e.Err))
	}

	if e.ServerMessage != "" {
		return fmt.Sprintf("Discord API error: %d: %s", e.HTTPStatus, e.ServerMessage)
	}

	return fmt.Sprintf("Discord API error: %d", e.HTTPStatus)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
