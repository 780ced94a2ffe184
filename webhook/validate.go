package webhook

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var endpointPattern = regexp.MustCompile(`^https://discord\.com/api/webhooks/\d+/[\w-]+$`)

// IsWebhookEndpointValid reports whether url is exactly https://discord.com/api/webhooks/<digits>/<token>.
func IsWebhookEndpointValid(url string) bool {
	return endpointPattern.MatchString(url)
}

// ValidateDraft checks the content against the embeds it travels with.
// Length is counted in code points.
func ValidateDraft(content string, embeds []Embed) error {
	if strings.TrimSpace(content) == "" && len(embeds) == 0 {
		return ErrEmptyContent
	}

	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}

	return nil
}

func ValidateEmbeds(embeds []Embed) error {
	if len(embeds) > MaxEmbeds {
		return ErrTooManyEmbeds
	}

	for _, embed := range embeds {
		if len(embed.Fields) > MaxEmbedFields {
			return ErrTooManyEmbedFields
		}

		if embed.Color != nil && (*embed.Color < 0 || *embed.Color > MaxColor) {
			return ErrInvalidColor
		}
	}

	return nil
}

func ValidateAttachments(attachments []Attachment) error {
	if len(attachments) > MaxAttachments {
		return ErrTooManyAttachments
	}

	for _, attachment := range attachments {
		if attachment.Size() > MaxAttachmentSize {
			return ErrAttachmentTooLarge
		}
	}

	return nil
}

// ValidateConfig accepts an empty URL (not configured yet), anything else must be a valid endpoint.
func ValidateConfig(cfg Config) error {
	if cfg.URL != "" && !IsWebhookEndpointValid(cfg.URL) {
		return ErrWebhookEndpointInvalid
	}

	return nil
}
