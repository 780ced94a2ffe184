package webhook_test

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

func TestIsWebhookEndpointValid(t *testing.T) {
	testCases := []struct {
		URL   string
		Valid bool
	}{
		{URL: "https://discord.com/api/webhooks/123456789012345678/AbCdEf-123", Valid: true},
		{URL: "https://discord.com/api/webhooks/1/x", Valid: true},
		{URL: "https://discord.com/api/webhooks/1/under_score", Valid: true},
		{URL: "https://discordapp.com/api/webhooks/1/x", Valid: false},
		{URL: "http://discord.com/api/webhooks/1/x", Valid: false},
		{URL: "https://discord.com/api/webhooks/abc/x", Valid: false},
		{URL: "https://discord.com/api/webhooks/1/", Valid: false},
		{URL: "https://discord.com/api/webhooks/1/x/", Valid: false},
		{URL: "https://discord.com/api/webhooks/1/x?wait=true", Valid: false},
		{URL: " https://discord.com/api/webhooks/1/x", Valid: false},
		{URL: "https://discord.com/api/webhooks/1/x\n", Valid: false},
		{URL: "https://discordXcom/api/webhooks/1/x", Valid: false},
		{URL: "", Valid: false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.URL, func(t *testing.T) {
			assert.Equal(t, testCase.Valid, webhook.IsWebhookEndpointValid(testCase.URL))
		})
	}
}

func TestValidateDraft(t *testing.T) {
	t.Run("empty content no embed", func(t *testing.T) {
		err := webhook.ValidateDraft("", nil)
		assert.ErrorIs(t, err, webhook.ErrEmptyContent)
		assert.ErrorIs(t, err, webhook.ErrValidation)
	})

	t.Run("whitespace only", func(t *testing.T) {
		err := webhook.ValidateDraft(" \n\t ", []webhook.Embed{})
		assert.ErrorIs(t, err, webhook.ErrEmptyContent)
	})

	t.Run("empty content with one embed", func(t *testing.T) {
		err := webhook.ValidateDraft("", []webhook.Embed{{Title: "hello"}})
		assert.NoError(t, err)
	})

	t.Run("too long", func(t *testing.T) {
		err := webhook.ValidateDraft(strings.Repeat("a", 2001), nil)
		assert.ErrorIs(t, err, webhook.ErrContentTooLong)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		err := webhook.ValidateDraft(strings.Repeat("a", 2000), nil)
		assert.NoError(t, err)
	})

	t.Run("multi byte characters counted once", func(t *testing.T) {
		err := webhook.ValidateDraft(strings.Repeat("é", 2000), nil)
		assert.NoError(t, err)
	})
}

func TestValidateEmbeds(t *testing.T) {
	t.Run("too many embeds", func(t *testing.T) {
		err := webhook.ValidateEmbeds(make([]webhook.Embed, webhook.MaxEmbeds+1))
		assert.ErrorIs(t, err, webhook.ErrTooManyEmbeds)
	})

	t.Run("too many fields", func(t *testing.T) {
		embed := webhook.Embed{Fields: make([]webhook.EmbedField, webhook.MaxEmbedFields+1)}
		err := webhook.ValidateEmbeds([]webhook.Embed{embed})
		assert.ErrorIs(t, err, webhook.ErrTooManyEmbedFields)
	})

	t.Run("color out of range", func(t *testing.T) {
		color := 0x1000000
		err := webhook.ValidateEmbeds([]webhook.Embed{{Color: &color}})
		assert.ErrorIs(t, err, webhook.ErrInvalidColor)
	})

	t.Run("ok", func(t *testing.T) {
		color := webhook.DefaultEmbedColor
		embed := webhook.Embed{Color: &color, Fields: make([]webhook.EmbedField, webhook.MaxEmbedFields)}
		err := webhook.ValidateEmbeds([]webhook.Embed{embed})
		assert.NoError(t, err)
	})
}

func TestValidateAttachments(t *testing.T) {
	t.Run("too many", func(t *testing.T) {
		err := webhook.ValidateAttachments(make([]webhook.Attachment, webhook.MaxAttachments+1))
		assert.ErrorIs(t, err, webhook.ErrTooManyAttachments)
	})

	t.Run("too large", func(t *testing.T) {
		att := webhook.Attachment{Filename: "big.bin", Data: make([]byte, webhook.MaxAttachmentSize+1)}
		err := webhook.ValidateAttachments([]webhook.Attachment{att})
		assert.ErrorIs(t, err, webhook.ErrAttachmentTooLarge)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		att := webhook.Attachment{Filename: "ok.bin", Data: make([]byte, webhook.MaxAttachmentSize)}
		err := webhook.ValidateAttachments([]webhook.Attachment{att})
		assert.NoError(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, webhook.ValidateConfig(webhook.Config{}))
	assert.NoError(t, webhook.ValidateConfig(webhook.Config{URL: "https://discord.com/api/webhooks/1/abc"}))
	assert.ErrorIs(t, webhook.ValidateConfig(webhook.Config{URL: "https://example.com"}), webhook.ErrWebhookEndpointInvalid)
}

func TestRedactEndpoint(t *testing.T) {
	testCases := []struct {
		In  string
		Out string
	}{
		{
			In:  "https://discord.com/api/webhooks/123456789012345678/AbCdEf-123",
			Out: "https://discord.com/api/webhooks/123456789012345678/***",
		},
		{
			In:  `{"url":"https://discord.com/api/webhooks/1/tok_en","other":"https://discordapp.com/api/webhooks/2/x"}`,
			Out: `{"url":"https://discord.com/api/webhooks/1/***","other":"https://discordapp.com/api/webhooks/2/***"}`,
		},
		{In: "https://example.com/api/webhooks/1/token", Out: "https://example.com/api/webhooks/1/token"},
		{In: "", Out: ""},
	}

	for _, testCase := range testCases {
		t.Run(testCase.In, func(t *testing.T) {
			assert.Equal(t, testCase.Out, webhook.RedactEndpoint(testCase.In))
		})
	}
}

func TestTransportError_HidesToken(t *testing.T) {
	cause := &url.Error{
		Op:  "Post",
		URL: "https://discord.com/api/webhooks/123456789012345678/AbCdEf-123",
		Err: errors.New("dial tcp: connection refused"),
	}

	err := &webhook.TransportError{NetworkFailure: true, Err: cause}
	assert.NotContains(t, err.Error(), "AbCdEf-123")
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}
