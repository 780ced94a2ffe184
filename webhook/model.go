package webhook

import (
	"fmt"
	"time"
)

const (
	MaxContentLength  = 2000
	MaxEmbeds         = 10
	MaxEmbedFields    = 25
	MaxAttachments    = 10
	MaxAttachmentSize = 8 * 1024 * 1024
	MaxHistory        = 100
	MaxColor          = 0xFFFFFF

	CooldownWindow      = 2000 * time.Millisecond
	DefaultQuotaPercent = 100
	QuotaStep           = 1

	DefaultUsername   = "CyberHook"
	DefaultEmbedColor = 0x7B68EE
)

// Config is the client side webhook configuration.
// URL is only usable for submission once IsWebhookEndpointValid returns true for it.
type Config struct {
	URL       string `json:"url"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// DefaultConfig used when nothing was persisted yet.
func DefaultConfig() Config {
	return Config{
		URL:      "",
		Username: DefaultUsername,
	}
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedMedia struct {
	URL string `json:"url"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// Embed follows the Discord embed object. Every optional member is omitted from JSON when unset, never null.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Color       *int         `json:"color,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Image       *EmbedMedia  `json:"image,omitempty"`
	Thumbnail   *EmbedMedia  `json:"thumbnail,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// Clone returns a deep copy, so the history snapshot never shares memory with a caller's draft.
func (e Embed) Clone() Embed {
	out := e

	if e.Color != nil {
		color := *e.Color
		out.Color = &color
	}

	if e.Footer != nil {
		footer := *e.Footer
		out.Footer = &footer
	}

	if e.Image != nil {
		image := *e.Image
		out.Image = &image
	}

	if e.Thumbnail != nil {
		thumbnail := *e.Thumbnail
		out.Thumbnail = &thumbnail
	}

	if e.Author != nil {
		author := *e.Author
		out.Author = &author
	}

	if e.Fields != nil {
		out.Fields = make([]EmbedField, len(e.Fields))
		copy(out.Fields, e.Fields)
	}

	return out
}

// CloneEmbeds deep copies the list, nil stays nil.
func CloneEmbeds(embeds []Embed) []Embed {
	if embeds == nil {
		return nil
	}

	out := make([]Embed, 0, len(embeds))
	for _, embed := range embeds {
		out = append(out, embed.Clone())
	}

	return out
}

// Attachment is a pending file, not yet sent.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte

	// Source is the local path the data was read from, empty when it came from memory (i.e: HTTP upload).
	Source string
}

func (a Attachment) Size() int64 {
	return int64(len(a.Data))
}

// FilenameAt returns Filename, or "file<i>" when empty. i is the attachment position.
func (a Attachment) FilenameAt(i int) string {
	if a.Filename == "" {
		return fmt.Sprintf("file%d", i)
	}

	return a.Filename
}

func (a Attachment) MediaType() string {
	if a.ContentType == "" {
		return ContentTypeOctetStream
	}

	return a.ContentType
}

type HistoryAttachment struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// HistoryMessage is created once per successful submission and never mutated after.
type HistoryMessage struct {
	ID          string              `json:"id"`
	Content     string              `json:"content"`
	Username    string              `json:"username"`
	AvatarURL   string              `json:"avatar_url,omitempty"`
	Embeds      []Embed             `json:"embeds"`
	Timestamp   time.Time           `json:"timestamp"`
	WebhookURL  string              `json:"webhookUrl"`
	Attachments []HistoryAttachment `json:"attachments,omitempty"`
}

// Session is the persisted blob.
type Session struct {
	Messages      []HistoryMessage `json:"messages"`
	CurrentConfig Config           `json:"currentConfig"`
}

// DefaultSession is what a fresh client starts with.
func DefaultSession() Session {
	return Session{
		Messages:      make([]HistoryMessage, 0),
		CurrentConfig: DefaultConfig(),
	}
}
