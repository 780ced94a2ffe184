package submitsvc

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yusufsyaifudin/cyberhook/pkg/uid"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

// blobRef points to where the attachment bytes can be found again locally.
func blobRef(id string, i int, attachment webhook.Attachment) string {
	if attachment.Source != "" {
		abs, err := filepath.Abs(attachment.Source)
		if err == nil {
			return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
		}
	}

	return fmt.Sprintf("mem://%s/%s", id, url.PathEscape(attachment.FilenameAt(i)))
}

func nextID(gen uid.UID) (string, error) {
	id, err := gen.NextID()
	if err != nil {
		return "", fmt.Errorf("cannot get next id: %w", err)
	}

	return strconv.FormatUint(id, 10), nil
}

// snapshot builds the history entry without its timestamp, which is only known after delivery.
func snapshot(gen uid.UID, cfg webhook.Config, in InputSubmit) (msg webhook.HistoryMessage, err error) {
	msgID, err := nextID(gen)
	if err != nil {
		return
	}

	var attachments []webhook.HistoryAttachment
	if len(in.Attachments) > 0 {
		attachments = make([]webhook.HistoryAttachment, 0, len(in.Attachments))
	}

	for i, attachment := range in.Attachments {
		attID, _err := nextID(gen)
		if _err != nil {
			err = _err
			return
		}

		attachments = append(attachments, webhook.HistoryAttachment{
			ID:          attID,
			Filename:    attachment.FilenameAt(i),
			Size:        attachment.Size(),
			URL:         blobRef(attID, i, attachment),
			ContentType: attachment.MediaType(),
		})
	}

	embeds := webhook.CloneEmbeds(in.Embeds)
	if embeds == nil {
		embeds = make([]webhook.Embed, 0)
	}

	msg = webhook.HistoryMessage{
		ID:          msgID,
		Content:     strings.TrimSpace(in.Content),
		Username:    cfg.Username,
		AvatarURL:   cfg.AvatarURL,
		Embeds:      embeds,
		WebhookURL:  cfg.URL,
		Attachments: attachments,
	}

	return
}

func normalizeConfig(cfg webhook.Config) webhook.Config {
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.AvatarURL = strings.TrimSpace(cfg.AvatarURL)

	if cfg.Username == "" {
		cfg.Username = webhook.DefaultUsername
	}

	return cfg
}
