package webhook

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/segmentio/encoding/json"
)

const (
	ContentTypeJSON        = "application/json"
	ContentTypeOctetStream = "application/octet-stream"

	PartPayloadJSON = "payload_json"
)

// Body is ready to be POSTed as is.
type Body struct {
	ContentType string
	Data        []byte

	// PartNames is the ordered list of multipart part names, empty for a JSON body.
	PartNames []string
}

func (b Body) IsMultipart() bool {
	return len(b.PartNames) > 0
}

type AssembleInput struct {
	Config      Config
	Content     string
	Embeds      []Embed
	Attachments []Attachment
}

type payloadObject struct {
	Content   string  `json:"content,omitempty"`
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// FilePartName is the part name Discord expects for the i-th attachment.
func FilePartName(i int) string {
	return fmt.Sprintf("files[%d]", i)
}

// Assemble builds a JSON body when there is no attachment, otherwise multipart/form-data
// with payload_json first followed by files[0], files[1], ... in input order.
func Assemble(in AssembleInput) (body Body, err error) {
	payload := payloadObject{
		Content:   strings.TrimSpace(in.Content),
		Username:  in.Config.Username,
		AvatarURL: in.Config.AvatarURL,
		Embeds:    in.Embeds,
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		err = fmt.Errorf("cannot marshal webhook payload: %w", err)
		return
	}

	if len(in.Attachments) == 0 {
		body = Body{
			ContentType: ContentTypeJSON,
			Data:        payloadJSON,
		}
		return
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	partNames := make([]string, 0, len(in.Attachments)+1)

	part, err := w.CreatePart(partHeader(PartPayloadJSON, "", ContentTypeJSON))
	if err != nil {
		err = fmt.Errorf("cannot create %s part: %w", PartPayloadJSON, err)
		return
	}

	if _, err = part.Write(payloadJSON); err != nil {
		err = fmt.Errorf("cannot write %s part: %w", PartPayloadJSON, err)
		return
	}

	partNames = append(partNames, PartPayloadJSON)

	for i, attachment := range in.Attachments {
		name := FilePartName(i)

		part, err = w.CreatePart(partHeader(name, attachment.FilenameAt(i), attachment.MediaType()))
		if err != nil {
			err = fmt.Errorf("cannot create %s part: %w", name, err)
			return
		}

		if _, err = part.Write(attachment.Data); err != nil {
			err = fmt.Errorf("cannot write %s part: %w", name, err)
			return
		}

		partNames = append(partNames, name)
	}

	if err = w.Close(); err != nil {
		err = fmt.Errorf("cannot close multipart body: %w", err)
		return
	}

	body = Body{
		ContentType: w.FormDataContentType(),
		Data:        buf.Bytes(),
		PartNames:   partNames,
	}
	return
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func partHeader(name, filename, contentType string) textproto.MIMEHeader {
	disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(name))
	if filename != "" {
		disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(filename))
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", disposition)
	h.Set("Content-Type", contentType)
	return h
}
