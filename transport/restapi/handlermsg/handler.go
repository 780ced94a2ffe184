package handlermsg

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/httptyped"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const (
	// FormPayload is the multipart field holding SendMessageReq as JSON.
	FormPayload = "payload"

	// FormFiles is the multipart field name of every uploaded file.
	FormFiles = "files"

	// maxRequestSize leaves room for the JSON payload on top of the largest allowed attachments.
	maxRequestSize = webhook.MaxAttachments*webhook.MaxAttachmentSize + (1 << 20)
)

type HandlerConfig struct {
	SubmitService submitsvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(cfg HandlerConfig) (*Handler, error) {
	err := validator.Validate(cfg)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: cfg}, nil
}

type SendMessageReq struct {
	Content string          `json:"content"`
	Embeds  []webhook.Embed `json:"embeds,omitempty"`
}

type SendMessageResp struct {
	Message               webhook.HistoryMessage `json:"message"`
	Report                httptyped.ReportEntity `json:"report"`
	RemainingQuotaPercent int                    `json:"remainingQuotaPercent"`
	Persisted             bool                   `json:"persisted"`
}

// SendMessage submits one message to the configured webhook.
// Body is either JSON SendMessageReq, or multipart/form-data with "payload" (JSON SendMessageReq) and "files".
// Path         : POST /api/v1/messages
// Request Body : SendMessageReq
// Response     : SendMessageResp
func (h *Handler) SendMessage() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlermsg.SendMessage")
		defer span.End()

		if r.Body == nil {
			err := fmt.Errorf("request body is nil")
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		input, err := decodeSubmit(r)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		out, err := h.Config.SubmitService.Submit(ctx, input)
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, SendMessageResp{
			Message:               out.Message,
			Report:                httptyped.ReportEntityFromSvc(out.Report),
			RemainingQuotaPercent: out.RemainingQuotaPercent,
			Persisted:             out.Persisted,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

type ClearHistoryResp struct {
	Persisted bool `json:"persisted"`
}

// ClearHistory removes every history entry, config is kept.
// Path     : DELETE /api/v1/messages
// Response : ClearHistoryResp
func (h *Handler) ClearHistory() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		out, err := h.Config.SubmitService.ClearHistory(ctx)
		if err != nil {
			httptyped.WriteError(w, r, err)
			return
		}

		resp := respbuilder.Success(ctx, ClearHistoryResp{Persisted: out.Persisted})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

func decodeSubmit(r *http.Request) (input submitsvc.InputSubmit, err error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var reqBody SendMessageReq
		if err = decodeStrict(r.Body, &reqBody); err != nil {
			err = fmt.Errorf("malformed json body: %w", err)
			return
		}

		input = submitsvc.InputSubmit{Content: reqBody.Content, Embeds: reqBody.Embeds}
		return
	}

	// files are kept in memory up to the request limit, they are sent right away
	err = r.ParseMultipartForm(maxRequestSize)
	if err != nil {
		err = fmt.Errorf("malformed multipart body: %w", err)
		return
	}

	defer func() {
		if _err := r.MultipartForm.RemoveAll(); _err != nil {
			ylog.Error(r.Context(), "cannot remove multipart temp files", ylog.KV("error", _err.Error()))
		}
	}()

	var reqBody SendMessageReq
	if payload := r.MultipartForm.Value[FormPayload]; len(payload) > 0 && payload[0] != "" {
		if err = decodeStrict(strings.NewReader(payload[0]), &reqBody); err != nil {
			err = fmt.Errorf("malformed %s field: %w", FormPayload, err)
			return
		}
	}

	fileHeaders := r.MultipartForm.File[FormFiles]
	if len(fileHeaders) > webhook.MaxAttachments {
		err = webhook.ErrTooManyAttachments
		return
	}

	attachments := make([]webhook.Attachment, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size > webhook.MaxAttachmentSize {
			err = webhook.ErrAttachmentTooLarge
			return
		}

		var data []byte
		data, err = readFile(fh)
		if err != nil {
			return
		}

		contentType := fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}

		attachments = append(attachments, webhook.Attachment{
			Filename:    fh.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}

	input = submitsvc.InputSubmit{
		Content:     reqBody.Content,
		Embeds:      reqBody.Embeds,
		Attachments: attachments,
	}
	return
}

func readFile(fh *multipart.FileHeader) (data []byte, err error) {
	f, err := fh.Open()
	if err != nil {
		err = fmt.Errorf("cannot open uploaded file %s: %w", fh.Filename, err)
		return
	}

	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	data, err = io.ReadAll(f)
	if err != nil {
		err = fmt.Errorf("cannot read uploaded file %s: %w", fh.Filename, err)
		return
	}

	return
}

// decodeStrict is used for both the JSON body and the multipart payload field.
func decodeStrict(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
