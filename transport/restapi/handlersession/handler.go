package handlersession

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/httptyped"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

type HandlerConfig struct {
	SubmitService submitsvc.Service `validate:"required"`
}

type Handler struct {
	Config HandlerConfig
}

func NewHandler(conf HandlerConfig) (*Handler, error) {
	err := validator.Validate(conf)
	if err != nil {
		return nil, err
	}

	return &Handler{Config: conf}, nil
}

type GetSessionResp struct {
	State httptyped.StateEntity `json:"state"`
}

// GetSession returns config, history, cooldown and quota.
// Path     : GET /api/v1/session
// Response : GetSessionResp
func (h *Handler) GetSession() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		state := h.Config.SubmitService.State(ctx)
		resp := respbuilder.Success(ctx, GetSessionResp{
			State: httptyped.StateEntityFromSvc(state),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

type PutConfigReq struct {
	URL       string `json:"url" validate:"discordwebhook"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type PutConfigResp struct {
	Config    httptyped.ConfigEntity `json:"config"`
	Connected bool                   `json:"connected"`
	Persisted bool                   `json:"persisted"`
}

// PutConfig replaces the webhook config entirely.
// Path         : PUT /api/v1/config
// Request Body : PutConfigReq
// Response     : PutConfigResp
func (h *Handler) PutConfig() func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var span trace.Span
		ctx, span = tracer.StartSpan(ctx, "handlersession.PutConfig")
		defer span.End()

		if r.Body == nil {
			err := fmt.Errorf("request body is nil")
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		defer func() {
			if _err := r.Body.Close(); _err != nil {
				ylog.Error(ctx, "cannot close request body", ylog.KV("error", _err))
			}
		}()

		var reqBody PutConfigReq
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		err := dec.Decode(&reqBody)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		reqBody.URL = strings.TrimSpace(reqBody.URL)
		err = validator.Validate(reqBody)
		if err != nil {
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, webhook.ErrWebhookEndpointInvalid)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		out, err := h.Config.SubmitService.UpdateConfig(ctx, submitsvc.InputUpdateConfig{
			Config: httptyped.ConfigEntity{
				URL:       reqBody.URL,
				Username:  reqBody.Username,
				AvatarURL: reqBody.AvatarURL,
			}.ToSvc(),
		})
		if err != nil {
			httptyped.WriteError(w, r.WithContext(ctx), err)
			return
		}

		resp := respbuilder.Success(ctx, PutConfigResp{
			Config:    httptyped.ConfigEntityFromSvc(out.Config),
			Connected: webhook.IsWebhookEndpointValid(out.Config.URL),
			Persisted: out.Persisted,
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}

type ValidateWebhookReq struct {
	URL string `schema:"url"`
}

type ValidateWebhookResp struct {
	URL   string `json:"url"`
	Valid bool   `json:"valid"`
}

// ValidateWebhook checks the url shape only, no request is made to the url.
// Path          : GET /api/v1/webhooks/validate
// Request Query : ValidateWebhookReq
// Response      : ValidateWebhookResp
func (h *Handler) ValidateWebhook() func(http.ResponseWriter, *http.Request) {
	queryDec := schema.NewDecoder()
	queryDec.IgnoreUnknownKeys(true)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		err := r.ParseForm()
		if err != nil {
			err = fmt.Errorf("failed parse query params: %w", err)
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		query := ValidateWebhookReq{}
		err = queryDec.Decode(&query, r.Form)
		if err != nil {
			err = fmt.Errorf("failed decode query params: %w", err)
			resp := respbuilder.Error(ctx, respbuilder.ErrValidation, err)
			respbuilder.WriteJSON(http.StatusBadRequest, w, r, resp)
			return
		}

		resp := respbuilder.Success(ctx, ValidateWebhookResp{
			URL:   query.URL,
			Valid: webhook.IsWebhookEndpointValid(query.URL),
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}
}
