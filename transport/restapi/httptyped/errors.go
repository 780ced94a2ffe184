package httptyped

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

// ErrorKind maps a service error into http status and response error kind.
func ErrorKind(err error) (httpStatus int, kind respbuilder.ErrKind) {
	var (
		rateLimited  *webhook.RateLimitedError
		transportErr *webhook.TransportError
	)

	switch {
	case errors.Is(err, webhook.ErrValidation):
		return http.StatusBadRequest, respbuilder.ErrValidation
	case errors.Is(err, webhook.ErrWebhookNotConfigured):
		return http.StatusPreconditionFailed, respbuilder.ErrPrecondition
	case errors.Is(err, webhook.ErrSubmissionInFlight):
		return http.StatusConflict, respbuilder.ErrConflict
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests, respbuilder.ErrRateLimited
	case errors.As(err, &transportErr):
		return http.StatusBadGateway, respbuilder.ErrUpstream
	default:
		return http.StatusInternalServerError, respbuilder.ErrUnhandled
	}
}

// WriteError writes err using the standard error envelope. Rate limited error also set Retry-After header.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	httpStatus, kind := ErrorKind(err)
	resp := respbuilder.Error(r.Context(), kind, err)

	var rateLimited *webhook.RateLimitedError
	if errors.As(err, &rateLimited) {
		waitMs := rateLimited.WaitMs()
		resp.Err.RetryAfterMs = waitMs

		// header only supports whole seconds
		w.Header().Set("Retry-After", strconv.FormatInt((waitMs+999)/1000, 10))
	}

	respbuilder.WriteJSON(httpStatus, w, r, resp)
}
