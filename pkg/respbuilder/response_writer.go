package respbuilder

import (
	"fmt"
	"net/http"

	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/ylog"
)

// WriteJSON encodes data before writing any header, so encode failure still becomes a proper 500 response.
func WriteJSON(httpStatus int, rw http.ResponseWriter, r *http.Request, data interface{}) {
	tracer := Extract(r.Context())

	body, err := json.Marshal(data)
	if err != nil {
		ylog.Error(r.Context(), "cannot encode response", ylog.KV("error", err.Error()))

		httpStatus = http.StatusInternalServerError
		body, _ = json.Marshal(Error(r.Context(), ErrUnhandled, fmt.Errorf("cannot encode response: %w", err)))
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Set("Tracer-ID", tracer.AppTraceID)
	rw.WriteHeader(httpStatus)
	_, _ = rw.Write(append(body, '\n'))
}
