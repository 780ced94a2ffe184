package httplog

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// RoundTripper logs every outgoing request and its response using ylog access log.
// Multipart request body is logged by its size only.
type RoundTripper struct {
	Base http.RoundTripper
}

var _ http.RoundTripper = (*RoundTripper)(nil)

// New returns RoundTripper wrapping base. Nil base means http.DefaultTransport.
func New(base http.RoundTripper) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	return &RoundTripper{Base: base}
}

func (r *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	t0 := time.Now()

	var (
		ctx     = req.Context()
		logErr  error
		reqBody []byte
	)

	if req.Body != nil {
		var err error
		reqBody, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("error read request body: %w", err)
		}

		req.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	base := r.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		logErr = multierr.Append(logErr, fmt.Errorf("error doing actual request: %w", err))
	}

	var (
		respHeader http.Header
		respBody   []byte
	)
	if resp != nil {
		respHeader = resp.Header
		if resp.Body != nil {
			var errBody error
			respBody, errBody = io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if errBody != nil {
				logErr = multierr.Append(logErr, fmt.Errorf("error read response body: %w", errBody))
			}

			resp.Body = io.NopCloser(bytes.NewReader(respBody))
		}
	}

	errStr := ""
	if logErr != nil {
		errStr = logErr.Error()
	}

	ylog.Access(ctx, ylog.AccessLogData{
		Path: req.Method + " " + redactURL(req),
		Request: ylog.HTTPData{
			Header:     toSimpleMap(req.Header),
			DataString: bodyString(req.Header.Get("Content-Type"), reqBody),
		},
		Response: ylog.HTTPData{
			Header:     toSimpleMap(respHeader),
			DataString: string(respBody),
		},
		Error:       errStr,
		ElapsedTime: time.Since(t0).Milliseconds(),
	})

	if err != nil {
		return nil, err
	}

	return resp, nil
}

// redactURL hides the last path segment, which holds the webhook token.
func redactURL(req *http.Request) string {
	if req.URL == nil {
		return ""
	}

	u := *req.URL
	idx := strings.LastIndex(u.Path, "/")
	if idx >= 0 && idx < len(u.Path)-1 {
		u.Path = u.Path[:idx+1] + "***"
		u.RawPath = ""
	}

	return u.String()
}

func bodyString(contentType string, body []byte) string {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.HasPrefix(mediaType, "multipart/") {
		return fmt.Sprintf("<%s body %d bytes>", mediaType, len(body))
	}

	return string(body)
}

func toSimpleMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		out[k] = strings.Join(v, " ")
	}

	return out
}
