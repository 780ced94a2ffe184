package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/satori/uuid"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

func toSimpleMap(h http.Header) map[string]string {
	out := map[string]string{}
	for k, v := range h {
		out[k] = webhook.RedactEndpoint(strings.Join(v, " "))
	}

	return out
}

const (
	requestTimeout = 30 * time.Second
	maxBodySize    = 96 << 20
)

// logBody returns decoded JSON object when body is a JSON, otherwise the body as string.
// Multipart body is only logged by its size since it carries binary files.
func logBody(contentType string, body []byte) (obj interface{}, str string) {
	if len(body) == 0 {
		return nil, ""
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Sprintf("<%s body %d bytes>", mediaType, len(body))
	}

	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, webhook.RedactEndpoint(string(body))
	}

	return redactJSON(obj), ""
}

// redactJSON masks webhook tokens in every string of a decoded JSON value.
func redactJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return webhook.RedactEndpoint(val)
	case map[string]interface{}:
		for k, item := range val {
			val[k] = redactJSON(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = redactJSON(item)
		}
		return val
	default:
		return v
	}
}

// redactRequestURI logs the query unescaped so a webhook URL passed as parameter can be masked.
func redactRequestURI(r *http.Request) string {
	if r.URL == nil {
		return webhook.RedactEndpoint(r.RequestURI)
	}

	if r.URL.RawQuery == "" {
		return r.URL.EscapedPath()
	}

	query, err := url.QueryUnescape(r.URL.RawQuery)
	if err != nil {
		query = r.URL.RawQuery
	}

	return r.URL.EscapedPath() + "?" + webhook.RedactEndpoint(query)
}

func requestLogger(skipFunc func(r *http.Request) bool, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		if skipFunc(r) {
			next.ServeHTTP(w, r)
			return
		}

		var globalErr error
		t1 := time.Now().UTC()
		ctx := r.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		ctx, cancel := context.WithTimeout(ctx, requestTimeout)
		defer cancel()

		traceID := uuid.NewV4().String()

		propagateData := tracer.LogData{
			RemoteAddr: r.RemoteAddr,
			TraceID:    traceID,
		}

		var logTraceData *ylog.Tracer
		logTraceData, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
		if err != nil {
			// this should never happen, but once it happens, we need to log in the response
			globalErr = multierr.Append(globalErr, fmt.Errorf("error prepare log tracer data: %w", err))
		}

		responseTracer := respbuilder.Tracer{
			RemoteAddr: r.RemoteAddr,
			AppTraceID: traceID,
		}

		// Inject logger and response tracer at same time
		ctx = ylog.Inject(ctx, logTraceData)
		ctx = respbuilder.Inject(ctx, responseTracer)
		r = r.WithContext(ctx)

		reqBody := make([]byte, 0)
		if r.Body != nil {
			defer func() {
				if _err := r.Body.Close(); _err != nil {
					_err = fmt.Errorf("cannot close request body: %w", _err)
					globalErr = multierr.Append(globalErr, _err)
				}
			}()

			reqBody, err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
			if err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error read request body: %w", err))
				reqBody = []byte(``)
			}

			r.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		reqBodyObj, reqBodyStr := logBody(r.Header.Get("Content-Type"), reqBody)

		// continue serve, and record the response
		rec := httptest.NewRecorder()
		next.ServeHTTP(rec, r)

		// read, copy, restore
		respBody := make([]byte, 0)
		if rec.Result().Body != nil {
			respBody, err = io.ReadAll(rec.Result().Body)
			if err != nil {
				globalErr = multierr.Append(globalErr, fmt.Errorf("error read response body: %w", err))
				respBody = []byte(``)
			}

			rec.Result().Body = io.NopCloser(bytes.NewBuffer(respBody))
		}

		respBodyData, respBodyStr := logBody(rec.Header().Get("Content-Type"), respBody)

		for k, v := range rec.Header() {
			w.Header()[k] = v
		}

		w.WriteHeader(rec.Code)
		_, err = bytes.NewReader(respBody).WriteTo(w)
		if err != nil {
			globalErr = multierr.Append(globalErr, fmt.Errorf("error write response body: %w", err))
		}

		errStr := ""
		if globalErr != nil {
			errStr = globalErr.Error()
		}

		// log request
		ylog.Access(ctx, ylog.AccessLogData{
			Path: r.Method + " " + redactRequestURI(r),
			Request: ylog.HTTPData{
				Header:     toSimpleMap(r.Header),
				DataObject: reqBodyObj,
				DataString: reqBodyStr,
			},
			Response: ylog.HTTPData{
				Header:     toSimpleMap(rec.Header()),
				DataObject: respBodyData,
				DataString: respBodyStr,
			},
			Error:       errStr,
			ElapsedTime: time.Since(t1).Milliseconds(),
		})
	}
}
