package bediscord_test

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yusufsyaifudin/cyberhook/backend/bediscord"
	"github.com/yusufsyaifudin/cyberhook/webhook"
)

func newBE(t *testing.T) *bediscord.Backend {
	be, err := bediscord.NewBE(bediscord.Config{})
	require.NoError(t, err)
	return be
}

func TestBackend_Send(t *testing.T) {
	jsonBody := webhook.Body{
		ContentType: "application/json",
		Data:        []byte(`{"content":"hello","username":"CyberHook"}`),
	}

	t.Run("success posts exactly once", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			b, _ := io.ReadAll(r.Body)
			assert.Equal(t, string(jsonBody.Data), string(b))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		report, err := newBE(t).Send(context.Background(), srv.URL+"/api/webhooks/1/token", jsonBody)
		assert.NoError(t, err)
		if assert.NotNil(t, report) {
			assert.Equal(t, http.StatusNoContent, report.StatusCode)
			assert.Equal(t, bediscord.Provider, report.Provider)
		}
		assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	})

	t.Run("multipart content type kept", func(t *testing.T) {
		body, err := webhook.Assemble(webhook.AssembleInput{
			Config:  webhook.DefaultConfig(),
			Content: "with file",
			Attachments: []webhook.Attachment{
				{Filename: "a.txt", ContentType: "text/plain", Data: []byte("abc")},
			},
		})
		require.NoError(t, err)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			assert.NoError(t, err)
			assert.Equal(t, "multipart/form-data", mediaType)

			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.NotEmpty(t, r.FormValue("payload_json"))
			_, _, err = r.FormFile("files[0]")
			assert.NoError(t, err)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		_, err = newBE(t).Send(context.Background(), srv.URL, body)
		assert.NoError(t, err)
	})

	t.Run("non 2xx with discord message", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Unknown Webhook", "code": 10015}`))
		}))
		defer srv.Close()

		report, err := newBE(t).Send(context.Background(), srv.URL, jsonBody)
		assert.Nil(t, report)

		var transportErr *webhook.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.StatusNotFound, transportErr.HTTPStatus)
		assert.Equal(t, "Unknown Webhook", transportErr.ServerMessage)
		assert.False(t, transportErr.NetworkFailure)
		assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
	})

	t.Run("non 2xx without json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("bad gateway"))
		}))
		defer srv.Close()

		_, err := newBE(t).Send(context.Background(), srv.URL, jsonBody)

		var transportErr *webhook.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.Equal(t, http.StatusBadGateway, transportErr.HTTPStatus)
		assert.Empty(t, transportErr.ServerMessage)
	})

	t.Run("network failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		_, err := newBE(t).Send(context.Background(), url, jsonBody)

		var transportErr *webhook.TransportError
		require.True(t, errors.As(err, &transportErr))
		assert.True(t, transportErr.NetworkFailure)
		assert.Zero(t, transportErr.HTTPStatus)
		assert.Error(t, transportErr.Err)
	})
}

func TestNewBE(t *testing.T) {
	_, err := bediscord.NewBE(bediscord.Config{Timeout: -1})
	assert.Error(t, err)
}
