package restapi

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/pkg/respbuilder"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/handlermsg"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi/handlersession"
	"go.opentelemetry.io/otel"
)

type Config struct {
	AppServiceName string            `validate:"required"`
	AppVersion     string            `validate:"required"`
	SubmitService  submitsvc.Service `validate:"required"`
}

type DefaultHTTP struct {
	router *chi.Mux
}

type HealthResp struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

func NewHTTPTransport(cfg Config) (*DefaultHTTP, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("http transport cfg error: %w", err)
	}

	handlerSession, err := handlersession.NewHandler(handlersession.HandlerConfig{
		SubmitService: cfg.SubmitService,
	})
	if err != nil {
		return nil, err
	}

	handlerMessage, err := handlermsg.NewHandler(handlermsg.HandlerConfig{
		SubmitService: cfg.SubmitService,
	})
	if err != nil {
		return nil, err
	}

	router := chi.NewRouter()

	skip := func(r *http.Request) bool {
		switch strings.TrimSpace(path.Clean(r.URL.Path)) {
		case "/health",
			"/ping":
			return true
		}

		return false
	}

	router.Use(middleware.StripSlashes)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Retry-After", "Tracer-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	router.Use(func(next http.Handler) http.Handler {
		return tracer.Middleware(tracer.MiddlewareConfig{
			TracerName:     "github.com/yusufsyaifudin/cyberhook",
			ServiceName:    cfg.AppServiceName,
			SkipFunc:       skip,
			TracerProvider: otel.GetTracerProvider(),    // global tracer provider
			TextPropagator: otel.GetTextMapPropagator(), // use global text map propagator
		}, next)
	})

	// add trace id and also log request response
	router.Use(func(next http.Handler) http.Handler {
		return requestLogger(skip, next)
	})

	health := func(w http.ResponseWriter, r *http.Request) {
		resp := respbuilder.Success(r.Context(), HealthResp{
			Service: cfg.AppServiceName,
			Version: cfg.AppVersion,
			Status:  "ok",
		})
		respbuilder.WriteJSON(http.StatusOK, w, r, resp)
	}

	router.Get("/health", health)
	router.Get("/ping", health)

	router.Get("/api/v1/session", handlerSession.GetSession())
	router.Put("/api/v1/config", handlerSession.PutConfig())
	router.Get("/api/v1/webhooks/validate", handlerSession.ValidateWebhook())

	// Resource: messages
	router.Route("/api/v1/messages", func(r chi.Router) {
		r.Post("/", handlerMessage.SendMessage())   // send message
		r.Delete("/", handlerMessage.ClearHistory()) // clear sent history
	})

	instance := &DefaultHTTP{
		router: router,
	}

	return instance, nil
}

// Server .
func (a *DefaultHTTP) Server() http.Handler {
	return a.router
}
