package extd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satori/uuid"
	"github.com/yusufsyaifudin/cyberhook/assets"
	"github.com/yusufsyaifudin/cyberhook/backend"
	"github.com/yusufsyaifudin/cyberhook/backend/bediscord"
	"github.com/yusufsyaifudin/cyberhook/container"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/transport/restapi"
	"github.com/yusufsyaifudin/ylog"
	jaegerPropagator "go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/contrib/propagators/ot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 10 * time.Second

// RunServer located in extd (extended) to add capability extends backend if you want to create custom backend.
// Custom backend must be registered before calling RunServer, and selected using webhook.backend config.
func RunServer(ctx context.Context, cfg container.Config) (err error) {

	if ctx == nil {
		ctx = context.TODO()
	}

	ctx = SetupLog(ctx, os.Stdout, zapcore.DebugLevel)

	// ** tracing, only when enabled
	shutdownTracer, err := SetupTracing(ctx, cfg.Tracing)
	if err != nil {
		ylog.Error(ctx, "cannot setup tracing", ylog.KV("error", err))
		return
	}

	defer func() {
		if _err := shutdownTracer(context.Background()); _err != nil {
			ylog.Error(ctx, "tracer shutdown: failed", ylog.KV("error", _err))
		}
	}()

	err = RegisterDefaultBackends(ctx, cfg.Webhook)
	if err != nil {
		ylog.Error(ctx, "register default backend failed", ylog.KV("error", err))
		return
	}

	ylog.Info(ctx, "container preparation: starting")
	services, closer, err := Prepare(ctx, cfg)
	defer func() {
		ylog.Info(ctx, "closing container: starting")
		if closer == nil {
			ylog.Info(ctx, "closing container: no need to close")
			return
		}

		if _err := closer.Close(); _err != nil {
			ylog.Error(ctx, "closing container: failed", ylog.KV("error", _err))
		}

		ylog.Info(ctx, "closing container: done")
	}()

	if err != nil {
		ylog.Error(ctx, "container preparation: failed", ylog.KV("error", err))
		return
	}

	ylog.Info(ctx, "container preparation: done")

	// ** HTTP TRANSPORT
	ylog.Info(ctx, "transport preparation: starting")
	serverConfig := restapi.Config{
		AppServiceName: assets.ServiceName,
		AppVersion:     assets.Version,
		SubmitService:  services.Submit(),
	}

	ylog.Info(ctx, "http transport: starting")
	server, err := restapi.NewHTTPTransport(serverConfig)
	if err != nil {
		ylog.Error(ctx, "http transport: failed", ylog.KV("error", err))
		return
	}

	httpPort := fmt.Sprintf(":%d", cfg.Transport.HTTP.Port)
	h2s := &http2.Server{}
	httpServer := &http.Server{
		Addr:              httpPort,
		Handler:           h2c.NewHandler(server.Server(), h2s), // HTTP/2 Cleartext handler
		ReadHeaderTimeout: 10 * time.Second,
	}

	var apiErrChan = make(chan error, 1)
	go func() {
		ylog.Info(ctx, fmt.Sprintf("http transport: done running on port %d", cfg.Transport.HTTP.Port))
		apiErrChan <- httpServer.ListenAndServe()
	}()

	ylog.Info(ctx, "system: up and running...")

	// ** listen for sigterm signal
	var signalChan = make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-signalChan:
		ylog.Info(ctx, "system: exiting...")
		ylog.Info(ctx, "http transport: exiting...")

		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()

		if _err := httpServer.Shutdown(shutdownCtx); _err != nil {
			ylog.Error(ctx, "http transport: ", ylog.KV("error", _err))
		}

	case err = <-apiErrChan:
		if err != nil {
			ylog.Info(ctx, "http transport: error", ylog.KV("error", err))
		}
	}

	return
}

// Prepare connects the configured stores and build the services on top of it.
// Closer is returned even on error, so the partially opened connection can be closed.
func Prepare(ctx context.Context, cfg container.Config) (services container.Services, closer io.Closer, err error) {
	stores, err := container.SetupStores(ctx, cfg.StoreResources)
	if err != nil {
		err = fmt.Errorf("stores preparation: %w", err)
		return
	}

	closer = stores

	// ** START SERVICES using configured stores
	ylog.Info(ctx, "services preparation: starting")
	services, err = container.SetupServices(ctx, cfg, stores)
	if err != nil {
		err = fmt.Errorf("services preparation: %w", err)
		return
	}

	ylog.Info(ctx, "services preparation: done")
	return
}

// SetupTracing register jaeger exporter as global tracer provider when enabled.
// The propagator is always set, so incoming trace header is still forwarded.
func SetupTracing(ctx context.Context, cfg container.ConfigTracing) (shutdown func(context.Context) error, err error) {
	shutdown = func(context.Context) error { return nil }

	// register ot propagator
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		&ot.OT{},
		&jaegerPropagator.Jaeger{},
	))

	if cfg.Disable {
		ylog.Debug(ctx, "tracing disabled")
		return
	}

	exp, err := jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)),
	)
	if err != nil {
		err = fmt.Errorf("cannot setup jaeger exporter: %w", err)
		return
	}

	tp := tracer.InitTraceProvider(exp, os.Getenv("CYBERHOOK_ENV"))
	shutdown = tp.Shutdown
	ylog.Info(ctx, "tracing enabled", ylog.KV("endpoint", cfg.JaegerEndpoint))
	return
}

// SetupLog set zap as ylog global logger and inject system tracer data into ctx.
func SetupLog(ctx context.Context, w io.Writer, level zapcore.Level) context.Context {

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			TimeKey:        "ts",
			MessageKey:     "msg",
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			LineEnding:     zapcore.DefaultLineEnding,
			LevelKey:       "level",
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
		}),
		zapcore.NewMultiWriteSyncer(zapcore.AddSync(w)), // pipe to multiple writer
		level,
	)

	zapLog := zap.New(core)

	propagateData := tracer.LogData{
		RemoteAddr: "system",
		TraceID:    uuid.NewV4().String(),
	}

	traceLog, err := ylog.NewTracer(propagateData, ylog.WithTag("tracer"))
	if err != nil {
		log.Fatalf("error prepare tracer system data: %s", err)
		return ctx
	}

	// inject context
	ctx = ylog.Inject(ctx, traceLog)

	// ** set global logger
	ylog.SetGlobalLogger(ylog.NewZap(zapLog))

	return ctx
}

// RegisterDefaultBackends registers noop and discord. Calling it twice is fine.
func RegisterDefaultBackends(ctx context.Context, cfg container.ConfigWebhook) (err error) {
	ylog.Info(ctx, "registering default webhook backends")

	beDiscord, err := bediscord.NewBE(bediscord.Config{
		Timeout: cfg.Timeout,
	})
	if err != nil {
		err = fmt.Errorf("be discord failed: %w", err)
		return
	}

	var errs error
	for provider, sender := range map[string]backend.Sender{
		"noop":             backend.NewNoopSender(),
		bediscord.Provider: beDiscord,
	} {
		_err := backend.Register(provider, sender)
		if _err == nil || errors.Is(_err, backend.ErrProviderAlreadyRegistered) {
			continue
		}

		errs = multierr.Append(errs, fmt.Errorf("register backend %s failed: %w", provider, _err))
	}

	return errs
}
