package sessionrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/yusufsyaifudin/cyberhook/pkg/kvstore"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"github.com/yusufsyaifudin/cyberhook/webhook"
	"github.com/yusufsyaifudin/ylog"
	"go.opentelemetry.io/otel/trace"
)

type KVConfig struct {
	Store      kvstore.Store `validate:"required"`
	StorageKey string        `validate:"required"`
}

// KVRepo stores the session as single named blob in kvstore.Store.
type KVRepo struct {
	Config KVConfig
}

var _ Repo = (*KVRepo)(nil)

func NewKV(cfg KVConfig) (*KVRepo, error) {
	if cfg.StorageKey == "" {
		cfg.StorageKey = DefaultStorageKey
	}

	if err := validator.Validate(cfg); err != nil {
		err = fmt.Errorf("session repo config: %w", err)
		return nil, err
	}

	return &KVRepo{
		Config: cfg,
	}, nil
}

// storedSession uses pointer to know whether a key exists in the blob.
type storedSession struct {
	Messages      *[]webhook.HistoryMessage `json:"messages"`
	CurrentConfig *webhook.Config           `json:"currentConfig"`
}

func (k *KVRepo) Load(ctx context.Context) (out OutLoad) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "sessionrepo.KVRepo.Load")
	defer span.End()

	out = OutLoad{
		Session:  webhook.DefaultSession(),
		Fallback: true,
	}

	var stored storedSession
	err := k.Config.Store.GetAs(ctx, k.Config.StorageKey, &stored)
	if errors.Is(err, kvstore.ErrKeyNotExist) {
		ylog.Info(ctx, "no saved session, using default", ylog.KV("key", k.Config.StorageKey))
		return
	}

	if err != nil {
		ylog.Error(ctx, "cannot load saved session, using default",
			ylog.KV("key", k.Config.StorageKey),
			ylog.KV("error", err.Error()),
		)
		return
	}

	if stored.CurrentConfig != nil {
		out.Session.CurrentConfig = *stored.CurrentConfig
	}

	if stored.Messages != nil && *stored.Messages != nil {
		messages := *stored.Messages
		if len(messages) > webhook.MaxHistory {
			messages = messages[:webhook.MaxHistory]
		}

		out.Session.Messages = messages
	}

	out.Fallback = false
	return
}

func (k *KVRepo) Save(ctx context.Context, in InputSave) (err error) {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "sessionrepo.KVRepo.Save")
	defer span.End()

	err = validator.Validate(in)
	if err != nil {
		err = fmt.Errorf("cannot save session: %w", err)
		return
	}

	session := webhook.Session{
		Messages:      in.Messages,
		CurrentConfig: in.Config,
	}

	if session.Messages == nil {
		session.Messages = make([]webhook.HistoryMessage, 0)
	}

	err = k.Config.Store.Set(ctx, k.Config.StorageKey, session)
	if err != nil {
		err = fmt.Errorf("cannot save session to key '%s': %w", k.Config.StorageKey, err)
		return
	}

	return
}

func (k *KVRepo) ClearHistory(ctx context.Context, in InputClearHistory) (err error) {
	return k.Save(ctx, InputSave{
		Config:   in.Config,
		Messages: make([]webhook.HistoryMessage, 0),
	})
}
