package container

import (
	"context"
	"fmt"

	"github.com/yusufsyaifudin/cyberhook/backend"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/sessionrepo"
	"github.com/yusufsyaifudin/cyberhook/internal/svc/submitsvc"
	"github.com/yusufsyaifudin/cyberhook/pkg/uid"
)

type Services interface {
	UIDGen() uid.UID
	SessionRepo() sessionrepo.Repo
	Submit() submitsvc.Service
}

type ServicesImpl struct {
	uidGen  uid.UID
	repo    sessionrepo.Repo
	session submitsvc.Service
}

var _ Services = (*ServicesImpl)(nil)

// SetupServices expects the webhook backend named in cfg.Webhook.Backend already registered in backend.MuxBackend.
func SetupServices(ctx context.Context, cfg Config, stores Stores) (svc *ServicesImpl, err error) {
	if stores == nil {
		err = fmt.Errorf("nil stores on services preparation")
		return
	}

	uidGen, err := uid.NewSonyflake()
	if err != nil {
		err = fmt.Errorf("services cannot prepare uid generator: %w", err)
		return
	}

	// ** Prepare session repository
	store, err := stores.Store(ctx, cfg.Session.StoreLabel)
	if err != nil {
		err = fmt.Errorf("services cannot get session store: %w", err)
		return
	}

	repo, err := sessionrepo.NewKV(sessionrepo.KVConfig{
		Store:      store,
		StorageKey: cfg.Session.StorageKey,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare session repo: %w", err)
		return
	}

	sender, err := backend.MuxBackend().Lookup(cfg.Webhook.Backend)
	if err != nil {
		err = fmt.Errorf("services cannot get webhook backend '%s': %w", cfg.Webhook.Backend, err)
		return
	}

	// ** Prepare submission controller, this restores the saved session
	submitSvc, err := submitsvc.New(ctx, submitsvc.Config{
		Repo:   repo,
		Sender: sender,
		UIDGen: uidGen,
	})
	if err != nil {
		err = fmt.Errorf("services cannot prepare submit service: %w", err)
		return
	}

	svc = &ServicesImpl{
		uidGen:  uidGen,
		repo:    repo,
		session: submitSvc,
	}

	return svc, nil
}

func (s *ServicesImpl) UIDGen() uid.UID {
	return s.uidGen
}

func (s *ServicesImpl) SessionRepo() sessionrepo.Repo {
	return s.repo
}

func (s *ServicesImpl) Submit() submitsvc.Service {
	return s.session
}
