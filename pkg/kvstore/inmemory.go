package kvstore

import (
	"context"
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/segmentio/encoding/json"
)

type InMemory struct {
	DB *fastcache.Cache
}

var _ Store = (*InMemory)(nil)

func NewInMemory() (*InMemory, error) {
	db := fastcache.New(32 * 1048576) // 32MB
	return &InMemory{
		DB: db,
	}, nil
}

// GetAs uses the big value API: a full history easily passes the 64KB limit of fastcache Set.
func (i *InMemory) GetAs(_ context.Context, key string, out interface{}) error {
	result := i.DB.GetBig(nil, []byte(key))
	if result == nil {
		return ErrKeyNotExist
	}

	return json.Unmarshal(result, out)
}

func (i *InMemory) Set(_ context.Context, key string, inValue interface{}) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return err
	}

	i.DB.SetBig([]byte(key), val)
	return nil
}

func (i *InMemory) Delete(_ context.Context, key string) error {
	i.DB.Del([]byte(key))
	return nil
}
