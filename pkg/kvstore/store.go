package kvstore

import (
	"context"
	"fmt"
)

var (
	ErrKeyNotExist = fmt.Errorf("store key not exists")
)

// Store keeps one JSON document per key. Values never expire.
type Store interface {
	GetAs(ctx context.Context, key string, out interface{}) error
	Set(ctx context.Context, key string, inValue interface{}) error
	Delete(ctx context.Context, key string) error
}
