package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
)

type RedisConfig struct {
	DB redis.UniversalClient `validate:"required"`
}

type Redis struct {
	Conf RedisConfig
}

var _ Store = (*Redis)(nil)

func NewRedis(conf RedisConfig) (*Redis, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("error validate store redis: %w", err)
		return nil, err
	}

	return &Redis{Conf: conf}, nil
}

func (r *Redis) GetAs(ctx context.Context, key string, out interface{}) error {
	val, err := r.Conf.DB.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		err = fmt.Errorf("%w: %s", ErrKeyNotExist, err)
		return err
	}

	if err != nil {
		err = fmt.Errorf("error occured on redis: %w", err)
		return err
	}

	return json.Unmarshal(val, out)
}

// Set stores without expiration.
func (r *Redis) Set(ctx context.Context, key string, inValue interface{}) error {
	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return err
	}

	err = r.Conf.DB.Set(ctx, key, val, 0).Err()
	if err != nil {
		err = fmt.Errorf("error occured on redis: %w", err)
		return err
	}

	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	err := r.Conf.DB.Del(ctx, key).Err()
	if err != nil {
		err = fmt.Errorf("error occured on redis: %w", err)
		return err
	}

	return nil
}
