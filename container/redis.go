package container

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/yusufsyaifudin/cyberhook/pkg/closer"
)

// ConfigRedisResources is keyed by store label.
type ConfigRedisResources map[string]ConfigRedis

type RedisConnMaker struct {
	ctx     context.Context
	conf    ConfigRedisResources
	conn    map[string]redis.UniversalClient
	closers []closer.Named
}

func NewRedisConnMaker(ctx context.Context, conf ConfigRedisResources) (*RedisConnMaker, error) {
	instance := &RedisConnMaker{
		ctx:     ctx,
		conf:    conf,
		conn:    map[string]redis.UniversalClient{},
		closers: make([]closer.Named, 0),
	}

	err := instance.connect()
	if err != nil {
		// close previous opened connection if error happen
		if _err := instance.Close(); _err != nil {
			err = fmt.Errorf("close redis error: %w: %s", err, _err)
		}

		return nil, err
	}

	return instance, nil
}

func (i *RedisConnMaker) connect() error {
	ctx := i.ctx

	for key, connInfo := range i.conf {
		key = strings.TrimSpace(strings.ToLower(key))

		if len(connInfo.Address) == 0 {
			return fmt.Errorf("redis %s has no address", key)
		}

		var redisClient redis.UniversalClient
		switch connInfo.Mode {
		case "", "single":
			redisClient = redis.NewClient(&redis.Options{
				Addr:     connInfo.Address[0],
				Username: connInfo.Username,
				Password: connInfo.Password,
				DB:       connInfo.DB,
			})

		case "sentinel":
			redisClient = redis.NewFailoverClient(&redis.FailoverOptions{
				SentinelAddrs: connInfo.Address,
				Username:      connInfo.Username,
				Password:      connInfo.Password,
				DB:            connInfo.DB,
				MasterName:    connInfo.MasterName,
			})

		case "cluster":
			// cluster mode is not support DB selection
			redisClient = redis.NewClusterClient(&redis.ClusterOptions{
				Addrs:    connInfo.Address,
				Username: connInfo.Username,
				Password: connInfo.Password,
			})

		default:
			err := fmt.Errorf("unknown redis mode: %s", connInfo.Mode)
			return err
		}

		i.closers = append(i.closers, closer.New("redis "+key, redisClient)) // register the closer

		err := redisClient.Ping(ctx).Err()
		if err != nil {
			err = fmt.Errorf("error ping redis %s: %w", key, err)
			return err
		}

		i.conn[key] = redisClient
	}

	return nil
}

func (i *RedisConnMaker) Get(key string) (v redis.UniversalClient, err error) {
	key = strings.TrimSpace(strings.ToLower(key))
	v, ok := i.conn[key]
	if !ok {
		return nil, fmt.Errorf("key %s is not found in any redis topology", key)
	}

	return v, nil
}

func (i *RedisConnMaker) Close() error {
	return closer.CloseAll(i.ctx, i.closers)
}
