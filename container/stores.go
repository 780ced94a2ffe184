package container

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/yusufsyaifudin/cyberhook/pkg/kvstore"
	"github.com/yusufsyaifudin/cyberhook/pkg/multidb"
	"github.com/yusufsyaifudin/ylog"
	"go.uber.org/multierr"
)

// sqlTableName holds every key of kvstore.SQL.
const sqlTableName = "cyberhook_kv"

// Stores is an abstraction layer to list down all configured key value stores.
// To use this, you must select the store label based on config file.
type Stores interface {
	io.Closer

	Store(ctx context.Context, label string) (kvstore.Store, error)
}

// StoresImpl the real implementation of Stores
type StoresImpl struct {
	ctx       context.Context
	resources ConfigStoreResources
	dbSqlConn multidb.MultiDB // nil when no sql store is configured
	redisConn *RedisConnMaker // nil when no redis store is configured

	lock   sync.Mutex
	stores map[string]kvstore.Store
}

var _ Stores = (*StoresImpl)(nil)

// SetupStores connects every enabled sql and redis resource right away, so a bad config fails at start.
// Caller must Close the returned value.
func SetupStores(ctx context.Context, conf ConfigStoreResources) (*StoresImpl, error) {
	sqlDbConfig := multidb.DatabaseResources{}
	redisConfig := ConfigRedisResources{}

	for label, res := range conf {
		if res.Disable {
			continue
		}

		switch res.Driver {
		case DriverPostgres:
			sqlDbConfig[label] = multidb.DatabaseResource{
				Driver:   multidb.Postgres,
				Postgres: multidb.GoSqlDb(res.SQL),
			}

		case DriverSqlite3:
			sqlDbConfig[label] = multidb.DatabaseResource{
				Driver:  multidb.Sqlite3,
				Sqlite3: multidb.GoSqlDb(res.SQL),
			}

		case DriverRedis:
			redisConfig[label] = res.Redis
		}
	}

	instance := &StoresImpl{
		ctx:       ctx,
		resources: conf,
		stores:    map[string]kvstore.Store{},
	}

	if len(sqlDbConfig) > 0 {
		dbSqlConn, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{Config: sqlDbConfig})
		if err != nil {
			return nil, err
		}

		instance.dbSqlConn = dbSqlConn
	}

	if len(redisConfig) > 0 {
		redisConn, err := NewRedisConnMaker(ctx, redisConfig)
		if err != nil {
			return nil, multierr.Append(err, instance.Close())
		}

		instance.redisConn = redisConn
	}

	return instance, nil
}

// Store returns the same instance for the same label.
func (s *StoresImpl) Store(ctx context.Context, label string) (store kvstore.Store, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if store, ok := s.stores[label]; ok {
		return store, nil
	}

	res, ok := s.resources[label]
	if !ok {
		err = fmt.Errorf("unknown store label '%s'", label)
		return
	}

	if res.Disable {
		err = fmt.Errorf("store with label '%s' is disabled", label)
		return
	}

	switch res.Driver {
	case DriverFile:
		store, err = kvstore.NewFile(kvstore.FileConfig{Dir: res.File.Path})

	case DriverMemory:
		store, err = kvstore.NewInMemory()

	case DriverRedis:
		if s.redisConn == nil {
			err = fmt.Errorf("redis store '%s' is not connected", label)
			return
		}

		redisClient, _err := s.redisConn.Get(label)
		if _err != nil {
			err = _err
			return
		}

		store, err = kvstore.NewRedis(kvstore.RedisConfig{DB: redisClient})

	case DriverPostgres, DriverSqlite3:
		if s.dbSqlConn == nil {
			err = fmt.Errorf("sql store '%s' is not connected", label)
			return
		}

		db, _err := s.dbSqlConn.GetSqlx(multidb.Driver(res.Driver), label)
		if _err != nil {
			err = _err
			return
		}

		store, err = kvstore.NewSQL(ctx, kvstore.SQLConfig{DB: db, TableName: sqlTableName})

	default:
		err = fmt.Errorf("not supported store driver '%s' on label '%s'", res.Driver, label)
		return
	}

	if err != nil {
		err = fmt.Errorf("cannot prepare store '%s': %w", label, err)
		return
	}

	ylog.Debug(ctx, "store ready", ylog.KV("label", label), ylog.KV("driver", res.Driver))
	s.stores[label] = store
	return
}

// Close will close all dependencies.
func (s *StoresImpl) Close() error {
	if s == nil {
		return nil
	}

	var err error
	if s.dbSqlConn != nil {
		if _err := s.dbSqlConn.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close db error: %w", _err))
		}
	}

	if s.redisConn != nil {
		if _err := s.redisConn.Close(); _err != nil {
			err = multierr.Append(err, fmt.Errorf("close redis error: %w", _err))
		}
	}

	return err
}
