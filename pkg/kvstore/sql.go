package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/segmentio/encoding/json"
	"github.com/yusufsyaifudin/cyberhook/pkg/tracer"
	"github.com/yusufsyaifudin/cyberhook/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

const (
	sqlCreateTable = `CREATE TABLE IF NOT EXISTS %s (
    key_name VARCHAR(255) NOT NULL PRIMARY KEY,
    value_json TEXT NOT NULL,
    updated_at BIGINT NOT NULL
);`

	sqlGetValue = `SELECT value_json FROM %s WHERE key_name = ? LIMIT 1;`

	// supported by postgres >= 9.5 and sqlite >= 3.24
	sqlUpsertValue = `INSERT INTO %s (key_name, value_json, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key_name) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at;`

	sqlDeleteValue = `DELETE FROM %s WHERE key_name = ?;`
)

var sqlTablePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]{0,62}$`)

type SQLConfig struct {
	DB        *sqlx.DB `validate:"required"`
	TableName string   `validate:"required"`
}

// SQL stores documents in one table, works on postgres and sqlite3 connections.
type SQL struct {
	Conf SQLConfig

	qGet    string
	qUpsert string
	qDelete string
}

var _ Store = (*SQL)(nil)

// NewSQL creates the table when it not exists yet.
func NewSQL(ctx context.Context, conf SQLConfig) (*SQL, error) {
	err := validator.Validate(conf)
	if err != nil {
		err = fmt.Errorf("error validate store sql: %w", err)
		return nil, err
	}

	if !sqlTablePattern.MatchString(conf.TableName) {
		err = fmt.Errorf("invalid table name '%s'", conf.TableName)
		return nil, err
	}

	_, err = conf.DB.ExecContext(ctx, fmt.Sprintf(sqlCreateTable, conf.TableName))
	if err != nil {
		err = fmt.Errorf("cannot prepare table %s: %w", conf.TableName, err)
		return nil, err
	}

	db := conf.DB
	return &SQL{
		Conf:    conf,
		qGet:    db.Rebind(fmt.Sprintf(sqlGetValue, conf.TableName)),
		qUpsert: db.Rebind(fmt.Sprintf(sqlUpsertValue, conf.TableName)),
		qDelete: db.Rebind(fmt.Sprintf(sqlDeleteValue, conf.TableName)),
	}, nil
}

func (s *SQL) GetAs(ctx context.Context, key string, out interface{}) error {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "kvstore.SQL.GetAs")
	defer span.End()

	var val string
	err := sqlx.GetContext(ctx, s.Conf.DB, &val, s.qGet, key)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrKeyNotExist, key)
	}

	if err != nil {
		return fmt.Errorf("error occured on sql store: %w", err)
	}

	return json.Unmarshal([]byte(val), out)
}

func (s *SQL) Set(ctx context.Context, key string, inValue interface{}) error {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "kvstore.SQL.Set")
	defer span.End()

	val, err := json.Marshal(inValue)
	if err != nil {
		err = fmt.Errorf("cannot marshal json value: %w", err)
		return err
	}

	_, err = s.Conf.DB.ExecContext(ctx, s.qUpsert, key, string(val), time.Now().UTC().UnixMicro())
	if err != nil {
		return fmt.Errorf("error occured on sql store: %w", err)
	}

	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	var span trace.Span
	ctx, span = tracer.StartSpan(ctx, "kvstore.SQL.Delete")
	defer span.End()

	_, err := s.Conf.DB.ExecContext(ctx, s.qDelete, key)
	if err != nil {
		return fmt.Errorf("error occured on sql store: %w", err)
	}

	return nil
}
