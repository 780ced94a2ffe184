package multidb

import (
	"context"

	sqldblogger "github.com/simukti/sqldb-logger"
	"github.com/yusufsyaifudin/ylog"
)

// queryLogger only used when the database config has debug enabled.
type queryLogger struct {
	label string
}

var _ sqldblogger.Logger = (*queryLogger)(nil)

func (q *queryLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	if level == sqldblogger.LevelError {
		ylog.Error(ctx, msg, ylog.KV("db", q.label), ylog.KV("sql", data))
		return
	}

	ylog.Debug(ctx, msg, ylog.KV("db", q.label), ylog.KV("level", level.String()), ylog.KV("sql", data))
}
