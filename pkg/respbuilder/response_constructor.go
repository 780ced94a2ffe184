package respbuilder

import (
	"context"
)

// Error builds the error envelope. Unknown kind hides err, it may contain internal detail.
func Error(ctx context.Context, reasonKind ErrKind, err error) HTTPError {
	entity := ErrorEntity{
		TraceID: Extract(ctx).AppTraceID,
	}

	reason, ok := ReasonMap[reasonKind]
	if !ok {
		entity.Code = "XX"
		entity.Message = "unknown error kind"
		return HTTPError{Err: entity}
	}

	entity.Code = reason.Code
	entity.Message = reason.Message
	if err != nil {
		entity.Debug = err.Error()
	}

	return HTTPError{Err: entity}
}

func Success(ctx context.Context, data interface{}) HTTPSuccess {
	return HTTPSuccess{
		TraceID: Extract(ctx).AppTraceID,
		Data:    data,
	}
}
