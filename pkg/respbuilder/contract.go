package respbuilder

// ErrKind is the stable error category returned to the API client, independent of http status.
type ErrKind int64

const (
	ErrUnhandled ErrKind = iota + 1
	ErrValidation
	ErrDuplicateEntries
	ErrResourceNotFound
	ErrUnauthorized
	ErrPrecondition
	ErrConflict
	ErrRateLimited
	ErrUpstream
)

type Reason struct {
	Code    string
	Message string
}

var ReasonMap = map[ErrKind]Reason{
	ErrUnhandled:        {Code: "01", Message: "unhandled error"},
	ErrValidation:       {Code: "02", Message: "error validation"},
	ErrDuplicateEntries: {Code: "03", Message: "duplicate entries"},
	ErrResourceNotFound: {Code: "04", Message: "resource not found"},
	ErrUnauthorized:     {Code: "05", Message: "unauthorized"},
	ErrPrecondition:     {Code: "06", Message: "webhook not configured"},
	ErrConflict:         {Code: "07", Message: "submission already in progress"},
	ErrRateLimited:      {Code: "08", Message: "rate limited"},
	ErrUpstream:         {Code: "09", Message: "webhook delivery failed"},
}

// ErrorEntity Code and Message only depend on ErrKind, Debug holds the actual error.
type ErrorEntity struct {
	Code    string `json:"error_code"`
	Message string `json:"error_description"`
	Debug   string `json:"debug,omitempty"`
	TraceID string `json:"trace_id"`

	// RetryAfterMs only set when rate limited.
	RetryAfterMs int64 `json:"retry_after_ms,omitempty"`
}

// HTTPError is always wrapped in error key: {"error":{"error_code":"08",...}}
type HTTPError struct {
	Err ErrorEntity `json:"error"`
}

func (e HTTPError) Error() string {
	return e.Err.Message + ": " + e.Err.Debug
}

// HTTPSuccess success response always wrap in data key.
type HTTPSuccess struct {
	TraceID string      `json:"trace_id"`
	Data    interface{} `json:"data"`
}
