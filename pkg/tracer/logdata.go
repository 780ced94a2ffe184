package tracer

// LogData is injected into every log entry via ylog tracer.
type LogData struct {
	RemoteAddr string `json:"remote_addr"`
	TraceID    string `json:"trace_id"`
}
