package assets

const (
	ServiceName = "cyberhook"
	Version     = "1.0.0"
)
