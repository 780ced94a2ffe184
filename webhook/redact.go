package webhook

import (
	"regexp"
)

var endpointTokenPattern = regexp.MustCompile(`(https://discord(?:app)?\.com/api/webhooks/\d+/)[\w-]+`)

// RedactEndpoint masks the token of every webhook URL found in s, the id is kept.
func RedactEndpoint(s string) string {
	return endpointTokenPattern.ReplaceAllString(s, "${1}***")
}
