package txtracker

import (
	"net/url"
	"strings"
)

// BaseEndpoint strips the port and path from a node endpoint, keeping the
// scheme and host, so entries recorded against "https://node.example:8080/rpc"
// and "https://node.example" compare equal. Inputs that do not parse as a URL
// fall back to keeping everything up to the second colon, which preserves the
// scheme separator of an otherwise malformed endpoint.
func BaseEndpoint(endpoint string) string {
	if endpoint == "" {
		return ""
	}

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Hostname() != "" {
		return u.Scheme + "://" + u.Hostname()
	}

	parts := strings.Split(endpoint, ":")
	if len(parts) >= 2 {
		return strings.Join(parts[:2], ":")
	}
	return endpoint
}
