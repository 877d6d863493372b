package source

import (
	"net/http"
	"time"
)

type options struct {
	client *http.Client
}

func defaultOptions() options {
	return options{client: &http.Client{Timeout: 30 * time.Second}}
}

// Option configures Open.
type Option func(*options)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}
