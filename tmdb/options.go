package tmdb

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTransport wraps the HTTP client's transport, e.g. with metrics instrumentation.
func WithTransport(wrap func(http.RoundTripper) http.RoundTripper) Option {
	return func(c *Client) {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient.Transport = wrap(base)
	}
}

// WithBearerToken authenticates with a v4 read access token.
func WithBearerToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLanguage sets the language parameter sent with every request.
func WithLanguage(language string) Option {
	return func(c *Client) {
		c.language = language
	}
}
