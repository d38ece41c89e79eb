// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"time"
)

type Client struct {
	httpClient *http.Client
}

// NewClient builds a client with a hard timeout. All backend calls go
// through it so no request can hang past the configured deadline.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewCredentialedClient builds a client with a cookie jar, used for the
// cookie-based backend session.
func NewCredentialedClient(timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}

// Jar exposes the cookie jar so a session cookie can be seeded at login.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}
