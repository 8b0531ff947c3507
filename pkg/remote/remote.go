// Package remote implements the HTTP client used to talk to the webcam
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultTimeout is used when no timeout is configured
const DefaultTimeout = 30 * time.Second

type (
	// Options configure the Client
	Options struct {
		Timeout   time.Duration
		UserAgent string
	}

	// Client executes the header-only and full requests against the
	// remote image. Transport level policy (timeouts) lives here.
	Client struct {
		client    *http.Client
		userAgent string
	}
)

// New creates a new Client from the given options
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Client{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
	}
}

// Head issues a headers-only request and returns the status code and
// response headers. The status is not interpreted.
func (c Client) Head(ctx context.Context, url string) (int, http.Header, error) {
	resp, err := c.do(ctx, http.MethodHead, url)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // HEAD has no body

	return resp.StatusCode, resp.Header, nil
}

// Get issues a full request and returns the payload stream. The caller
// must close it. Responses outside the 2xx range are returned as error.
func (c Client) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		resp.Body.Close() //nolint:errcheck,gosec // Error response is discarded anyways
		return nil, StatusError{Code: resp.StatusCode}
	}

	return resp.Body, nil
}

func (c Client) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "execute %s request", method)
	}

	return resp, nil
}

// StatusError is returned by Get for non-success responses
type StatusError struct {
	Code int
}

func (s StatusError) Error() string {
	return fmt.Sprintf("HTTP status signaled failure: %d", s.Code)
}
