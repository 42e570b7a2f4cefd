package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/tox-wtf/lfstage/internal/version"
)

// Common errors.
var (
	ErrNotFound         = errors.New("http: resource not found")
	ErrForbidden        = errors.New("http: access forbidden")
	ErrUnauthorized     = errors.New("http: unauthorized")
	ErrTooManyRedirects = errors.New("http: too many redirects")
)

// StatusError is returned when the server responds with a non-success
// status code.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http: unexpected status: %s", e.Status)
}

// Options configures the HTTP client.
type Options struct {
	// RedirectLimit is the maximum number of redirects to follow.
	// Default: 16
	RedirectLimit int

	// ConnectTimeout bounds connection establishment, not the whole
	// transfer. Source tarballs can take minutes to stream, so there is
	// deliberately no overall request timeout.
	// Default: 32s
	ConnectTimeout time.Duration

	// UserAgent identifies the client on every request.
	// Default: lfstage/<version>
	UserAgent string

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	// Default: 16
	MaxIdleConnsPerHost int
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		RedirectLimit:       16,
		ConnectTimeout:      32 * time.Second,
		UserAgent:           version.UserAgent(),
		MaxIdleConnsPerHost: 16,
	}
}

// Client is a shared HTTP client for source downloads. One Client is
// constructed per run and its pointer is handed to every concurrent fetch;
// the underlying connection pool handles its own locking.
type Client struct {
	client *http.Client
	opts   Options
}

// NewClient creates a new HTTP client with the given options. Zero option
// fields take their defaults. An error here is fatal to the whole run,
// since no fetch can proceed without a client.
func NewClient(opts Options) (*Client, error) {
	def := DefaultOptions()
	if opts.RedirectLimit == 0 {
		opts.RedirectLimit = def.RedirectLimit
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = def.ConnectTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.MaxIdleConnsPerHost == 0 {
		opts.MaxIdleConnsPerHost = def.MaxIdleConnsPerHost
	}

	if opts.RedirectLimit < 0 {
		return nil, fmt.Errorf("http: redirect limit must not be negative: %d", opts.RedirectLimit)
	}
	if opts.ConnectTimeout < 0 {
		return nil, fmt.Errorf("http: connect timeout must not be negative: %s", opts.ConnectTimeout)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: opts.ConnectTimeout,
		}).DialContext,
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		MaxIdleConns:        opts.MaxIdleConnsPerHost * 2,
		IdleConnTimeout:     90 * time.Second,
	}

	limit := opts.RedirectLimit
	return &Client{
		client: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= limit {
					return ErrTooManyRedirects
				}
				return nil
			},
		},
		opts: opts,
	}, nil
}

// Get issues a GET request and returns the response with its body still
// open on success. Non-2xx responses are closed and returned as errors.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}

	if err := checkStatusCode(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	return resp, nil
}

// LastModified parses the Last-Modified header of a response, reporting
// whether one was present and valid.
func LastModified(resp *http.Response) (time.Time, bool) {
	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return time.Time{}, false
	}
	t, err := http.ParseTime(lm)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// checkStatusCode returns an appropriate error for non-success status codes.
func checkStatusCode(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, resp.Status)
	case code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, resp.Status)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, resp.Status)
	default:
		return &StatusError{Code: code, Status: resp.Status}
	}
}
