// Package scrape retrieves company web pages and turns them into plain
// content plus the links they carry. It owns fetching with retry, the TTL
// page cache, and HTML extraction.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"prospectus/weburl"
)

// defaultMaxRetries is the attempt cap per fetch.
const defaultMaxRetries = 3

// Fetcher fetches web content with retry and security checks.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodySize  int64
	maxRetries   int
	allowPrivate bool
	logger       *slog.Logger

	// backoffUnit scales the retry backoff. Tests shrink it.
	backoffUnit time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxRetries sets the attempt cap per fetch.
func WithMaxRetries(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxRetries = n
		}
	}
}

// WithAllowPrivateHosts disables the private-address guard. Meant for
// local development and tests against loopback servers.
func WithAllowPrivateHosts(allow bool) FetcherOption {
	return func(f *Fetcher) {
		f.allowPrivate = allow
	}
}

// WithHTTPClient replaces the built transport entirely.
func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a web fetcher. Timeout bounds each attempt, not the
// whole retry sequence.
func NewFetcher(timeout time.Duration, userAgent string, maxBodySize int64, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		userAgent:   userAgent,
		maxBodySize: maxBodySize,
		maxRetries:  defaultMaxRetries,
		logger:      slog.Default(),
		backoffUnit: time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = newHTTPClient(timeout, f.allowPrivate)
	}

	return f
}

// newHTTPClient builds a client whose dialer re-validates resolved IPs, so
// a public hostname cannot be rebound to a private address between the URL
// check and the connection.
func newHTTPClient(timeout time.Duration, allowPrivate bool) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	dialContext := dialer.DialContext
	if !allowPrivate {
		dialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, fmt.Errorf("invalid address: %w", err)
			}

			ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, fmt.Errorf("DNS lookup failed: %w", err)
			}

			for _, ipAddr := range ips {
				if weburl.IsPrivateIP(ipAddr.IP) {
					return nil, fmt.Errorf("connection to private IP %s is not allowed", ipAddr.IP)
				}
			}

			for _, ipAddr := range ips {
				connAddr := net.JoinHostPort(ipAddr.IP.String(), port)
				conn, err := dialer.DialContext(ctx, network, connAddr)
				if err == nil {
					return conn, nil
				}
			}

			return nil, fmt.Errorf("failed to connect to any resolved IP")
		}
	}

	return &http.Client{
		Transport: &http.Transport{
			DialContext:           dialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
		},
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			if !allowPrivate {
				if err := weburl.ValidatePublic(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
			}
			return nil
		},
	}
}

// Fetch retrieves the raw body from the given URL, retrying transient
// failures with exponential backoff (1s, 2s, ...).
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	if !f.allowPrivate {
		if err := weburl.ValidatePublic(urlStr); err != nil {
			return nil, &FetchError{URL: urlStr, Reason: ReasonBlocked, Err: err}
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * f.backoffUnit
			f.logger.Debug("Fetch failed, retrying",
				"url", urlStr,
				"attempt", attempt,
				"backoff", backoff,
				"error", lastErr)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, err := f.doFetch(ctx, urlStr)
		if err == nil {
			return body, nil
		}

		lastErr = err
		if !retryableFetch(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// doFetch executes a single HTTP GET.
func (f *Fetcher) doFetch(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, &FetchError{URL: urlStr, Reason: ReasonTransport, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		reason := ReasonTransport
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			reason = ReasonTimeout
		}
		return nil, &FetchError{URL: urlStr, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: urlStr, StatusCode: resp.StatusCode, Reason: ReasonStatus}
	}

	// Read one byte past the cap to tell "at the limit" from "over it".
	limited := io.LimitReader(resp.Body, f.maxBodySize+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, &FetchError{URL: urlStr, Reason: ReasonTransport, Err: err}
	}

	if int64(len(body)) > f.maxBodySize {
		return nil, &FetchError{
			URL:    urlStr,
			Reason: ReasonTooLarge,
			Err:    fmt.Errorf("content exceeds %d bytes", f.maxBodySize),
		}
	}

	return body, nil
}

// retryableFetch reports whether a failed attempt is worth repeating.
// Timeouts, transport errors, rate limits and server errors are; client
// errors and oversized bodies are not.
func retryableFetch(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return false
	}

	switch fe.Reason {
	case ReasonTimeout, ReasonTransport:
		return true
	case ReasonStatus:
		return fe.StatusCode == http.StatusTooManyRequests || fe.StatusCode >= 500
	default:
		return false
	}
}
