package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// newTestFetcher builds a fetcher pointed at test servers: private hosts
// allowed, near-zero backoff.
func newTestFetcher(opts ...FetcherOption) *Fetcher {
	base := []FetcherOption{WithAllowPrivateHosts(true)}
	f := NewFetcher(2*time.Second, "prospectus-test", 1024*1024, append(base, opts...)...)
	f.backoffUnit = time.Millisecond
	return f
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "prospectus-test" {
			t.Errorf("User-Agent = %q, want %q", got, "prospectus-test")
		}
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	body, err := newTestFetcher().Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(string(body), "hello") {
		t.Errorf("body = %q, want it to contain %q", body, "hello")
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("recovered"))
	}))
	defer server.Close()

	body, err := newTestFetcher(WithMaxRetries(3)).Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("body = %q, want %q", body, "recovered")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestFetcher(WithMaxRetries(3)).Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Fetch() should fail after exhausting retries")
	}

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *FetchError", err)
	}
	if fe.Reason != ReasonStatus || fe.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("FetchError = %+v, want status reason with 503", fe)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3", got)
	}
}

func TestFetchClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestFetcher(WithMaxRetries(3)).Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *FetchError", err)
	}
	if fe.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", fe.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server saw %d requests, want 1 (no retry on 404)", got)
	}
}

func TestFetchTimeoutReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := NewFetcher(20*time.Millisecond, "prospectus-test", 1024, WithAllowPrivateHosts(true), WithMaxRetries(1))
	f.backoffUnit = time.Millisecond

	_, err := f.Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *FetchError", err)
	}
	if fe.Reason != ReasonTimeout {
		t.Errorf("Reason = %q, want %q", fe.Reason, ReasonTimeout)
	}
}

func TestFetchBodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 2048)))
	}))
	defer server.Close()

	f := NewFetcher(2*time.Second, "prospectus-test", 1024, WithAllowPrivateHosts(true))
	f.backoffUnit = time.Millisecond

	_, err := f.Fetch(context.Background(), server.URL)

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *FetchError", err)
	}
	if fe.Reason != ReasonTooLarge {
		t.Errorf("Reason = %q, want %q", fe.Reason, ReasonTooLarge)
	}
}

func TestFetchBlocksPrivateHosts(t *testing.T) {
	f := NewFetcher(time.Second, "prospectus-test", 1024)
	f.backoffUnit = time.Millisecond

	_, err := f.Fetch(context.Background(), "http://127.0.0.1:9/")

	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("error = %T, want *FetchError", err)
	}
	if fe.Reason != ReasonBlocked {
		t.Errorf("Reason = %q, want %q", fe.Reason, ReasonBlocked)
	}
}

func TestFetchContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	f := NewFetcher(time.Second, "prospectus-test", 1024, WithAllowPrivateHosts(true), WithMaxRetries(5))
	f.backoffUnit = time.Hour // force cancellation to win the race

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, server.URL)
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Fetch() did not return after context cancellation")
	}
}
