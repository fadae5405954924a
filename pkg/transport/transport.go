package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrNetwork marks a failure to complete the HTTP exchange at all: DNS, refused
// connections, TLS, timeouts and cancellation. HTTP error statuses are not network errors.
var ErrNetwork = errors.New("network error")

// Transport executes a single HTTP exchange. Implementations must be safe for concurrent use.
type Transport interface {
	Do(ctx context.Context, req Request) (Reply, error)
	Close() error
}

type Header struct {
	Key   string
	Value string
}

// Request is one outgoing exchange. Headers are sent in order, duplicates included.
type Request struct {
	Method  string
	URL     string
	Headers []Header
	Body    []byte
}

// Reply is a detached snapshot of a response; it stays valid after the
// underlying transport response has been released.
type Reply struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NetworkError wraps err so that errors.Is(err, ErrNetwork) holds.
func NetworkError(err error) error {
	if err == nil || errors.Is(err, ErrNetwork) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}

// HasHeader reports whether h contains key, compared case-insensitively.
func HasHeader(h []Header, key string) bool {
	want := http.CanonicalHeaderKey(key)
	for _, kv := range h {
		if http.CanonicalHeaderKey(kv.Key) == want {
			return true
		}
	}
	return false
}
