// Package webclient exposes GET, POST, PUT, DELETE and HEAD as asynchronous
// calls that deliver a simplified Response to a callback exactly once.
//
// HTTP error statuses are ordinary completions; only a failure to complete the
// exchange (DNS, refused connection, TLS, timeout, cancellation) produces
// OutcomeNetworkError. Nothing is retried.
package webclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"restfulwebclient/pkg/config"
	"restfulwebclient/pkg/fiberpool"
	"restfulwebclient/pkg/restypool"
	"restfulwebclient/pkg/transport"

	"go.uber.org/zap"
)

var (
	ErrUnknownTransport = config.ErrUnknownTransport
	ErrClosed           = errors.New("client closed")
)

// Client is safe for concurrent use and keeps no per-request state.
type Client struct {
	transport   transport.Transport
	log         *zap.Logger
	contentType string
	uniform     bool

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithContentType sets the Content-Type sent with POST and PUT bodies.
func WithContentType(ct string) Option {
	return func(c *Client) {
		if ct = strings.TrimSpace(ct); ct != "" {
			c.contentType = ct
		}
	}
}

// WithUniformResponses makes every verb populate all fields available on
// completion instead of its own subset.
func WithUniformResponses(on bool) Option {
	return func(c *Client) { c.uniform = on }
}

// New builds a client over the transport named in cfg.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var t transport.Transport
	switch strings.ToLower(cfg.Transport) {
	case config.TransportResty:
		t = restypool.New(cfg)
	case config.TransportFiber:
		t = fiberpool.New(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}

	base := []Option{
		WithContentType(cfg.ContentType),
		WithUniformResponses(cfg.UniformResponses),
	}
	return NewWithTransport(t, append(base, opts...)...), nil
}

// NewWithTransport builds a client over an existing transport. Close closes t.
func NewWithTransport(t transport.Transport, opts ...Option) *Client {
	c := &Client{
		transport:   t,
		log:         zap.NewNop(),
		contentType: config.DefaultContentType,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches url. On completion the Response carries the UTF-8 body and, for
// statuses of 400 and above, the status line as Error.
func (c *Client) Get(ctx context.Context, url string, cb Callback) *Call {
	return c.dispatch(ctx, verbGet, transport.Request{Method: http.MethodGet, URL: url}, cb)
}

// Delete deletes url. On completion only StatusCode is set.
func (c *Client) Delete(ctx context.Context, url string, cb Callback) *Call {
	return c.dispatch(ctx, verbDelete, transport.Request{Method: http.MethodDelete, URL: url}, cb)
}

// Post sends body as raw UTF-8 bytes. Content-Type defaults to the client's
// content type unless one of headers sets it. On completion the Response
// carries the UTF-8 body and, for error statuses, the status line as Error.
func (c *Client) Post(ctx context.Context, url, body string, cb Callback, headers ...Header) *Call {
	return c.dispatch(ctx, verbPost, c.withBody(http.MethodPost, url, body, headers), cb)
}

// Put is Post with the PUT verb, except that on completion only StatusCode is set.
func (c *Client) Put(ctx context.Context, url, body string, cb Callback, headers ...Header) *Call {
	return c.dispatch(ctx, verbPut, c.withBody(http.MethodPut, url, body, headers), cb)
}

// Head issues a HEAD. On completion the Response carries every response header.
func (c *Client) Head(ctx context.Context, url string, cb Callback) *Call {
	return c.dispatch(ctx, verbHead, transport.Request{Method: http.MethodHead, URL: url}, cb)
}

// Close releases the transport. Calls issued afterwards end with a network error.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.transport != nil {
			c.closeErr = c.transport.Close()
		}
	})
	return c.closeErr
}

func (c *Client) withBody(method, url, body string, headers []Header) transport.Request {
	caller := toTransportHeaders(headers)
	hs := make([]transport.Header, 0, len(caller)+1)
	if !transport.HasHeader(caller, "Content-Type") {
		hs = append(hs, transport.Header{Key: "Content-Type", Value: c.contentType})
	}
	hs = append(hs, caller...)
	return transport.Request{
		Method:  method,
		URL:     url,
		Headers: hs,
		Body:    []byte(body),
	}
}

func (c *Client) dispatch(ctx context.Context, v verb, req transport.Request, cb Callback) *Call {
	if ctx == nil {
		ctx = context.Background()
	}
	call := newCall(cb)

	if c.closed.Load() || c.transport == nil {
		c.finish(call, v, req, networkFailure(transport.NetworkError(ErrClosed)), 0)
		return call
	}

	c.log.Debug("webclient request dispatched",
		zap.Stringer("verb", v),
		zap.String("url", req.URL),
		zap.Int("body_bytes", len(req.Body)),
	)
	go c.exchange(ctx, v, req, call)
	return call
}

func (c *Client) exchange(ctx context.Context, v verb, req transport.Request, call *Call) {
	start := time.Now()
	rep, err := c.transport.Do(ctx, req)

	var resp Response
	if err != nil {
		resp = networkFailure(err)
	} else {
		resp = completed(v, rep, c.uniform)
	}
	c.finish(call, v, req, resp, time.Since(start))
}

func (c *Client) finish(call *Call, v verb, req transport.Request, resp Response, elapsed time.Duration) {
	fields := []zap.Field{
		zap.Stringer("verb", v),
		zap.String("url", req.URL),
		zap.Stringer("outcome", resp.Outcome),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	}
	if resp.Outcome == OutcomeNetworkError {
		c.log.Warn("webclient network error", append(fields, zap.String("error", resp.ErrorText()))...)
	} else {
		c.log.Debug("webclient request completed", fields...)
	}

	call.resolve(resp, func(r any) {
		c.log.Error("webclient callback panicked", append(fields, zap.Any("panic", r))...)
	})
}
