package webclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"restfulwebclient/pkg/config"
	"restfulwebclient/pkg/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakeTransport records requests and answers with a preset reply or error.
type fakeTransport struct {
	mu     sync.Mutex
	reqs   []transport.Request
	reply  transport.Reply
	err    error
	block  chan struct{}
	closed atomic.Int32
}

func (f *fakeTransport) Do(ctx context.Context, req transport.Request) (transport.Reply, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return transport.Reply{}, transport.NetworkError(ctx.Err())
		}
	}
	if f.err != nil {
		return transport.Reply{}, transport.NetworkError(f.err)
	}
	return f.reply, nil
}

func (f *fakeTransport) Close() error {
	f.closed.Add(1)
	return nil
}

func (f *fakeTransport) requests() []transport.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]transport.Request(nil), f.reqs...)
}

func okReply(status int, body string) transport.Reply {
	h := http.Header{}
	h.Set("X-Test", "1")
	h.Add("X-Multi", "a")
	h.Add("X-Multi", "b")
	return transport.Reply{StatusCode: status, Header: h, Body: []byte(body)}
}

func TestCall_ResolveOnlyOnce(t *testing.T) {
	var fired atomic.Int32
	call := newCall(func(Response) { fired.Add(1) })

	first := Response{StatusCode: 0, Error: strPtr("boom"), Outcome: OutcomeNetworkError}
	second := Response{StatusCode: 200, Outcome: OutcomeCompleted}

	assert.True(t, call.resolve(first, nil))
	assert.False(t, call.resolve(second, nil))

	assert.Equal(t, int32(1), fired.Load())
	assert.Equal(t, first, call.Wait())
}

func TestCall_ResponseAndAwait(t *testing.T) {
	call := newCall(nil)

	_, ok := call.Response()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := call.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	call.resolve(Response{StatusCode: 204, Outcome: OutcomeCompleted}, nil)

	resp, ok := call.Response()
	require.True(t, ok)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = call.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestClient_CompletionShapes(t *testing.T) {
	ft := &fakeTransport{reply: okReply(404, "missing")}
	c := NewWithTransport(ft)
	ctx := context.Background()

	get := c.Get(ctx, "/r", nil).Wait()
	assert.Equal(t, 404, get.StatusCode)
	assert.Equal(t, "HTTP/1.1 404 Not Found", get.ErrorText())
	assert.Equal(t, "missing", get.Body())
	assert.Nil(t, get.Headers)

	post := c.Post(ctx, "/r", "{}", nil).Wait()
	assert.True(t, post.HasError())
	assert.Equal(t, "missing", post.Body())
	assert.Nil(t, post.Headers)

	put := c.Put(ctx, "/r", "{}", nil).Wait()
	assert.Equal(t, Response{StatusCode: 404, Outcome: OutcomeCompleted}, put)

	del := c.Delete(ctx, "/r", nil).Wait()
	assert.Equal(t, Response{StatusCode: 404, Outcome: OutcomeCompleted}, del)

	head := c.Head(ctx, "/r", nil).Wait()
	assert.False(t, head.HasData())
	assert.True(t, head.HasError())
	assert.Equal(t, "1", head.Headers["X-Test"])
	assert.Equal(t, "a, b", head.Headers["X-Multi"])
}

func TestClient_SuccessOmitsError(t *testing.T) {
	c := NewWithTransport(&fakeTransport{reply: okReply(200, "fine")})

	get := c.Get(context.Background(), "/r", nil).Wait()
	assert.False(t, get.HasError())
	assert.Equal(t, "fine", get.Body())

	head := c.Head(context.Background(), "/r", nil).Wait()
	assert.False(t, head.HasError())
	assert.NotNil(t, head.Headers)
}

func TestClient_UniformResponses(t *testing.T) {
	ft := &fakeTransport{reply: okReply(500, "oops")}
	c := NewWithTransport(ft, WithUniformResponses(true))
	ctx := context.Background()

	for name, resp := range map[string]Response{
		"put":    c.Put(ctx, "/r", "x", nil).Wait(),
		"delete": c.Delete(ctx, "/r", nil).Wait(),
	} {
		assert.Equal(t, "HTTP/1.1 500 Internal Server Error", resp.ErrorText(), name)
		assert.Equal(t, "oops", resp.Body(), name)
		assert.Equal(t, "1", resp.Headers["X-Test"], name)
	}

	head := c.Head(ctx, "/r", nil).Wait()
	assert.False(t, head.HasData())
	assert.NotNil(t, head.Headers)
}

func TestClient_NetworkErrorShape(t *testing.T) {
	ft := &fakeTransport{err: errors.New("dial tcp: connection refused")}
	c := NewWithTransport(ft)

	for _, call := range []*Call{
		c.Get(context.Background(), "/r", nil),
		c.Post(context.Background(), "/r", "b", nil),
		c.Put(context.Background(), "/r", "b", nil),
		c.Delete(context.Background(), "/r", nil),
		c.Head(context.Background(), "/r", nil),
	} {
		resp := call.Wait()
		assert.Equal(t, OutcomeNetworkError, resp.Outcome)
		assert.Equal(t, 0, resp.StatusCode)
		assert.Contains(t, resp.ErrorText(), "connection refused")
		assert.False(t, resp.HasData())
		assert.Nil(t, resp.Headers)
	}
}

func TestClient_BodyRequestConstruction(t *testing.T) {
	ft := &fakeTransport{reply: okReply(201, "")}
	c := NewWithTransport(ft, WithContentType("text/plain"))

	c.Post(context.Background(), "/a", "héllo", nil, H("X-One", "1")).Wait()
	c.Put(context.Background(), "/b", "", nil, H("CONTENT-TYPE", "application/xml")).Wait()

	reqs := ft.requests()
	require.Len(t, reqs, 2)

	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, []byte("héllo"), reqs[0].Body)
	assert.Equal(t, []transport.Header{
		{Key: "Content-Type", Value: "text/plain"},
		{Key: "X-One", Value: "1"},
	}, reqs[0].Headers)

	assert.Equal(t, http.MethodPut, reqs[1].Method)
	assert.Equal(t, []byte{}, reqs[1].Body)
	assert.Equal(t, []transport.Header{{Key: "CONTENT-TYPE", Value: "application/xml"}}, reqs[1].Headers)
}

func TestClient_BodylessVerbsSendNoBody(t *testing.T) {
	ft := &fakeTransport{reply: okReply(200, "")}
	c := NewWithTransport(ft)

	c.Get(context.Background(), "/g", nil).Wait()
	c.Delete(context.Background(), "/d", nil).Wait()
	c.Head(context.Background(), "/h", nil).Wait()

	for _, r := range ft.requests() {
		assert.Nil(t, r.Body, r.Method)
		assert.Empty(t, r.Headers, r.Method)
	}
}

func TestClient_InvalidUTF8Replaced(t *testing.T) {
	ft := &fakeTransport{reply: transport.Reply{StatusCode: 200, Body: []byte{'o', 'k', 0xff}}}
	c := NewWithTransport(ft)

	resp := c.Get(context.Background(), "/r", nil).Wait()
	assert.Equal(t, "ok\uFFFD", resp.Body())
}

func TestClient_CallbackPanicRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewWithTransport(&fakeTransport{reply: okReply(200, "x")}, WithLogger(zap.New(core)))

	resp := c.Get(context.Background(), "/r", func(Response) { panic("callback bug") }).Wait()

	assert.Equal(t, 200, resp.StatusCode)
	entries := logs.FilterMessage("webclient callback panicked").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "callback bug", entries[0].ContextMap()["panic"])
}

func TestClient_LogsNetworkErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := NewWithTransport(&fakeTransport{err: errors.New("no route")}, WithLogger(zap.New(core)))

	c.Get(context.Background(), "/r", nil).Wait()

	entries := logs.FilterMessage("webclient network error").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["verb"])
	assert.Equal(t, "network_error", fields["outcome"])
}

func TestClient_CancelWhilePending(t *testing.T) {
	ft := &fakeTransport{block: make(chan struct{})}
	c := NewWithTransport(ft)

	ctx, cancel := context.WithCancel(context.Background())
	var fired atomic.Int32
	call := c.Get(ctx, "/r", func(Response) { fired.Add(1) })

	_, ok := call.Response()
	assert.False(t, ok)

	cancel()
	resp := call.Wait()
	assert.Equal(t, OutcomeNetworkError, resp.Outcome)
	assert.Contains(t, resp.ErrorText(), context.Canceled.Error())
	assert.Equal(t, int32(1), fired.Load())
}

func TestClient_Close(t *testing.T) {
	ft := &fakeTransport{reply: okReply(200, "x")}
	c := NewWithTransport(ft)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), ft.closed.Load())

	var fired atomic.Int32
	resp := c.Get(context.Background(), "/r", func(Response) { fired.Add(1) }).Wait()
	assert.Equal(t, OutcomeNetworkError, resp.Outcome)
	assert.Contains(t, resp.ErrorText(), ErrClosed.Error())
	assert.Equal(t, int32(1), fired.Load())
	assert.Empty(t, ft.requests())
}

func TestNew_TransportSelection(t *testing.T) {
	cfg := config.DefaultConfig()

	for _, kind := range []string{config.TransportResty, config.TransportFiber} {
		cfg.Transport = kind
		c, err := New(cfg)
		require.NoError(t, err, kind)
		require.NoError(t, c.Close(), kind)
	}

	cfg.Transport = "carrier-pigeon"
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrUnknownTransport)
}

func TestNew_ConfigOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ContentType = "application/vnd.api+json"
	cfg.UniformResponses = true

	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "application/vnd.api+json", c.contentType)
	assert.True(t, c.uniform)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "completed", OutcomeCompleted.String())
	assert.Equal(t, "network_error", OutcomeNetworkError.String())
	assert.Equal(t, "outcome(0)", Outcome(0).String())
}
