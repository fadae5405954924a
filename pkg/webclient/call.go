package webclient

import (
	"context"
	"sync"
)

// Callback receives the Response of a call exactly once.
type Callback func(Response)

// Call is the pending result of a verb operation. The callback, if any, runs
// before Done is closed, so Wait returns only after the callback has returned.
// A callback must not Wait on its own Call.
type Call struct {
	cb   Callback
	once sync.Once
	done chan struct{}
	resp Response
}

func newCall(cb Callback) *Call {
	return &Call{cb: cb, done: make(chan struct{})}
}

func (c *Call) Done() <-chan struct{} { return c.done }

// Wait blocks until the call reaches a terminal outcome.
func (c *Call) Wait() Response {
	<-c.done
	return c.resp
}

// Await is Wait bounded by ctx. Giving up does not cancel the request.
func (c *Call) Await(ctx context.Context) (Response, error) {
	select {
	case <-c.done:
		return c.resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Response returns the result without blocking; ok is false while pending.
func (c *Call) Response() (resp Response, ok bool) {
	select {
	case <-c.done:
		return c.resp, true
	default:
		return Response{}, false
	}
}

// resolve records resp and fires the callback. Only the first resolve has any
// effect, so a call can never report two terminal outcomes.
func (c *Call) resolve(resp Response, onPanic func(any)) bool {
	fired := false
	c.once.Do(func() {
		fired = true
		c.resp = resp
		defer close(c.done)
		if c.cb == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil && onPanic != nil {
				onPanic(r)
			}
		}()
		c.cb(resp)
	})
	return fired
}
