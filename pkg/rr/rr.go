// Package rr hands out pool slots in round-robin order.
package rr

import "sync/atomic"

// RR is safe for concurrent use; the zero value starts at slot 0.
type RR struct{ n atomic.Uint64 }

// Next returns the next slot in [0, size). A size below 2 always yields 0.
func (r *RR) Next(size int) int {
	if size < 2 {
		return 0
	}
	x := r.n.Add(1)
	return int((x - 1) % uint64(size))
}
