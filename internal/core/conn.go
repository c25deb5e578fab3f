// Package core holds the small contracts shared between the orchestration
// layer and the transport adapters.
package core

import "errors"

// Frame is a raw wire payload, one signaling envelope per frame.
type Frame []byte

// ErrBackpressure is returned by TrySend when the receiver's send buffer is
// full. Signaling is best-effort: callers drop the frame, never block.
var ErrBackpressure = errors.New("backpressure")

// ErrClosed is returned by TrySend once the connection has shut down.
var ErrClosed = errors.New("connection closed")

// SignalConnection abstracts the per-endpoint messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend queues a frame without blocking.
	TrySend(Frame) error
	Close()
}
