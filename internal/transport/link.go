// Package transport moves opaque bytes between the device and the
// controller. It offers two primitives: an ephemeral message that is only
// delivered while the peer is reachable, and a replicated context slot
// that keeps the last written value for the peer to read at any time.
package transport

import (
	"context"
	"errors"
)

var (
	// ErrNotReachable is returned by Send when the peer is not connected.
	ErrNotReachable = errors.New("peer not reachable")
	// ErrNoContext is returned by ReceivedContext before the peer wrote one.
	ErrNoContext = errors.New("no replicated context received")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("link closed")
)

// Link is one endpoint of a device/controller connection.
type Link interface {
	// Send delivers an ephemeral message. No retry, no queueing.
	Send(ctx context.Context, data []byte) error
	// UpdateContext replaces the replicated context seen by the peer.
	UpdateContext(ctx context.Context, data []byte) error
	// ReceivedContext returns the last context written by the peer.
	ReceivedContext(ctx context.Context) ([]byte, error)
	// Messages yields ephemeral messages and live context updates from the peer.
	Messages() <-chan []byte
	// IsReachable reports whether the peer is currently connected.
	IsReachable() bool
	Close() error
}

const inboxSize = 64

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
