package transport

import (
	"context"
	"sync"
)

// memoryHub is the state shared by the two ends of a memory pair.
type memoryHub struct {
	mu        sync.Mutex
	reachable bool
}

// MemoryLink is an in-process Link, used by tests and by the device agent
// when no broker is configured.
type MemoryLink struct {
	hub      *memoryHub
	peer     *MemoryLink
	inbox    chan []byte
	received []byte
	pending  bool
	closed   bool
}

// NewMemoryPair returns two connected endpoints, initially reachable.
func NewMemoryPair() (*MemoryLink, *MemoryLink) {
	hub := &memoryHub{reachable: true}
	a := &MemoryLink{hub: hub, inbox: make(chan []byte, inboxSize)}
	b := &MemoryLink{hub: hub, inbox: make(chan []byte, inboxSize)}
	a.peer, b.peer = b, a
	return a, b
}

// SetReachable simulates connectivity changes. On reconnect each side
// receives the context written while it was unreachable.
func (l *MemoryLink) SetReachable(reachable bool) {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()

	l.hub.reachable = reachable
	if !reachable {
		return
	}
	for _, end := range []*MemoryLink{l, l.peer} {
		if end.pending && !end.closed {
			end.pending = false
			end.deliver(end.received)
		}
	}
}

func (l *MemoryLink) Send(_ context.Context, data []byte) error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	if !l.hub.reachable || l.peer.closed {
		return ErrNotReachable
	}
	if !l.peer.deliver(data) {
		return ErrNotReachable
	}
	return nil
}

func (l *MemoryLink) UpdateContext(_ context.Context, data []byte) error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	p := l.peer
	p.received = clone(data)
	if l.hub.reachable && !p.closed {
		p.pending = !p.deliver(p.received)
	} else {
		p.pending = true
	}
	return nil
}

func (l *MemoryLink) ReceivedContext(_ context.Context) ([]byte, error) {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()

	if l.received == nil {
		return nil, ErrNoContext
	}
	return clone(l.received), nil
}

func (l *MemoryLink) Messages() <-chan []byte {
	return l.inbox
}

func (l *MemoryLink) IsReachable() bool {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()
	return l.hub.reachable && !l.closed && !l.peer.closed
}

func (l *MemoryLink) Close() error {
	l.hub.mu.Lock()
	defer l.hub.mu.Unlock()

	if !l.closed {
		l.closed = true
		close(l.inbox)
	}
	return nil
}

// deliver must be called with the hub lock held.
func (l *MemoryLink) deliver(data []byte) bool {
	if l.closed {
		return false
	}
	select {
	case l.inbox <- clone(data):
		return true
	default:
		return false
	}
}
