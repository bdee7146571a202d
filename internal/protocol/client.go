package protocol

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/blaisecz/smart-wake/internal/transport"
)

// Status is the sync health seen from one endpoint.
type Status struct {
	Reachable  bool
	LastSyncAt *time.Time
	LastError  string
}

// Client encodes envelopes onto a transport.Link and records sync health.
// Failures are returned and remembered; nothing here retries.
type Client struct {
	link transport.Link
	log  *zap.Logger
	now  func() time.Time

	mu         sync.Mutex
	lastSyncAt time.Time
	lastErr    error
}

// NewClient wraps link.
func NewClient(link transport.Link, log *zap.Logger) *Client {
	return &Client{link: link, log: log, now: time.Now}
}

// WithClock overrides the clock used for envelope timestamps and sync
// bookkeeping.
func (c *Client) WithClock(now func() time.Time) *Client {
	c.now = now
	return c
}

// Send delivers p as an ephemeral message. transport.ErrNotReachable is
// expected while the peer is away.
func (c *Client) Send(ctx context.Context, p Payload) error {
	data, err := Encode(NewEnvelope(p, c.now()))
	if err != nil {
		return err
	}
	err = c.link.Send(ctx, data)
	c.record(err)
	if err != nil {
		return fmt.Errorf("send %s: %w", p.MessageType(), err)
	}
	return nil
}

// UpdateContext writes p into the replicated context slot.
func (c *Client) UpdateContext(ctx context.Context, p Payload) error {
	data, err := Encode(NewEnvelope(p, c.now()))
	if err != nil {
		return err
	}
	err = c.link.UpdateContext(ctx, data)
	c.record(err)
	if err != nil {
		return fmt.Errorf("update context %s: %w", p.MessageType(), err)
	}
	return nil
}

// ReceivedContext decodes the last context written by the peer.
func (c *Client) ReceivedContext(ctx context.Context) (Envelope, error) {
	data, err := c.link.ReceivedContext(ctx)
	if err != nil {
		return Envelope{}, err
	}
	return c.Decode(data)
}

// Decode decodes an inbound message and counts a successful decode as a sync.
func (c *Client) Decode(data []byte) (Envelope, error) {
	env, err := Decode(data)
	switch {
	case err == nil:
		c.record(nil)
	case errors.Is(err, ErrUnknownMessageType):
		c.record(nil)
		c.log.Debug("ignoring unknown message type", zap.String("type", string(env.Type)))
	default:
		c.log.Warn("dropping undecodable message", zap.Error(err))
	}
	return env, err
}

// Messages exposes the raw inbound stream of the link.
func (c *Client) Messages() <-chan []byte {
	return c.link.Messages()
}

func (c *Client) IsReachable() bool {
	return c.link.IsReachable()
}

// Status returns a snapshot of the sync health.
func (c *Client) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{Reachable: c.link.IsReachable()}
	if !c.lastSyncAt.IsZero() {
		t := c.lastSyncAt
		s.LastSyncAt = &t
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}

func (c *Client) Close() error {
	return c.link.Close()
}

func (c *Client) record(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.lastErr = err
		return
	}
	c.lastSyncAt = c.now()
	c.lastErr = nil
}
