package transport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisConfig configures a RedisLink.
type RedisConfig struct {
	Prefix      string
	Self        string
	Peer        string
	PresenceTTL time.Duration
}

func (c RedisConfig) key(endpoint, kind string) string {
	return fmt.Sprintf("%s:%s:%s", c.Prefix, endpoint, kind)
}

// RedisLink implements Link over Redis. The replicated context is a plain
// key plus a PUBLISH so a connected peer sees it live; ephemeral messages
// are PUBLISH only and fail when nobody is subscribed. Presence is a key
// with a TTL refreshed while the link is open.
type RedisLink struct {
	cfg    RedisConfig
	client *redis.Client
	pubsub *redis.PubSub
	log    *zap.Logger

	inbox  chan []byte
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewRedisLink subscribes to this endpoint's channels and starts the
// presence heartbeat. The client stays owned by the caller.
func NewRedisLink(ctx context.Context, client *redis.Client, cfg RedisConfig, log *zap.Logger) (*RedisLink, error) {
	if cfg.PresenceTTL <= 0 {
		cfg.PresenceTTL = 10 * time.Second
	}

	pubsub := client.Subscribe(ctx, cfg.key(cfg.Self, "message"), cfg.key(cfg.Self, "context"))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	l := &RedisLink{
		cfg:    cfg,
		client: client,
		pubsub: pubsub,
		log:    log.With(zap.String("link", "redis"), zap.String("self", cfg.Self)),
		inbox:  make(chan []byte, inboxSize),
		cancel: cancel,
	}

	if err := l.heartbeat(ctx); err != nil {
		cancel()
		pubsub.Close()
		return nil, err
	}

	l.wg.Add(2)
	go l.forward(pubsub.Channel())
	go l.keepAlive(runCtx)
	return l, nil
}

func (l *RedisLink) forward(ch <-chan *redis.Message) {
	defer l.wg.Done()
	for msg := range ch {
		select {
		case l.inbox <- []byte(msg.Payload):
		default:
			l.log.Warn("inbox full, dropping message", zap.String("channel", msg.Channel))
		}
	}
}

func (l *RedisLink) keepAlive(ctx context.Context) {
	defer l.wg.Done()
	ticker := time.NewTicker(l.cfg.PresenceTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.heartbeat(ctx); err != nil && ctx.Err() == nil {
				l.log.Warn("presence heartbeat failed", zap.Error(err))
			}
		}
	}
}

func (l *RedisLink) heartbeat(ctx context.Context) error {
	if err := l.client.Set(ctx, l.cfg.key(l.cfg.Self, "presence"), presenceOnline, l.cfg.PresenceTTL).Err(); err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}
	return nil
}

func (l *RedisLink) Send(ctx context.Context, data []byte) error {
	if l.isClosed() {
		return ErrClosed
	}
	receivers, err := l.client.Publish(ctx, l.cfg.key(l.cfg.Peer, "message"), data).Result()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	if receivers == 0 {
		return ErrNotReachable
	}
	return nil
}

func (l *RedisLink) UpdateContext(ctx context.Context, data []byte) error {
	if l.isClosed() {
		return ErrClosed
	}
	if err := l.client.Set(ctx, l.cfg.key(l.cfg.Peer, "context"), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store context: %w", err)
	}
	if err := l.client.Publish(ctx, l.cfg.key(l.cfg.Peer, "context"), data).Err(); err != nil {
		// The stored value is what counts; the peer reads it on startup.
		l.log.Warn("failed to notify context update", zap.Error(err))
	}
	return nil
}

func (l *RedisLink) ReceivedContext(ctx context.Context) ([]byte, error) {
	data, err := l.client.Get(ctx, l.cfg.key(l.cfg.Self, "context")).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoContext
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read context: %w", err)
	}
	return data, nil
}

func (l *RedisLink) Messages() <-chan []byte {
	return l.inbox
}

func (l *RedisLink) IsReachable() bool {
	if l.isClosed() {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	n, err := l.client.Exists(ctx, l.cfg.key(l.cfg.Peer, "presence")).Result()
	return err == nil && n > 0
}

// Close stops the heartbeat, removes the presence key and unsubscribes.
func (l *RedisLink) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	l.client.Del(ctx, l.cfg.key(l.cfg.Self, "presence"))

	err := l.pubsub.Close()
	l.wg.Wait()
	close(l.inbox)
	return err
}

func (l *RedisLink) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
