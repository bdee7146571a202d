package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	KindMQTT   = "mqtt"
	KindRedis  = "redis"
	KindMemory = "memory"

	EndpointDevice     = "device"
	EndpointController = "controller"
)

// ErrUnsupportedKind is returned by Open for kinds it cannot build on its
// own. A memory link needs both endpoints in one process; use NewMemoryPair.
var ErrUnsupportedKind = errors.New("unsupported transport")

// Options selects and configures a link implementation.
type Options struct {
	Kind   string
	Prefix string
	Self   string
	Peer   string

	MQTT MQTTConfig
	// Redis is required for KindRedis and stays owned by the caller.
	Redis *redis.Client
}

// Open builds the link named by opts.Kind.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Link, error) {
	switch opts.Kind {
	case KindMQTT:
		cfg := opts.MQTT
		cfg.Prefix, cfg.Self, cfg.Peer = opts.Prefix, opts.Self, opts.Peer
		if cfg.ClientID == "" {
			cfg.ClientID = opts.Prefix + "-" + opts.Self
		}
		link, err := NewMQTTLink(cfg, log)
		if err != nil {
			return nil, err
		}
		return link, nil
	case KindRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: redis link without a client", ErrUnsupportedKind)
		}
		link, err := NewRedisLink(ctx, opts.Redis, RedisConfig{
			Prefix: opts.Prefix,
			Self:   opts.Self,
			Peer:   opts.Peer,
		}, log)
		if err != nil {
			return nil, err
		}
		return link, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, opts.Kind)
	}
}
