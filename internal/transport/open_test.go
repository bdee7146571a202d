package transport

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_Redis(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	link, err := Open(context.Background(), Options{
		Kind:   KindRedis,
		Prefix: "wake",
		Self:   EndpointController,
		Peer:   EndpointDevice,
		Redis:  client,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { link.Close() })

	assert.IsType(t, &RedisLink{}, link)
	assert.True(t, server.Exists("wake:controller:presence"))
}

func TestOpen_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"memory", Options{Kind: KindMemory}},
		{"unknown", Options{Kind: "carrier-pigeon"}},
		{"redis without client", Options{Kind: KindRedis}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := Open(context.Background(), tt.opts, zap.NewNop())
			assert.ErrorIs(t, err, ErrUnsupportedKind)
			assert.Nil(t, link)
		})
	}
}
