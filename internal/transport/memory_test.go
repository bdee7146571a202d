package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPair_Send(t *testing.T) {
	ctx := context.Background()
	device, controller := NewMemoryPair()

	require.NoError(t, controller.Send(ctx, []byte("ping")))
	assert.Equal(t, []byte("ping"), <-device.Messages())

	device.SetReachable(false)
	assert.ErrorIs(t, controller.Send(ctx, []byte("lost")), ErrNotReachable)
	assert.False(t, device.IsReachable())
	assert.Empty(t, device.Messages())
}

func TestMemoryPair_ContextIsLastValueWins(t *testing.T) {
	ctx := context.Background()
	device, controller := NewMemoryPair()

	_, err := device.ReceivedContext(ctx)
	assert.ErrorIs(t, err, ErrNoContext)

	device.SetReachable(false)
	require.NoError(t, controller.UpdateContext(ctx, []byte("first")))
	require.NoError(t, controller.UpdateContext(ctx, []byte("second")))

	got, err := device.ReceivedContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Empty(t, device.Messages())

	// Only the last write is delivered on reconnect.
	device.SetReachable(true)
	require.Len(t, device.Messages(), 1)
	assert.Equal(t, []byte("second"), <-device.Messages())
}

func TestMemoryPair_Close(t *testing.T) {
	ctx := context.Background()
	device, controller := NewMemoryPair()

	require.NoError(t, device.Close())
	require.NoError(t, device.Close())

	assert.ErrorIs(t, device.Send(ctx, []byte("x")), ErrClosed)
	assert.ErrorIs(t, controller.Send(ctx, []byte("x")), ErrNotReachable)
	assert.False(t, controller.IsReachable())

	_, open := <-device.Messages()
	assert.False(t, open)
}
