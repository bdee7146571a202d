package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaisecz/smart-wake/internal/domain"
)

func testPlan() domain.WakePlan {
	return domain.WakePlan{
		Schedule: domain.AlarmSchedule{
			WakeTimeLocal: "07:30",
			WindowMinutes: 30,
			Sensitivity:   domain.SensitivityBalanced,
			Enabled:       true,
		},
		EffectiveDate: "2026-01-20",
	}
}

func TestPlanStores(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	stores := map[string]PlanStore{
		"redis":  NewRedisPlanStore(client, "wake:device:plan"),
		"memory": NewMemoryPlanStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Load(ctx)
			require.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, store.Save(ctx, testPlan()))
			got, err := store.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, testPlan(), *got)

			require.NoError(t, store.Clear(ctx))
			_, err = store.Load(ctx)
			assert.ErrorIs(t, err, domain.ErrNotFound)
		})
	}
}

func TestPlanStores_CompletedTarget(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	stores := map[string]PlanStore{
		"redis":  NewRedisPlanStore(client, "wake:device:plan"),
		"memory": NewMemoryPlanStore(),
	}
	target := time.Date(2026, 1, 20, 7, 30, 0, 0, time.UTC)

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Completed(ctx)
			require.ErrorIs(t, err, domain.ErrNotFound)

			require.NoError(t, store.Save(ctx, testPlan()))
			require.NoError(t, store.MarkCompleted(ctx, target))
			require.NoError(t, store.Clear(ctx))

			got, err := store.Completed(ctx)
			require.NoError(t, err)
			assert.True(t, target.Equal(got), "completed = %s, want %s", got, target)
		})
	}
}

func TestRedisPlanStore_CorruptValue(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, server.Set("wake:device:plan", "{not json"))

	_, err := NewRedisPlanStore(client, "wake:device:plan").Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
