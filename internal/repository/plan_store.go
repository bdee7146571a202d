package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/blaisecz/smart-wake/internal/domain"
)

// PlanStore persists the device's current wake plan across restarts.
type PlanStore interface {
	Load(ctx context.Context) (*domain.WakePlan, error)
	Save(ctx context.Context, plan domain.WakePlan) error
	Clear(ctx context.Context) error
	// MarkCompleted records the target of a finished session. Clear keeps it.
	MarkCompleted(ctx context.Context, target time.Time) error
	// Completed returns the last finished target or domain.ErrNotFound.
	Completed(ctx context.Context) (time.Time, error)
}

type redisPlanStore struct {
	client *redis.Client
	key    string
}

// NewRedisPlanStore stores the plan as JSON under key and the completed
// target under key + ":completed".
func NewRedisPlanStore(client *redis.Client, key string) PlanStore {
	return &redisPlanStore{client: client, key: key}
}

func (s *redisPlanStore) Load(ctx context.Context) (*domain.WakePlan, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var plan domain.WakePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode stored plan: %w", err)
	}
	return &plan, nil
}

func (s *redisPlanStore) Save(ctx context.Context, plan domain.WakePlan) error {
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *redisPlanStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

func (s *redisPlanStore) MarkCompleted(ctx context.Context, target time.Time) error {
	return s.client.Set(ctx, s.key+":completed", target.UTC().Format(time.RFC3339Nano), 0).Err()
}

func (s *redisPlanStore) Completed(ctx context.Context) (time.Time, error) {
	raw, err := s.client.Get(ctx, s.key+":completed").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, domain.ErrNotFound
		}
		return time.Time{}, err
	}
	target, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode completed target: %w", err)
	}
	return target, nil
}

type memoryPlanStore struct {
	mu        sync.Mutex
	plan      *domain.WakePlan
	completed time.Time
}

// NewMemoryPlanStore keeps the plan in process memory only.
func NewMemoryPlanStore() PlanStore {
	return &memoryPlanStore{}
}

func (s *memoryPlanStore) Load(_ context.Context) (*domain.WakePlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return nil, domain.ErrNotFound
	}
	p := *s.plan
	return &p, nil
}

func (s *memoryPlanStore) Save(_ context.Context, plan domain.WakePlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = &plan
	return nil
}

func (s *memoryPlanStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plan = nil
	return nil
}

func (s *memoryPlanStore) MarkCompleted(_ context.Context, target time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed = target
	return nil
}

func (s *memoryPlanStore) Completed(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed.IsZero() {
		return time.Time{}, domain.ErrNotFound
	}
	return s.completed, nil
}
