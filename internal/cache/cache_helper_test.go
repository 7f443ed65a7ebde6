package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client, time.Minute), mr
}

func TestCacheHelper_SetGet(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	if err := cm.Jobs.Set(ctx, "list:open", []string{"a", "b"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("jobs:list:open") {
		t.Fatalf("expected prefixed key in redis")
	}

	var got []string
	if err := cm.Jobs.Get(ctx, "list:open", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("unexpected value %v", got)
	}

	mr.FastForward(2 * time.Minute)
	if err := cm.Jobs.Get(ctx, "list:open", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Fatalf("expected ErrCacheNotFound after ttl, got %v", err)
	}
}

func TestCacheHelper_NilClientDegrades(t *testing.T) {
	cm := NewCacheManager(nil, 0)
	ctx := context.Background()

	if err := cm.Jobs.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatalf("set on nil client should be a no-op, got %v", err)
	}
	var v int
	if err := cm.Jobs.Get(ctx, "k", &v); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable, got %v", err)
	}
	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Fatalf("expected ErrCacheNotAvailable from health check, got %v", err)
	}
	if cm.JobTTL != JobCacheConfig.TTL {
		t.Fatalf("expected default ttl, got %v", cm.JobTTL)
	}
}

func TestCacheHelper_CacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	for i := 0; i < 3; i++ {
		var got []int
		if err := cm.Jobs.CacheOrExecute(ctx, "list:x", &got, time.Minute, fetch); err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if len(got) != 3 {
			t.Fatalf("iteration %d: unexpected %v", i, got)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one fetch, got %d", calls)
	}

	fetchErr := errors.New("boom")
	var got []int
	err := cm.Jobs.CacheOrExecute(ctx, "list:y", &got, time.Minute, func() (interface{}, error) {
		return nil, fetchErr
	})
	if !errors.Is(err, fetchErr) {
		t.Fatalf("expected fetch error to propagate, got %v", err)
	}
}

func TestInvalidateJobBoard(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	_ = cm.Jobs.Set(ctx, "list:approved", []int{1}, time.Minute)
	_ = cm.Jobs.Set(ctx, "list:other", []int{2}, time.Minute)
	_ = cm.Jobs.Set(ctx, "detail:1", []int{3}, time.Minute)

	InvalidateJobBoard(ctx, cm)

	if mr.Exists("jobs:list:approved") || mr.Exists("jobs:list:other") {
		t.Fatalf("list keys should be gone")
	}
	if !mr.Exists("jobs:detail:1") {
		t.Fatalf("non-list key should survive")
	}
}
