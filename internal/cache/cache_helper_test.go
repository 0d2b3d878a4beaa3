package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T) *CacheHelper {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, "test:")
}

func TestCacheSetGet(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	type payload struct {
		ID   uint   `json:"id"`
		Name string `json:"name"`
	}

	if err := helper.Set(ctx, "id:1", payload{ID: 1, Name: "algorithms"}, time.Minute); err != nil {
		t.Fatalf("set error: %v", err)
	}

	var got payload
	if err := helper.Get(ctx, "id:1", &got); err != nil {
		t.Fatalf("get error: %v", err)
	}
	if got.ID != 1 || got.Name != "algorithms" {
		t.Errorf("got %+v", got)
	}
}

func TestCacheGetMissing(t *testing.T) {
	helper := newTestHelper(t)

	var dest struct{}
	if err := helper.Get(context.Background(), "missing", &dest); err != ErrCacheNotFound {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestCacheInvalidatePattern(t *testing.T) {
	helper := newTestHelper(t)
	ctx := context.Background()

	for _, key := range []string{"list:1", "list:2", "id:7"} {
		if err := helper.Set(ctx, key, "v", time.Minute); err != nil {
			t.Fatalf("set error: %v", err)
		}
	}

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("invalidate error: %v", err)
	}

	var dest string
	if err := helper.Get(ctx, "list:1", &dest); err != ErrCacheNotFound {
		t.Errorf("list:1 should be gone, got %v", err)
	}
	if err := helper.Get(ctx, "id:7", &dest); err != nil {
		t.Errorf("id:7 should survive, got %v", err)
	}
}

func TestCacheNilClientDegrades(t *testing.T) {
	helper := NewCacheHelper(nil, "test:")
	ctx := context.Background()

	if err := helper.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Errorf("nil-client set should no-op, got %v", err)
	}

	fetched := false
	var dest string
	err := helper.CacheOrExecute(ctx, "k", &dest, time.Minute, func() (interface{}, error) {
		fetched = true
		return "from-store", nil
	})
	if err != nil {
		t.Fatalf("cache-or-execute error: %v", err)
	}
	if !fetched || dest != "from-store" {
		t.Errorf("fetched=%v dest=%q", fetched, dest)
	}
}
