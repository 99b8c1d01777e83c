package store

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisStoreGetPut(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	ctx := context.Background()

	st, err := OpenRedis(ctx, fmt.Sprintf("redis://%s/0", mr.Addr()))
	if err != nil {
		t.Fatalf("open redis: %v", err)
	}
	defer func() {
		_ = st.Close()
	}()

	if _, found, err := st.Get(ctx, KeyMatchState); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}
	if err := st.Put(ctx, KeyMatchState, []byte(`{"target":15}`)); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := mr.Get("tanteo:" + KeyMatchState)
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != `{"target":15}` {
		t.Fatalf("unexpected raw value %q", got)
	}
	if mr.TTL("tanteo:"+KeyMatchState) != 0 {
		t.Fatalf("expected no expiry on stored value")
	}
}

func TestRedisAdapterFallsBackOnCorruptData(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	a := NewAdapter(NewRedisStore(rdb), nil)
	defer func() {
		_ = rdb.Close()
	}()

	if err := mr.Set("tanteo:"+KeyStats, "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := a.LoadStats(context.Background())
	if s.Matches == nil || len(s.Matches) != 0 {
		t.Fatalf("expected empty stats, got %+v", s)
	}
}

func TestOpenRedisRejectsEmptyURL(t *testing.T) {
	if _, err := OpenRedis(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for empty url")
	}
}
