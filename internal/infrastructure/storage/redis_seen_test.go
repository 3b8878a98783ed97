package storage

import (
	"context"
	"sort"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisSeen(t *testing.T) *RedisSeenSet {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSeenSet(client, "")
}

func TestRedisSeenSetAddAndLoad(t *testing.T) {
	t.Parallel()

	seen := newRedisSeen(t)
	ctx := context.Background()

	for _, u := range []string{
		"https://stan.kz/news/1",
		"https://baq.kz/news/2",
		"https://stan.kz/news/1", // repeat add must be a no-op
	} {
		if err := seen.Add(ctx, u); err != nil {
			t.Fatalf("add %s: %v", u, err)
		}
	}

	urls, err := seen.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	sort.Strings(urls)
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %v", urls)
	}
	if urls[0] != "https://baq.kz/news/2" || urls[1] != "https://stan.kz/news/1" {
		t.Fatalf("unexpected urls: %v", urls)
	}
}

func TestRedisSeenSetEmpty(t *testing.T) {
	t.Parallel()

	urls, err := newRedisSeen(t).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected empty set, got %v", urls)
	}
}
