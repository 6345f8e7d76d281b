package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/internal/dialer/service"
	"github.com/Ragm-Houm/dialer-houm-vercel-sub001/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T, ttl time.Duration) (*AvailabilityCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, ttl, logger.New("test")), mr
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, 5*time.Second)
	ctx := context.Background()

	if _, ok := c.Get(ctx, "co-test-20260901"); ok {
		t.Fatal("Get() on empty cache reported a hit")
	}

	view := &service.AvailabilityView{
		CampaignKey:  "co-test-20260901",
		Buckets:      map[string]int{"eligible": 3, "locked": 1},
		TotalPending: 4,
		Summary:      "none",
		GeneratedAt:  time.Now().UTC().Truncate(time.Second),
	}
	c.Set(ctx, view.CampaignKey, view)

	got, ok := c.Get(ctx, view.CampaignKey)
	if !ok {
		t.Fatal("Get() after Set() missed")
	}
	if got.TotalPending != view.TotalPending || got.Buckets["eligible"] != 3 {
		t.Errorf("Get() = %+v, want %+v", got, view)
	}
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, 5*time.Second)
	ctx := context.Background()

	c.Set(ctx, "co-test-20260901", &service.AvailabilityView{CampaignKey: "co-test-20260901"})
	mr.FastForward(6 * time.Second)

	if _, ok := c.Get(ctx, "co-test-20260901"); ok {
		t.Fatal("Get() after TTL expiry reported a hit")
	}
}

func TestCacheCorruptPayload(t *testing.T) {
	c, mr := newTestCache(t, 5*time.Second)

	if err := mr.Set("dialer:availability:bad", "{not json"); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Get(context.Background(), "bad"); ok {
		t.Fatal("Get() on corrupt payload reported a hit")
	}
}
