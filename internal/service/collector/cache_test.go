package collector

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"trendlens/internal/domain/trend"
)

type stubCollector struct {
	source trend.Source
	terms  []string
	err    error
	calls  int
}

func (s *stubCollector) Source() trend.Source { return s.source }

func (s *stubCollector) FetchTrends(ctx context.Context, q trend.Query) ([]string, error) {
	s.calls++
	return s.terms, s.err
}

func TestCache_DisabledWrapReturnsCollectorUnchanged(t *testing.T) {
	cache := NewCache("", time.Minute, zerolog.New(io.Discard))
	col := &stubCollector{source: trend.SourceGoogle}

	if cache.Enabled() {
		t.Fatal("cache without URL should be disabled")
	}
	if got := cache.Wrap(col); got != trend.Collector(col) {
		t.Error("disabled cache should not wrap the collector")
	}
	if err := cache.Close(); err != nil {
		t.Errorf("closing a disabled cache should be a no-op, got %v", err)
	}
}

func TestCache_UnreachableRedisPassesThrough(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	cache := NewCacheWithClient(rdb, time.Minute, zerolog.New(io.Discard))
	col := &stubCollector{source: trend.SourceYouTube, terms: []string{"a", "b"}}

	terms, err := cache.Wrap(col).FetchTrends(context.Background(), trend.Query{Region: "US"})
	if err != nil {
		t.Fatalf("redis failure should not fail the collector: %v", err)
	}
	if !reflect.DeepEqual(terms, []string{"a", "b"}) {
		t.Errorf("got %v", terms)
	}
	if col.calls != 1 {
		t.Errorf("collector should be called once, got %d", col.calls)
	}
}

func TestCache_CollectorErrorsAreNotHidden(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	cache := NewCacheWithClient(rdb, time.Minute, zerolog.New(io.Discard))
	col := &stubCollector{source: trend.SourceX, err: trend.ErrCollectorUnavailable}

	if _, err := cache.Wrap(col).FetchTrends(context.Background(), trend.Query{}); !errors.Is(err, trend.ErrCollectorUnavailable) {
		t.Fatalf("expected collector error to pass through, got %v", err)
	}
}

func TestCacheKey_ScopesXBySubject(t *testing.T) {
	g1 := cacheKey(trend.SourceGoogle, trend.Query{Region: "us", Subject: "a"})
	g2 := cacheKey(trend.SourceGoogle, trend.Query{Region: "US", Subject: "b"})
	if g1 != g2 {
		t.Errorf("google keys should ignore subject: %q vs %q", g1, g2)
	}

	x1 := cacheKey(trend.SourceX, trend.Query{Subject: "Crypto"})
	x2 := cacheKey(trend.SourceX, trend.Query{Subject: "finance"})
	if x1 == x2 {
		t.Error("x keys should differ by subject")
	}
}
