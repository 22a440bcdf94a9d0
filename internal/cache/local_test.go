// internal/cache/local_test.go
package cache

import (
	"context"
	"testing"

	"github.com/patterngate/gate/internal/pattern"
	"github.com/patterngate/gate/internal/scanner"
)

func TestLocalCacheGetMiss(t *testing.T) {
	dir := t.TempDir()
	cache := NewLocalCache(dir)

	key := CacheKey{ContentHash: "abc123", PatternSetVersion: "v1"}
	_, err := cache.Get(context.Background(), key)
	if err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestLocalCachePutGet(t *testing.T) {
	dir := t.TempDir()
	cache := NewLocalCache(dir)

	key := CacheKey{ContentHash: "abc123", PatternSetVersion: "v1"}
	entry := &CacheEntry{
		Key: key,
		Verdict: scanner.Verdict{
			Status:    scanner.StatusBlocked,
			Severity:  pattern.SeverityCritical,
			Message:   "test",
			PatternID: "test-rule",
			Block:     true,
		},
	}

	ctx := context.Background()
	if err := cache.Put(ctx, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.Verdict.PatternID != "test-rule" {
		t.Errorf("expected pattern ID test-rule, got %s", got.Verdict.PatternID)
	}
	if !got.Verdict.Block {
		t.Errorf("expected Block true")
	}
}

func TestLocalCacheDelete(t *testing.T) {
	dir := t.TempDir()
	cache := NewLocalCache(dir)
	ctx := context.Background()

	key := CacheKey{ContentHash: "abc123", PatternSetVersion: "v1"}
	entry := &CacheEntry{Key: key, Verdict: scanner.Verdict{Status: scanner.StatusPassed}}
	if err := cache.Put(ctx, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, key); err != ErrCacheMiss {
		t.Fatalf("expected ErrCacheMiss after delete, got %v", err)
	}
}
