package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &Cache{client: client, ctx: context.Background()}
}

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{"single part", []string{"test"}},
		{"multiple parts", []string{"test", "key", "with", "many", "parts"}},
		{"empty parts", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{"simple key", "test", "medpeer:test"},
		{"key with colon", "test:key", "medpeer:test:key"},
		{"empty key", "", "medpeer:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cache.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestCache_SetGetDelete(t *testing.T) {
	cache := setupTestCache(t)

	if err := cache.Set("greeting", "hello", time.Minute); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	val, err := cache.Get("greeting")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if val != "hello" {
		t.Errorf("Get() = %q, want %q", val, "hello")
	}

	if err := cache.Delete("greeting"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	exists, err := cache.Exists("greeting")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if exists {
		t.Error("key should be gone after Delete()")
	}
}

func TestCache_UnreadCountRoundTrip(t *testing.T) {
	cache := setupTestCache(t)

	if _, ok := cache.GetUnreadCount("notifications", 42); ok {
		t.Error("expected miss before SetUnreadCount")
	}

	cache.SetUnreadCount("notifications", 42, 7)

	count, ok := cache.GetUnreadCount("notifications", 42)
	if !ok {
		t.Fatal("expected hit after SetUnreadCount")
	}
	if count != 7 {
		t.Errorf("GetUnreadCount() = %d, want 7", count)
	}

	cache.InvalidateUnreadCount("notifications", 42)
	if _, ok := cache.GetUnreadCount("notifications", 42); ok {
		t.Error("expected miss after InvalidateUnreadCount")
	}
}

func TestCache_NilSafe(t *testing.T) {
	var cache *Cache

	if _, err := cache.Get("key"); err != ErrCacheDisabled {
		t.Errorf("Get() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Set("key", "v", time.Minute); err != ErrCacheDisabled {
		t.Errorf("Set() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if _, ok := cache.GetUnreadCount("messages", 1); ok {
		t.Error("GetUnreadCount() on nil cache should miss")
	}
	// must not panic
	cache.SetUnreadCount("messages", 1, 2)
	cache.InvalidateUnreadCount("messages", 1)
	if err := cache.Close(); err != nil {
		t.Errorf("Close() on nil cache = %v, want nil", err)
	}
}
