package cache

import (
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("dashboard")
	if err := c.Set(key, []byte("payload"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, found := c.Get(key)
	if !found {
		t.Fatal("Expected cache hit")
	}
	if string(val) != "payload" {
		t.Errorf("Unexpected value: %s", val)
	}

	if err := c.Delete(key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, found := c.Get(key); found {
		t.Error("Expected miss after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	key := Key("short-lived")
	_ = c.Set(key, []byte("x"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get(key); found {
		t.Error("Expected entry to expire")
	}
}

func TestKey_StableAndVersioned(t *testing.T) {
	if Key("a") != Key("a") {
		t.Error("Expected deterministic keys")
	}
	if Key("a") == Key("b") {
		t.Error("Expected distinct keys for distinct names")
	}
	if len(Key("a")) == 0 {
		t.Error("Expected non-empty key")
	}
}
