package cache

import (
	"testing"
	"time"
)

func TestCache_ReadYourWrites(t *testing.T) {
	c, err := New(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Set("key", []byte("value"), time.Minute)

	got, ok := c.Get("key")
	if !ok {
		t.Fatal("expected an immediate hit after Set")
	}
	if string(got) != "value" {
		t.Errorf("unexpected value: %q", got)
	}
}

func TestCache_MissingKey(t *testing.T) {
	c, err := New(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if _, ok := c.Get("absent"); ok {
		t.Fatal("expected a miss for an absent key")
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c, err := New(100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	c.Set("short", []byte("v"), 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Fatal("expected the entry to expire")
	}
}
