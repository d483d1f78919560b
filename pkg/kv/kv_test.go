package kv

import (
	"testing"
)

func TestKVSetGet(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Set("k1", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := store.Get("k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "v1" {
		t.Errorf("Expected 'v1', got '%s'", val)
	}
}

func TestKVActiveSessions(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.MarkActive("session-A"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := store.MarkActive("session-B"); err != nil {
		t.Fatalf("mark: %v", err)
	}

	n, err := store.CountActive()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 active sessions, got %d", n)
	}

	if err := store.ClearActive("session-A"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	n, _ = store.CountActive()
	if n != 1 {
		t.Errorf("Expected 1 active session after clear, got %d", n)
	}
}

func TestKVTokenCache(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.SetTokenCache("session-1", 42); err != nil {
		t.Fatalf("set token cache: %v", err)
	}
	n, err := store.GetTokenCache("session-1")
	if err != nil {
		t.Fatalf("get token cache: %v", err)
	}
	if n != 42 {
		t.Errorf("Expected 42 tokens, got %d", n)
	}
}

func TestKVClosed(t *testing.T) {
	store, err := OpenMemory()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.Close()

	if err := store.Set("k", "v"); err == nil {
		t.Error("Expected error on closed store")
	}
}
