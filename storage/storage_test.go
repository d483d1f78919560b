package storage

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateSessionIdempotent(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateSession("session-1", "user-a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	// Second create with the same id is a resume, not an error
	if err := s.CreateSession("session-1", "user-b"); err != nil {
		t.Fatalf("re-create: %v", err)
	}

	sess, err := s.GetSession("session-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess == nil {
		t.Fatal("session not found")
	}
	if sess.UserID != "user-a" {
		t.Errorf("Expected original user 'user-a', got '%s'", sess.UserID)
	}
	if sess.EndTime != nil {
		t.Error("New session should have no end_time")
	}
}

func TestCreateSessionDefaultUser(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateSession("session-1", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	sess, _ := s.GetSession("session-1")
	if sess.UserID != "anonymous" {
		t.Errorf("Expected 'anonymous', got '%s'", sess.UserID)
	}
}

func TestInsertEventAndFetchHistory(t *testing.T) {
	s := newTestStorage(t)

	if err := s.CreateSession("session-1", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	inserts := []struct{ role, content string }{
		{RoleUser, "hello"},
		{RoleAssistant, "hi there"},
		{RoleTool, `{"count":3}`},
	}
	for _, in := range inserts {
		if err := s.InsertEvent("session-1", in.role, in.content); err != nil {
			t.Fatalf("insert %s: %v", in.role, err)
		}
	}

	history, err := s.FetchHistory("session-1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(history))
	}
	for i, in := range inserts {
		if history[i].Role != in.role {
			t.Errorf("event %d: expected role '%s', got '%s'", i, in.role, history[i].Role)
		}
		if history[i].Content != in.content {
			t.Errorf("event %d: expected content '%s', got '%s'", i, in.content, history[i].Content)
		}
	}
}

func TestInsertEventRejectsInvalidRole(t *testing.T) {
	s := newTestStorage(t)
	s.CreateSession("session-1", "")

	if err := s.InsertEvent("session-1", "system", "nope"); err == nil {
		t.Error("Expected error for invalid role")
	}
}

func TestEventsDoNotCrossSessions(t *testing.T) {
	s := newTestStorage(t)
	s.CreateSession("session-A", "")
	s.CreateSession("session-B", "")
	s.InsertEvent("session-A", RoleUser, "from A")
	s.InsertEvent("session-B", RoleUser, "from B")
	s.InsertEvent("session-A", RoleAssistant, "reply A")

	histA, _ := s.FetchHistory("session-A")
	histB, _ := s.FetchHistory("session-B")
	if len(histA) != 2 {
		t.Errorf("Expected 2 events for A, got %d", len(histA))
	}
	if len(histB) != 1 {
		t.Errorf("Expected 1 event for B, got %d", len(histB))
	}
	for _, e := range histA {
		if e.SessionID != "session-A" {
			t.Errorf("A history contains event for %s", e.SessionID)
		}
	}
}

func TestUpdateSessionEnd(t *testing.T) {
	s := newTestStorage(t)
	s.CreateSession("session-1", "")

	end := time.Now().UTC()
	if err := s.UpdateSessionEnd("session-1", end, 42, "short chat"); err != nil {
		t.Fatalf("update: %v", err)
	}

	sess, _ := s.GetSession("session-1")
	if sess.EndTime == nil {
		t.Fatal("end_time not set")
	}
	if sess.Duration == nil || *sess.Duration != 42 {
		t.Errorf("Expected duration 42, got %v", sess.Duration)
	}
	if sess.FinalSummary == nil || *sess.FinalSummary != "short chat" {
		t.Errorf("Expected summary 'short chat', got %v", sess.FinalSummary)
	}

	// Reuse after termination overwrites the prior end
	if err := s.UpdateSessionEnd("session-1", end.Add(time.Minute), 100, "longer chat"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	sess, _ = s.GetSession("session-1")
	if *sess.Duration != 100 {
		t.Errorf("Expected overwritten duration 100, got %d", *sess.Duration)
	}
}

func TestGetSessionMissing(t *testing.T) {
	s := newTestStorage(t)
	sess, err := s.GetSession("nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess != nil {
		t.Error("Expected nil for missing session")
	}
}
