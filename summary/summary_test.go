package summary

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/saireddyganapuram/Tecnvirons/storage"
)

type fakeStore struct {
	session    *storage.Session
	sessionErr error
	events     []storage.Event
	historyErr error

	updatedID       string
	updatedSummary  string
	updatedDuration int
	updateErr       error
}

func (f *fakeStore) GetSession(sessionID string) (*storage.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeStore) FetchHistory(sessionID string) ([]storage.Event, error) {
	return f.events, f.historyErr
}

func (f *fakeStore) UpdateSessionEnd(sessionID string, endTime time.Time, durationSecs int, summary string) error {
	f.updatedID = sessionID
	f.updatedDuration = durationSecs
	f.updatedSummary = summary
	return f.updateErr
}

func liveSession(started time.Time) *storage.Session {
	return &storage.Session{SessionID: "sess-1", UserID: "u1", StartTime: started}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(nil)
	if !strings.Contains(got, "Empty session") {
		t.Errorf("Expected empty-session summary, got %q", got)
	}
}

func TestSummarizeCounts(t *testing.T) {
	events := []storage.Event{
		{Role: storage.RoleUser, Content: "hello"},
		{Role: storage.RoleAssistant, Content: "hi there"},
		{Role: storage.RoleUser, Content: "bye"},
		{Role: storage.RoleAssistant, Content: "see you"},
	}
	got := Summarize(events)
	if !strings.Contains(got, "2 user message(s)") {
		t.Errorf("Missing user count: %q", got)
	}
	if !strings.Contains(got, "2 assistant response(s)") {
		t.Errorf("Missing assistant count: %q", got)
	}
	if strings.Contains(got, "tool result") {
		t.Errorf("No tools ran, summary mentions them: %q", got)
	}
}

func TestSummarizeToolCount(t *testing.T) {
	events := []storage.Event{
		{Role: storage.RoleUser, Content: "show my stats"},
		{Role: storage.RoleTool, Content: `{"tool":"get_user_stats"}`},
		{Role: storage.RoleAssistant, Content: "here you go"},
	}
	got := Summarize(events)
	if !strings.Contains(got, "1 tool result(s)") {
		t.Errorf("Missing tool count: %q", got)
	}
}

func TestSummarizeTopics(t *testing.T) {
	events := []storage.Event{
		{Role: storage.RoleUser, Content: "tell me about websockets"},
		{Role: storage.RoleUser, Content: "and the database layer"},
		{Role: storage.RoleAssistant, Content: "sure"},
	}
	got := Summarize(events)
	if !strings.Contains(got, "WebSockets") {
		t.Errorf("Missing WebSockets topic: %q", got)
	}
	if !strings.Contains(got, "Databases") {
		t.Errorf("Missing Databases topic: %q", got)
	}
}

func TestSummarizeTopicsOnlyFirstThreeUserMessages(t *testing.T) {
	events := []storage.Event{
		{Role: storage.RoleUser, Content: "one"},
		{Role: storage.RoleUser, Content: "two"},
		{Role: storage.RoleUser, Content: "three"},
		{Role: storage.RoleUser, Content: "tell me about websockets"},
	}
	got := Summarize(events)
	if strings.Contains(got, "WebSockets") {
		t.Errorf("Fourth message should not contribute topics: %q", got)
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	events := []storage.Event{
		{Role: storage.RoleUser, Content: "fetch some data"},
		{Role: storage.RoleAssistant, Content: "done"},
	}
	first := Summarize(events)
	for i := 0; i < 5; i++ {
		if Summarize(events) != first {
			t.Fatal("Summarize is not deterministic")
		}
	}
}

func TestFinalizeWritesTerminalUpdate(t *testing.T) {
	store := &fakeStore{
		session: liveSession(time.Now().UTC().Add(-90 * time.Second)),
		events: []storage.Event{
			{Role: storage.RoleUser, Content: "hello"},
			{Role: storage.RoleAssistant, Content: "hi"},
		},
	}
	s := New(store)
	if err := s.Finalize("sess-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if store.updatedID != "sess-1" {
		t.Errorf("Updated wrong session: %q", store.updatedID)
	}
	if store.updatedDuration < 89 || store.updatedDuration > 92 {
		t.Errorf("Duration out of range: %d", store.updatedDuration)
	}
	if !strings.Contains(store.updatedSummary, "1 user message(s)") {
		t.Errorf("Unexpected summary: %q", store.updatedSummary)
	}
}

func TestFinalizeHistoryErrorStillUpdates(t *testing.T) {
	store := &fakeStore{
		session:    liveSession(time.Now().UTC()),
		historyErr: errors.New("disk gone"),
	}
	if err := New(store).Finalize("sess-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if store.updatedSummary != Unavailable {
		t.Errorf("Expected %q, got %q", Unavailable, store.updatedSummary)
	}
}

func TestFinalizeUnknownSession(t *testing.T) {
	store := &fakeStore{}
	if err := New(store).Finalize("missing"); err == nil {
		t.Error("Expected error for unknown session")
	}
	if store.updatedID != "" {
		t.Error("Unknown session must not be updated")
	}
}

func TestFinalizeImmediatelyAfterCreate(t *testing.T) {
	store, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	defer store.Close()

	// Abrupt disconnect right after connect: the session row must already be
	// durable when the close path runs, and must end up with terminal fields.
	d := storage.NewDispatcher(store, 16, 1)
	defer d.Close()
	if err := d.CreateSession("abrupt-1", "u1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := New(store).Finalize("abrupt-1"); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	sess, err := store.GetSession("abrupt-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sess == nil {
		t.Fatal("session row missing")
	}
	if sess.EndTime == nil || sess.Duration == nil || sess.FinalSummary == nil {
		t.Errorf("Terminal fields not written: %+v", sess)
	}
	if !strings.Contains(*sess.FinalSummary, "Empty session") {
		t.Errorf("Expected empty-session summary, got %q", *sess.FinalSummary)
	}
}

func TestFinalizeUpdateError(t *testing.T) {
	store := &fakeStore{
		session:   liveSession(time.Now().UTC()),
		updateErr: errors.New("locked"),
	}
	if err := New(store).Finalize("sess-1"); err == nil {
		t.Error("Expected update error to surface")
	}
}
