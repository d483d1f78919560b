// Storage module - SQLite data storage

package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/saireddyganapuram/Tecnvirons/pkg/config"

	_ "github.com/mattn/go-sqlite3"
)

// Valid event roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

type Storage struct {
	db *sql.DB

	// Prepared statements for frequently used queries
	stmtCreateSession *sql.Stmt
	stmtInsertEvent   *sql.Stmt
	stmtGetSession    *sql.Stmt
	stmtFetchHistory  *sql.Stmt
	stmtUpdateEnd     *sql.Stmt
}

// Session is the durable record of one connection's lifetime
type Session struct {
	SessionID    string     `json:"session_id"`
	UserID       string     `json:"user_id"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Duration     *int       `json:"duration,omitempty"` // seconds
	FinalSummary *string    `json:"final_summary,omitempty"`
}

// Event is one role-tagged message within a session
type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"` // user, assistant, tool
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

func New(dbPath string) (*Storage, error) {
	cfg := config.DefaultStorageConfig()
	cfg.DBPath = dbPath
	return NewWithConfig(*cfg)
}

// NewWithConfig creates storage with injected configuration
func NewWithConfig(cfg config.StorageConfig) (*Storage, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path required")
	}
	db, err := sql.Open("sqlite3", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	s := &Storage{db: db}

	if cfg.WalMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return nil, fmt.Errorf("failed to set WAL: %w", err)
		}
	}

	syncMode := cfg.SyncMode
	if syncMode == "" {
		syncMode = "NORMAL"
	}
	if _, err := db.Exec("PRAGMA synchronous=" + syncMode + ";"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.initPreparedStmts(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	log.Printf("[OK] Storage: database %s", cfg.DBPath)
	return s, nil
}

func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id    TEXT PRIMARY KEY,
		user_id       TEXT NOT NULL DEFAULT 'anonymous',
		start_time    TIMESTAMP NOT NULL,
		end_time      TIMESTAMP,
		duration      INTEGER,
		final_summary TEXT
	);
	CREATE TABLE IF NOT EXISTS events (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role       TEXT NOT NULL CHECK(role IN ('user','assistant','tool')),
		content    TEXT NOT NULL,
		timestamp  TIMESTAMP NOT NULL,
		FOREIGN KEY(session_id) REFERENCES sessions(session_id)
	);
	CREATE INDEX IF NOT EXISTS idx_events_session_time ON events(session_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Storage) initPreparedStmts() error {
	var err error
	// INSERT OR IGNORE: reconnecting with a known session_id is a resume, not an error
	if s.stmtCreateSession, err = s.db.Prepare(
		"INSERT OR IGNORE INTO sessions (session_id, user_id, start_time) VALUES (?, ?, ?)"); err != nil {
		return err
	}
	if s.stmtInsertEvent, err = s.db.Prepare(
		"INSERT INTO events (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)"); err != nil {
		return err
	}
	if s.stmtGetSession, err = s.db.Prepare(
		"SELECT session_id, user_id, start_time, end_time, duration, final_summary FROM sessions WHERE session_id = ?"); err != nil {
		return err
	}
	if s.stmtFetchHistory, err = s.db.Prepare(
		"SELECT id, session_id, role, content, timestamp FROM events WHERE session_id = ? ORDER BY timestamp, id"); err != nil {
		return err
	}
	if s.stmtUpdateEnd, err = s.db.Prepare(
		"UPDATE sessions SET end_time = ?, duration = ?, final_summary = ? WHERE session_id = ?"); err != nil {
		return err
	}
	return nil
}

// CreateSession inserts a session row. Idempotent: an existing session_id is
// treated as a resume and left untouched.
func (s *Storage) CreateSession(sessionID, userID string) error {
	if userID == "" {
		userID = "anonymous"
	}
	_, err := s.stmtCreateSession.Exec(sessionID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("create session %s: %w", sessionID, err)
	}
	return nil
}

// InsertEvent appends one role-tagged event to a session's durable log
func (s *Storage) InsertEvent(sessionID, role, content string) error {
	switch role {
	case RoleUser, RoleAssistant, RoleTool:
	default:
		return fmt.Errorf("insert event: invalid role %q", role)
	}
	_, err := s.stmtInsertEvent.Exec(sessionID, role, content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert event for %s: %w", sessionID, err)
	}
	return nil
}

// GetSession fetches a session row, or nil if it does not exist
func (s *Storage) GetSession(sessionID string) (*Session, error) {
	var sess Session
	var end sql.NullTime
	var dur sql.NullInt64
	var sum sql.NullString
	err := s.stmtGetSession.QueryRow(sessionID).Scan(
		&sess.SessionID, &sess.UserID, &sess.StartTime, &end, &dur, &sum)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	if end.Valid {
		sess.EndTime = &end.Time
	}
	if dur.Valid {
		d := int(dur.Int64)
		sess.Duration = &d
	}
	if sum.Valid {
		sess.FinalSummary = &sum.String
	}
	return &sess, nil
}

// FetchHistory returns all events for a session in generation order
func (s *Storage) FetchHistory(sessionID string) ([]Event, error) {
	rows, err := s.stmtFetchHistory.Query(sessionID)
	if err != nil {
		return nil, fmt.Errorf("fetch history for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Role, &e.Content, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateSessionEnd records the terminal metadata for a session. A session_id
// reused after termination gets its prior end overwritten (resume semantics).
func (s *Storage) UpdateSessionEnd(sessionID string, endTime time.Time, durationSecs int, summary string) error {
	_, err := s.stmtUpdateEnd.Exec(endTime.UTC(), durationSecs, summary, sessionID)
	if err != nil {
		return fmt.Errorf("update session end %s: %w", sessionID, err)
	}
	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	for _, stmt := range []*sql.Stmt{
		s.stmtCreateSession, s.stmtInsertEvent, s.stmtGetSession, s.stmtFetchHistory, s.stmtUpdateEnd,
	} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}
