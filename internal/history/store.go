// Package history persists chat sessions in a local SQLite database.
//
// The database is created on first use. An empty path keeps everything in
// memory for the lifetime of the process.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
)

// DefaultSessionLimit caps Sessions when the caller passes no limit.
const DefaultSessionLimit = 20

const busyTimeoutMillis = 10000

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user TEXT NOT NULL DEFAULT '',
    started_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    tool_call_id TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL DEFAULT '',
    tool_calls TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
`

// ErrSessionNotFound is returned for unknown session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session summarizes one stored conversation.
type Session struct {
	ID           string
	User         string
	StartedAt    time.Time
	MessageCount int
	// Preview is the first user message of the session.
	Preview string
}

// Message is one stored chat message.
type Message struct {
	ID         int64
	SessionID  string
	Role       string
	Content    string
	ToolCallID string
	Name       string
	ToolCalls  []openai.ToolCall
	CreatedAt  time.Time
}

// ChatMessage converts a stored message back to the wire type.
func (m Message) ChatMessage() openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role:       m.Role,
		Content:    m.Content,
		ToolCallID: m.ToolCallID,
		Name:       m.Name,
		ToolCalls:  m.ToolCalls,
	}
}

// Store is a SQLite backed session store.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the store at path. An empty path opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
		dsn = "file:" + path
	}
	dsn += fmt.Sprintf("?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", busyTimeoutMillis)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// Every connection to :memory: is a separate database, and the REPL is
	// single threaded anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewSession starts a session for user and returns its id.
func (s *Store) NewSession(ctx context.Context, user string) (string, error) {
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user, started_at) VALUES (?, ?, ?)`,
		id, user, s.now().UTC()); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}

// Append stores msg at the end of the session.
func (s *Store) Append(ctx context.Context, sessionID string, msg openai.ChatCompletionMessage) error {
	var toolCalls string
	if len(msg.ToolCalls) > 0 {
		b, err := json.Marshal(msg.ToolCalls)
		if err != nil {
			return fmt.Errorf("failed to encode tool calls: %w", err)
		}
		toolCalls = string(b)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, tool_call_id, name, tool_calls, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, msg.Role, msg.Content, msg.ToolCallID, msg.Name, toolCalls, s.now().UTC()); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// Messages returns the messages of a session in insertion order.
func (s *Store) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, tool_call_id, name, tool_calls, created_at
		 FROM messages WHERE session_id = ? ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var toolCalls string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.ToolCallID, &m.Name, &toolCalls, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to read message: %w", err)
		}
		if toolCalls != "" {
			if err := json.Unmarshal([]byte(toolCalls), &m.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls of message %d: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Sessions lists the most recent sessions first.
func (s *Store) Sessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.user, s.started_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.session_id = s.id),
		       COALESCE((SELECT content FROM messages m
		                 WHERE m.session_id = s.id AND m.role = 'user'
		                 ORDER BY m.id ASC LIMIT 1), '')
		FROM sessions s
		ORDER BY s.started_at DESC, s.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.User, &sess.StartedAt, &sess.MessageCount, &sess.Preview); err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Recorder binds a session id so the store can serve as an agent history sink.
func (s *Store) Recorder(sessionID string) *Recorder {
	return &Recorder{store: s, sessionID: sessionID}
}

// Recorder appends messages to one session.
type Recorder struct {
	store     *Store
	sessionID string
}

// SessionID returns the bound session id.
func (r *Recorder) SessionID() string { return r.sessionID }

func (r *Recorder) Append(ctx context.Context, msg openai.ChatCompletionMessage) error {
	return r.store.Append(ctx, r.sessionID, msg)
}
