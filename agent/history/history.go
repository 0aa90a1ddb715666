// Package history persists the per-session transcript and builds the bounded
// context window fed to the language model.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// DefaultWindow bounds how much transcript a single turn sees.
	DefaultWindow = 20
)

var ErrInvalidSession = errors.New("session id is empty")

// Entry is one transcript line, append-only, ordered by timestamp.
type Entry struct {
	bun.BaseModel `bun:"table:conversation_logs"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SessionID string    `bun:"session_id"`
	Role      string    `bun:"role"`
	Content   string    `bun:"content"`
	Timestamp time.Time `bun:"timestamp,nullzero,default:now()"`
}

type Store interface {
	Append(ctx context.Context, sessionID, role, content string) error
	// Recent returns up to limit of the newest entries in chronological order.
	Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error)
}

type PostgresStore struct {
	db *bun.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, sessionID, role, content string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	entry := &Entry{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(entry).Exec(ctx); err != nil {
		return fmt.Errorf("append transcript entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	if limit <= 0 {
		limit = DefaultWindow
	}

	var entries []Entry
	err := s.db.NewSelect().
		Model(&entries).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	// Newest-first from the query; callers want chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Window trims to the last n entries. Very short conversations (two entries
// or fewer) pass through untouched.
func Window(entries []Entry, n int) []Entry {
	if len(entries) <= 2 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// Context renders entries as "role: content" lines for prompt assembly.
func Context(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Role+": "+e.Content)
	}
	return strings.Join(lines, "\n")
}
