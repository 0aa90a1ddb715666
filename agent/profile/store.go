package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

var ErrInvalidSession = errors.New("session id is empty")

// Store is the persistence contract consumed by the orchestrator.
type Store interface {
	// Get returns the profile for the session, lazily creating a default row
	// on first access.
	Get(ctx context.Context, sessionID string) (*Profile, error)
	// MergeUpdate applies the non-nil fields of the update. Absent fields
	// never erase stored values.
	MergeUpdate(ctx context.Context, sessionID string, upd Update) error
	// ClearContact nulls out phone number and email after the customer
	// rejects the confirmation summary.
	ClearContact(ctx context.Context, sessionID string) error
}

type PostgresStore struct {
	db *bun.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, sessionID string) (*Profile, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}

	p := new(Profile)
	err := s.db.NewSelect().
		Model(p).
		Where("session_id = ?", sessionID).
		Scan(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select profile: %w", err)
	}

	fresh := New(sessionID)
	if _, err := s.db.NewInsert().
		Model(fresh).
		On("CONFLICT (session_id) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return fresh, nil
}

func (s *PostgresStore) MergeUpdate(ctx context.Context, sessionID string, upd Update) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	changes := upd.changes()
	if len(changes) == 0 {
		return nil
	}

	q := s.db.NewUpdate().
		Model((*Profile)(nil)).
		Where("session_id = ?", sessionID)
	for _, c := range changes {
		if c.array {
			q = q.Set("? = ?", bun.Ident(c.column), pgdialect.Array(c.value))
			continue
		}
		q = q.Set("? = ?", bun.Ident(c.column), c.value)
	}

	if _, err := q.Exec(ctx); err != nil {
		return fmt.Errorf("merge profile update: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearContact(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidSession
	}

	_, err := s.db.NewUpdate().
		Model((*Profile)(nil)).
		Set("phone_number = NULL").
		Set("email = NULL").
		Where("session_id = ?", sessionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("clear contact fields: %w", err)
	}
	return nil
}
