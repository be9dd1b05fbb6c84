package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ActivityEntry is the metadata recorded for one processed file.
// It never contains cell values.
type ActivityEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	RunID      uuid.UUID `json:"run_id" db:"run_id"`
	FileName   string    `json:"file_name" db:"file_name"`
	Format     string    `json:"format" db:"format"`
	Status     string    `json:"status" db:"status"`
	Rows       int       `json:"rows" db:"row_count"`
	Columns    int       `json:"columns" db:"column_count"`
	Target     string    `json:"target,omitempty" db:"target_format"`
	OutputName string    `json:"output_name,omitempty" db:"output_name"`
	IPAddress  string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent  string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// HistoryStore persists activity entries.
type HistoryStore interface {
	Record(ctx context.Context, entry ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]ActivityEntry, error)
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
}

// MemoryHistory keeps the most recent entries in process memory. It is used
// when no database is configured.
type MemoryHistory struct {
	mu       sync.Mutex
	capacity int
	entries  []ActivityEntry // oldest first
}

// NewMemoryHistory returns a store holding at most capacity entries.
func NewMemoryHistory(capacity int) *MemoryHistory {
	if capacity <= 0 {
		capacity = 500
	}
	return &MemoryHistory{capacity: capacity}
}

func (m *MemoryHistory) Record(_ context.Context, entry ActivityEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.capacity {
		m.entries = append(m.entries[:0], m.entries[len(m.entries)-m.capacity+1:]...)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MemoryHistory) Recent(_ context.Context, limit int) ([]ActivityEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ActivityEntry, 0, min(limit, len(m.entries)))
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

func (m *MemoryHistory) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.CreatedAt.Before(olderThan) {
			kept = append(kept, e)
		}
	}
	purged := int64(len(m.entries) - len(kept))
	m.entries = kept
	return purged, nil
}

const createActivityTable = `
CREATE TABLE IF NOT EXISTS sweep_activity (
	id            UUID PRIMARY KEY,
	run_id        UUID NOT NULL,
	file_name     TEXT NOT NULL,
	format        TEXT NOT NULL,
	status        TEXT NOT NULL,
	row_count     INTEGER NOT NULL,
	column_count  INTEGER NOT NULL,
	target_format TEXT NOT NULL DEFAULT '',
	output_name   TEXT NOT NULL DEFAULT '',
	ip_address    TEXT NOT NULL DEFAULT '',
	user_agent    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const createActivityIndex = `
CREATE INDEX IF NOT EXISTS sweep_activity_created_at_idx ON sweep_activity (created_at)`

// PostgresHistory stores activity entries in the sweep_activity table.
type PostgresHistory struct {
	db DBTX
}

// NewPostgresHistory returns a store backed by db. Call EnsureSchema once
// before use.
func NewPostgresHistory(db DBTX) *PostgresHistory {
	return &PostgresHistory{db: db}
}

// EnsureSchema creates the activity table if it does not exist.
func (p *PostgresHistory) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, createActivityTable); err != nil {
		return fmt.Errorf("create sweep_activity: %w", err)
	}
	if _, err := p.db.Exec(ctx, createActivityIndex); err != nil {
		return fmt.Errorf("create sweep_activity index: %w", err)
	}
	return nil
}

func (p *PostgresHistory) Record(ctx context.Context, e ActivityEntry) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO sweep_activity
			(id, run_id, file_name, format, status, row_count, column_count,
			 target_format, output_name, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.RunID, e.FileName, e.Format, e.Status, e.Rows, e.Columns,
		e.Target, e.OutputName, e.IPAddress, e.UserAgent, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (p *PostgresHistory) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	rows, err := p.db.Query(ctx, `
		SELECT id, run_id, file_name, format, status, row_count, column_count,
		       target_format, output_name, ip_address, user_agent, created_at
		FROM sweep_activity
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}

	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[ActivityEntry])
	if err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	return entries, nil
}

func (p *PostgresHistory) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM sweep_activity WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge activity: %w", err)
	}
	return tag.RowsAffected(), nil
}
