// Package journal keeps a local SQLite record of every admin mutation attempt:
// what was changed, how it ended and the request id sent to the backend.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"labadmin/internal/crud"
	"labadmin/internal/logging"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Entry is one journaled mutation.
type Entry struct {
	ID        string
	Timestamp time.Time
	Entity    string
	Action    crud.Action
	TargetID  crud.Identifier
	Outcome   crud.Outcome
	RequestID string
	Detail    string
}

// Failed reports whether the mutation did not take effect.
func (e Entry) Failed() bool {
	return e.Outcome != crud.OutcomeSaved && e.Outcome != crud.OutcomeDeleted
}

// Filter narrows Recent.
type Filter struct {
	Entity     string
	FailedOnly bool
	Limit      int
}

var _ crud.Recorder = (*Store)(nil)

// Store is the journal database.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex
	now    func() time.Time
	logger *zap.Logger
}

// NewStore opens or creates the journal at path. ":memory:" is accepted.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection keeps :memory: databases alive and serializes writers
	db.SetMaxOpenConns(1)

	s := &Store{
		db:     db,
		dbPath: path,
		now:    time.Now,
		logger: logging.Get(logging.CategoryJournal),
	}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mutations (
		id TEXT PRIMARY KEY,
		ts INTEGER NOT NULL,
		entity TEXT NOT NULL,
		action TEXT NOT NULL,
		target_id TEXT,
		outcome TEXT NOT NULL,
		request_id TEXT,
		detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_mutations_ts ON mutations(ts);
	CREATE INDEX IF NOT EXISTS idx_mutations_entity ON mutations(entity);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record implements crud.Recorder.
func (s *Store) Record(ctx context.Context, ev crud.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	ts := s.now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO mutations (id, ts, entity, action, target_id, outcome, request_id, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, ts.UnixMilli(), ev.Entity, string(ev.Action), string(ev.TargetID),
		string(ev.Outcome), ev.RequestID, ev.Detail)
	if err != nil {
		return fmt.Errorf("failed to record mutation: %w", err)
	}
	s.logger.Debug("mutation recorded",
		zap.String("entity", ev.Entity),
		zap.String("action", string(ev.Action)),
		zap.String("outcome", string(ev.Outcome)))
	return nil
}

// Recent returns the newest entries first.
func (s *Store) Recent(ctx context.Context, f Filter) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, ts, entity, action, target_id, outcome, request_id, detail
		FROM mutations
		WHERE (? = '' OR entity = ?)
		  AND (? = 0 OR outcome NOT IN ('saved', 'deleted'))
		ORDER BY ts DESC, rowid DESC
		LIMIT ?
	`
	failedOnly := 0
	if f.FailedOnly {
		failedOnly = 1
	}
	rows, err := s.db.QueryContext(ctx, query, f.Entity, f.Entity, failedOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                       Entry
			ms                      int64
			action, target, outcome string
			requestID, detail       sql.NullString
		)
		if err := rows.Scan(&e.ID, &ms, &e.Entity, &action, &target, &outcome, &requestID, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan journal row: %w", err)
		}
		e.Timestamp = time.UnixMilli(ms)
		e.Action = crud.Action(action)
		e.TargetID = crud.Identifier(target)
		e.Outcome = crud.Outcome(outcome)
		e.RequestID = requestID.String
		e.Detail = detail.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of journaled mutations.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mutations`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Prune deletes entries older than cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `DELETE FROM mutations WHERE ts < ?`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune journal: %w", err)
	}
	return res.RowsAffected()
}
