package qalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/kb-assist/internal/db"
)

// Store persists Q/A entries and mirrors each one to the logger.
type Store struct {
	db     *db.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given database. A nil logger
// uses slog.Default.
func NewStore(database *db.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: database, logger: logger}
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated, and a
// zero CreatedAt becomes the current time. The stored entry is returned.
func (s *Store) Log(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC().Truncate(time.Second)

	s.logger.Info(fmt.Sprintf("Q: %s | A: %s", entry.Question, entry.Answer),
		"id", entry.ID,
		"model", entry.Model,
		"cost_usd", entry.CostUSD,
	)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qa_log (
			id, question, answer, model, input_tokens, output_tokens, cost_usd, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Question,
		entry.Answer,
		entry.Model,
		entry.InputTokens,
		entry.OutputTokens,
		entry.CostUSD,
		entry.CreatedAt.Format(time.DateTime),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting qa entry: %w", err)
	}
	return entry, nil
}

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM qa_log WHERE id = ?", id)
	return scanInto(row)
}

const columns = "id, question, answer, model, input_tokens, output_tokens, cost_usd, created_at"

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT " + columns + " FROM qa_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += fmt.Sprintf(" LIMIT -1 OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying qa entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM qa_log").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting qa entries: %w", err)
	}
	return n, nil
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM qa_log WHERE created_at < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old qa entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e  Entry
		ts string
	)
	err := sc.Scan(
		&e.ID, &e.Question, &e.Answer, &e.Model,
		&e.InputTokens, &e.OutputTokens, &e.CostUSD, &ts,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning qa entry: %w", err)
	}

	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.CreatedAt = t
	} else if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.CreatedAt = t
	}
	return &e, nil
}
