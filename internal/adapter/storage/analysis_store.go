// internal/adapter/storage/analysis_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"trendlens/internal/domain/analysis"
)

const defaultRecentLimit = 20

const schema = `
	CREATE TABLE IF NOT EXISTS analyses (
		id            UUID PRIMARY KEY,
		mode          TEXT NOT NULL,
		subject       TEXT NOT NULL,
		channel_count INTEGER NOT NULL DEFAULT 0,
		top_channel   TEXT NOT NULL DEFAULT '',
		payload       JSONB NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at DESC);
`

// AnalysisStore persists completed analyses in Postgres
type AnalysisStore struct {
	db *pgxpool.Pool
}

// NewAnalysisStore creates a new analysis store
func NewAnalysisStore(db *pgxpool.Pool) *AnalysisStore {
	return &AnalysisStore{
		db: db,
	}
}

// Migrate creates the analyses table if it does not exist
func (s *AnalysisStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("error creating analyses table: %w", err)
	}
	return nil
}

// Record saves the summary and full response envelope of an analysis
func (s *AnalysisStore) Record(ctx context.Context, r *analysis.Result) error {
	query := `
		INSERT INTO analyses (
			id, mode, subject, channel_count, top_channel, payload, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		ON CONFLICT (id) DO NOTHING
	`

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("error marshaling analysis: %w", err)
	}

	summary := analysis.Summarize(r)

	_, err = s.db.Exec(
		ctx,
		query,
		summary.ID,
		string(summary.Mode),
		summary.Subject,
		summary.ChannelCount,
		summary.TopChannel,
		payload,
		summary.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting analysis: %w", err)
	}

	return nil
}

// Recent lists the newest analyses first
func (s *AnalysisStore) Recent(ctx context.Context, limit int) ([]analysis.Summary, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	query := `
		SELECT id, mode, subject, channel_count, top_channel, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying analyses: %w", err)
	}
	defer rows.Close()

	summaries := make([]analysis.Summary, 0, limit)
	for rows.Next() {
		var (
			sum  analysis.Summary
			mode string
		)
		if err := rows.Scan(&sum.ID, &mode, &sum.Subject, &sum.ChannelCount, &sum.TopChannel, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning analysis: %w", err)
		}
		sum.Mode = analysis.Mode(mode)
		summaries = append(summaries, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}

	return summaries, nil
}

// Find returns the stored response envelope of one analysis
func (s *AnalysisStore) Find(ctx context.Context, id string) (json.RawMessage, error) {
	var payload []byte

	err := s.db.QueryRow(ctx, `SELECT payload FROM analyses WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, analysis.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying analysis: %w", err)
	}

	return json.RawMessage(payload), nil
}
