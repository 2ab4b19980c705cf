package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikhilbhutani/clonetts/internal/models"
)

// Service records synthesis runs in Postgres.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) Record(ctx context.Context, run models.SynthesisRun) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO synthesis_runs (id, job_id, backend, language, speaker_wav, input_path, output_path, text_length,
		                             status, error_kind, error_message, audio_bytes, cached, latency_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		run.ID, run.JobID, run.Backend, run.Language, run.SpeakerWAV, run.InputPath, run.OutputPath, run.TextLength,
		run.Status, run.ErrorKind, run.ErrorMessage, run.AudioBytes, run.Cached, run.LatencyMs,
	)
	if err != nil {
		return fmt.Errorf("insert synthesis run: %w", err)
	}
	return nil
}

type Query struct {
	JobID   string
	Status  string
	Backend string
	Since   *time.Time
	Limit   int
}

func (s *Service) Recent(ctx context.Context, q Query) ([]models.SynthesisRun, error) {
	query, args := buildRecentQuery(q)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query synthesis runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SynthesisRun
	for rows.Next() {
		var r models.SynthesisRun
		if err := rows.Scan(&r.ID, &r.JobID, &r.Backend, &r.Language, &r.SpeakerWAV, &r.InputPath, &r.OutputPath,
			&r.TextLength, &r.Status, &r.ErrorKind, &r.ErrorMessage, &r.AudioBytes, &r.Cached,
			&r.LatencyMs, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan synthesis run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate synthesis runs: %w", err)
	}
	return runs, nil
}

func buildRecentQuery(q Query) (string, []any) {
	if q.Limit <= 0 {
		q.Limit = 20
	}

	query := `SELECT id, job_id, backend, language, speaker_wav, input_path, output_path, text_length,
			         status, error_kind, error_message, audio_bytes, cached, latency_ms, created_at
			  FROM synthesis_runs WHERE 1=1`
	var args []any
	argIdx := 1

	if q.JobID != "" {
		query += fmt.Sprintf(" AND job_id = $%d", argIdx)
		args = append(args, q.JobID)
		argIdx++
	}
	if q.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, q.Status)
		argIdx++
	}
	if q.Backend != "" {
		query += fmt.Sprintf(" AND backend = $%d", argIdx)
		args = append(args, q.Backend)
		argIdx++
	}
	if q.Since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *q.Since)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argIdx)
	args = append(args, q.Limit)
	return query, args
}
