package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contact-service/internal/domain"
)

// SubmissionRepository encapsulates submission persistence.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	GetByID(ctx context.Context, id string) (*domain.Submission, error)
	List(ctx context.Context, limit, offset int) ([]domain.Submission, error)
	ListUnprocessed(ctx context.Context, limit, offset int) ([]domain.Submission, error)
	MarkProcessed(ctx context.Context, id string, processedAt time.Time) (*domain.Submission, error)
}

type submissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository instantiates repository.
func NewSubmissionRepository(pool *pgxpool.Pool) SubmissionRepository {
	return &submissionRepository{pool: pool}
}

const submissionColumns = `id, name, email, message, ip_address, user_agent, is_processed, processed_at, created_at, updated_at`

func (r *submissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	const query = `
        INSERT INTO submissions (name, email, message, ip_address, user_agent)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, is_processed, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		submission.Name,
		submission.Email,
		submission.Message,
		submission.IPAddress,
		submission.UserAgent,
	).Scan(&submission.ID, &submission.IsProcessed, &submission.CreatedAt, &submission.UpdatedAt)
}

func (r *submissionRepository) GetByID(ctx context.Context, id string) (*domain.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submissions WHERE id=$1`
	var submission domain.Submission
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&submission.ID,
		&submission.Name,
		&submission.Email,
		&submission.Message,
		&submission.IPAddress,
		&submission.UserAgent,
		&submission.IsProcessed,
		&submission.ProcessedAt,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) List(ctx context.Context, limit, offset int) ([]domain.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submissions
        ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.fetchMany(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
}

func (r *submissionRepository) ListUnprocessed(ctx context.Context, limit, offset int) ([]domain.Submission, error) {
	const query = `SELECT ` + submissionColumns + ` FROM submissions
        WHERE is_processed=false
        ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	return r.fetchMany(ctx, query, normalizeLimit(limit), normalizeOffset(offset))
}

// MarkProcessed stamps processed_at; re-invocation on an already processed
// submission simply re-stamps.
func (r *submissionRepository) MarkProcessed(ctx context.Context, id string, processedAt time.Time) (*domain.Submission, error) {
	const query = `
        UPDATE submissions SET is_processed=true, processed_at=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + submissionColumns
	var submission domain.Submission
	if err := r.pool.QueryRow(ctx, query, processedAt, id).Scan(
		&submission.ID,
		&submission.Name,
		&submission.Email,
		&submission.Message,
		&submission.IPAddress,
		&submission.UserAgent,
		&submission.IsProcessed,
		&submission.ProcessedAt,
		&submission.CreatedAt,
		&submission.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Submission, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSubmissions(rows)
}

func scanSubmissions(rows pgx.Rows) ([]domain.Submission, error) {
	var result []domain.Submission
	for rows.Next() {
		var submission domain.Submission
		if err := rows.Scan(
			&submission.ID,
			&submission.Name,
			&submission.Email,
			&submission.Message,
			&submission.IPAddress,
			&submission.UserAgent,
			&submission.IsProcessed,
			&submission.ProcessedAt,
			&submission.CreatedAt,
			&submission.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, submission)
	}
	return result, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
