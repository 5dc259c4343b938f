package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/jobboard/internal/domain"
)

type pgSavedJobRepository struct {
	pool *pgxpool.Pool
}

// NewPgSavedJobRepository returns a SavedJobRepository backed by PostgreSQL.
func NewPgSavedJobRepository(pool *pgxpool.Pool) SavedJobRepository {
	return &pgSavedJobRepository{pool: pool}
}

func (r *pgSavedJobRepository) Save(ctx context.Context, userID, jobID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO saved_jobs (user_id, job_id, saved_at) VALUES ($1,$2,$3)
		ON CONFLICT (user_id, job_id) DO NOTHING`, userID, jobID, at)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return domain.ErrJobNotFound
		}
		return fmt.Errorf("save job: %w", err)
	}
	return nil
}

func (r *pgSavedJobRepository) Remove(ctx context.Context, userID, jobID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
	if err != nil {
		return fmt.Errorf("unsave job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgSavedJobRepository) List(ctx context.Context, userID string, page, limit int) ([]*domain.Job, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM saved_jobs WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count saved jobs: %w", err)
	}

	query, args, err := psql.Select(qualifiedJobColumns()).
		From("saved_jobs s").
		Join("jobs ON jobs.id = s.job_id").
		Where("s.user_id = ?", userID).
		OrderBy("s.saved_at DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build saved jobs query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list saved jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	return jobs, total, err
}

// qualifiedJobColumns prefixes jobColumns with the jobs table so they stay
// unambiguous in joins.
func qualifiedJobColumns() string {
	cols := strings.Split(jobColumns, ",")
	for i, c := range cols {
		cols[i] = "jobs." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
