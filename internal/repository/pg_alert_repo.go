package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/jobboard/internal/domain"
)

const alertColumns = `id, user_id, keywords, job_types, location, min_salary, max_salary,
	remote, frequency, is_active, last_sent, created_at, updated_at`

type pgAlertRepository struct {
	pool *pgxpool.Pool
}

// NewPgAlertRepository returns an AlertRepository backed by PostgreSQL.
func NewPgAlertRepository(pool *pgxpool.Pool) AlertRepository {
	return &pgAlertRepository{pool: pool}
}

func (r *pgAlertRepository) Create(ctx context.Context, a *domain.JobAlert) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO job_alerts
			(id, user_id, keywords, job_types, location, min_salary, max_salary,
			 remote, frequency, is_active, last_sent, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		a.ID, a.User, nonNil(a.Keywords), jobTypesToStrings(a.JobTypes), a.Location,
		a.MinSalary, a.MaxSalary, a.Remote, string(a.Frequency), a.IsActive, a.LastSent,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *pgAlertRepository) GetByID(ctx context.Context, id string) (*domain.JobAlert, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+alertColumns+` FROM job_alerts WHERE id = $1`, id)
	a, err := scanAlert(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

func (r *pgAlertRepository) ListByUser(ctx context.Context, userID string) ([]*domain.JobAlert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+alertColumns+` FROM job_alerts
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (r *pgAlertRepository) Update(ctx context.Context, a *domain.JobAlert) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE job_alerts SET
			keywords = $1, job_types = $2, location = $3, min_salary = $4, max_salary = $5,
			remote = $6, frequency = $7, is_active = $8, updated_at = $9
		WHERE id = $10`,
		nonNil(a.Keywords), jobTypesToStrings(a.JobTypes), a.Location, a.MinSalary, a.MaxSalary,
		a.Remote, string(a.Frequency), a.IsActive, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("update alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (r *pgAlertRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_alerts SET last_sent = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark alert sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (r *pgAlertRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM job_alerts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlertNotFound
	}
	return nil
}

func (r *pgAlertRepository) ListActiveByFrequency(ctx context.Context, f domain.Frequency) ([]*domain.JobAlert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+alertColumns+` FROM job_alerts
		WHERE is_active AND frequency = $1`, string(f))
	if err != nil {
		return nil, fmt.Errorf("list alerts by frequency: %w", err)
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// ---- helpers ----

func scanAlert(row pgx.Row) (*domain.JobAlert, error) {
	var a domain.JobAlert
	var jobTypes []string
	var freq string
	err := row.Scan(
		&a.ID, &a.User, &a.Keywords, &jobTypes, &a.Location, &a.MinSalary, &a.MaxSalary,
		&a.Remote, &freq, &a.IsActive, &a.LastSent, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Frequency = domain.Frequency(freq)
	a.JobTypes = make([]domain.JobType, len(jobTypes))
	for i, t := range jobTypes {
		a.JobTypes[i] = domain.JobType(t)
	}
	return &a, nil
}

func scanAlerts(rows pgx.Rows) ([]*domain.JobAlert, error) {
	var result []*domain.JobAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func jobTypesToStrings(types []domain.JobType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}
