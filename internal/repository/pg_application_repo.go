package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/jobboard/internal/domain"
)

const applicationColumns = `id, job_id, applicant, cover_letter, resume_file_name, status,
	rating, screening_score, notes, interviews, applied_at, created_at, updated_at`

// statsWindow bounds the daily series returned by Stats.
const statsWindow = 30 * 24 * time.Hour

type pgApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewPgApplicationRepository returns an ApplicationRepository backed by PostgreSQL.
func NewPgApplicationRepository(pool *pgxpool.Pool) ApplicationRepository {
	return &pgApplicationRepository{pool: pool}
}

func (r *pgApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	notes, err := json.Marshal(nonNilNotes(a.Notes))
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	interviews, err := json.Marshal(nonNilInterviews(a.Interviews))
	if err != nil {
		return fmt.Errorf("marshal interviews: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var resume *string
	if a.Resume != nil {
		resume = &a.Resume.FileName
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO applications
			(id, job_id, applicant, cover_letter, resume_file_name, status,
			 rating, screening_score, notes, interviews, applied_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb,$10::jsonb,$11,$12,$13)`,
		a.ID, a.JobID, a.Applicant, a.CoverLetter, resume, string(a.Status),
		a.Rating, a.ScreeningScore, string(notes), string(interviews),
		a.AppliedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrAlreadyApplied
		}
		return fmt.Errorf("insert application: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE jobs SET applicant_count = applicant_count + 1 WHERE id = $1`, a.JobID); err != nil {
		return fmt.Errorf("bump applicant count: %w", err)
	}
	return tx.Commit(ctx)
}

func (r *pgApplicationRepository) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}
	return a, nil
}

func (r *pgApplicationRepository) FindByApplicantAndJob(ctx context.Context, applicant, jobID string) (*domain.Application, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+` FROM applications
		WHERE applicant = $1 AND job_id = $2`, applicant, jobID)
	a, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return a, nil
}

func (r *pgApplicationRepository) List(ctx context.Context, f domain.ApplicationFilter) ([]*domain.Application, int, error) {
	where := sq.Eq{}
	if f.Applicant != "" {
		where["applicant"] = f.Applicant
	}
	if f.JobID != "" {
		where["job_id"] = f.JobID
	}
	if f.Status != nil {
		where["status"] = string(*f.Status)
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("applications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	query, args, err := psql.Select(applicationColumns).From("applications").Where(where).
		OrderBy("applied_at DESC").
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var result []*domain.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, a)
	}
	return result, total, rows.Err()
}

func (r *pgApplicationRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, rating *int, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE applications
		SET status = $1, rating = COALESCE($2, rating), updated_at = $3
		WHERE id = $4`,
		string(status), rating, at, id,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAppNotFound
	}
	return nil
}

func (r *pgApplicationRepository) AddNote(ctx context.Context, id string, note domain.Note, at time.Time) ([]domain.Note, error) {
	entry, err := json.Marshal([]domain.Note{note})
	if err != nil {
		return nil, fmt.Errorf("marshal note: %w", err)
	}

	var raw []byte
	err = r.pool.QueryRow(ctx, `
		UPDATE applications
		SET notes = notes || $1::jsonb, updated_at = $2
		WHERE id = $3
		RETURNING notes`,
		string(entry), at, id,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAppNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("append note: %w", err)
	}

	var notes []domain.Note
	if err := json.Unmarshal(raw, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	return notes, nil
}

func (r *pgApplicationRepository) Stats(ctx context.Context, owner string) (*domain.ApplicationStats, error) {
	base := psql.Select().From("applications a").Join("jobs j ON j.id = a.job_id")
	if owner != "" {
		base = base.Where(sq.Eq{"j.company": owner})
	}

	byStatusSQL, args, err := base.Columns("a.status", "COUNT(*)").
		GroupBy("a.status").OrderBy("a.status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status stats: %w", err)
	}
	rows, err := r.pool.Query(ctx, byStatusSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("status stats: %w", err)
	}
	stats := &domain.ApplicationStats{
		ByStatus: []domain.StatusCount{},
		Daily:    []domain.DailyCount{},
	}
	for rows.Next() {
		var status string
		var c domain.StatusCount
		if err := rows.Scan(&status, &c.Count); err != nil {
			rows.Close()
			return nil, err
		}
		c.Status = domain.Status(status)
		stats.ByStatus = append(stats.ByStatus, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dailySQL, args, err := base.
		Columns("to_char(date_trunc('day', a.applied_at), 'YYYY-MM-DD') AS day", "COUNT(*)").
		Where(sq.GtOrEq{"a.applied_at": time.Now().UTC().Add(-statsWindow)}).
		GroupBy("day").OrderBy("day").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build daily stats: %w", err)
	}
	rows, err = r.pool.Query(ctx, dailySQL, args...)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d domain.DailyCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		stats.Daily = append(stats.Daily, d)
	}
	return stats, rows.Err()
}

// ---- helpers ----

func scanApplication(row pgx.Row) (*domain.Application, error) {
	var a domain.Application
	var status string
	var resume *string
	var rating *int16
	var notes, interviews []byte
	err := row.Scan(
		&a.ID, &a.JobID, &a.Applicant, &a.CoverLetter, &resume, &status,
		&rating, &a.ScreeningScore, &notes, &interviews,
		&a.AppliedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Status = domain.Status(status)
	if resume != nil {
		a.Resume = &domain.Resume{FileName: *resume}
	}
	if rating != nil {
		v := int(*rating)
		a.Rating = &v
	}
	if err := json.Unmarshal(notes, &a.Notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if err := json.Unmarshal(interviews, &a.Interviews); err != nil {
		return nil, fmt.Errorf("decode interviews: %w", err)
	}
	return &a, nil
}

func nonNilNotes(n []domain.Note) []domain.Note {
	if n == nil {
		return []domain.Note{}
	}
	return n
}

func nonNilInterviews(i []domain.Interview) []domain.Interview {
	if i == nil {
		return []domain.Interview{}
	}
	return i
}
