package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/jobboard/internal/domain"
)

const jobColumns = `id, title, description, company, responsibilities, qualifications,
	job_type, city, country, salary_min, salary_max, salary_currency, remote, tags,
	applicant_count, is_active, views, expires_at, created_at, updated_at`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// jobSortColumns whitelists the sort keys accepted from the query string.
var jobSortColumns = map[string]string{
	"-createdAt":      "created_at DESC",
	"createdAt":       "created_at ASC",
	"-views":          "views DESC",
	"-applicantCount": "applicant_count DESC",
	"-salary":         "salary_max DESC NULLS LAST",
}

type pgJobRepository struct {
	pool *pgxpool.Pool
}

// NewPgJobRepository returns a JobRepository backed by PostgreSQL.
func NewPgJobRepository(pool *pgxpool.Pool) JobRepository {
	return &pgJobRepository{pool: pool}
}

func (r *pgJobRepository) Create(ctx context.Context, j *domain.Job) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO jobs
			(id, title, description, company, responsibilities, qualifications,
			 job_type, city, country, salary_min, salary_max, salary_currency, remote, tags,
			 applicant_count, is_active, views, expires_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)`,
		j.ID, j.Title, j.Description, j.Company, nonNil(j.Responsibilities), nonNil(j.Qualifications),
		string(j.JobType), j.Location.City, j.Location.Country, j.Salary.Min, j.Salary.Max,
		j.Salary.Currency, j.Remote, nonNil(j.Tags),
		j.ApplicantCount, j.IsActive, j.Views, j.ExpiresAt, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *pgJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (r *pgJobRepository) Update(ctx context.Context, j *domain.Job) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE jobs SET
			title = $1, description = $2, responsibilities = $3, qualifications = $4,
			job_type = $5, city = $6, country = $7, salary_min = $8, salary_max = $9,
			salary_currency = $10, remote = $11, tags = $12, expires_at = $13, updated_at = $14
		WHERE id = $15`,
		j.Title, j.Description, nonNil(j.Responsibilities), nonNil(j.Qualifications),
		string(j.JobType), j.Location.City, j.Location.Country, j.Salary.Min, j.Salary.Max,
		j.Salary.Currency, j.Remote, nonNil(j.Tags), j.ExpiresAt, j.UpdatedAt, j.ID,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgJobRepository) Deactivate(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrJobNotFound
	}
	return nil
}

func (r *pgJobRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE jobs SET views = views + 1 WHERE id = $1`, id)
	return err
}

func (r *pgJobRepository) List(ctx context.Context, f domain.JobFilter) ([]*domain.Job, int, error) {
	where := buildJobWhere(f)

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("jobs").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	order, ok := jobSortColumns[f.Sort]
	if !ok {
		order = jobSortColumns["-createdAt"]
	}
	query, args, err := psql.Select(jobColumns).From("jobs").Where(where).
		OrderBy(order).
		Limit(uint64(f.Limit)).
		Offset(uint64((f.Page - 1) * f.Limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	return jobs, total, err
}

func (r *pgJobRepository) ListActive(ctx context.Context, limit int) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE is_active
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list active jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *pgJobRepository) ListActiveSince(ctx context.Context, since time.Time) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE is_active AND created_at > $1
		ORDER BY created_at ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("list jobs since: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *pgJobRepository) StatsByType(ctx context.Context) ([]domain.JobTypeStat, error) {
	query, args, err := psql.Select("job_type", "COUNT(*)", "AVG(salary_min)::float8").
		From("jobs").
		GroupBy("job_type").
		OrderBy("job_type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build job stats query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	defer rows.Close()

	stats := []domain.JobTypeStat{}
	for rows.Next() {
		var st domain.JobTypeStat
		var jobType string
		if err := rows.Scan(&jobType, &st.Count, &st.AvgMinSalary); err != nil {
			return nil, err
		}
		st.JobType = domain.JobType(jobType)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (r *pgJobRepository) CountByCompany(ctx context.Context, company string) (domain.CompanyStats, error) {
	var st domain.CompanyStats
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active)
		FROM jobs WHERE company = $1`, company,
	).Scan(&st.TotalJobs, &st.ActiveJobs)
	if err != nil {
		return st, fmt.Errorf("count company jobs: %w", err)
	}
	return st, nil
}

// ---- helpers ----

// buildJobWhere turns a JobFilter into a squirrel predicate. Only active
// jobs are searchable unless the caller filters by owning company without
// ActiveOnly.
func buildJobWhere(f domain.JobFilter) sq.And {
	where := sq.And{}
	if f.Company != "" {
		where = append(where, sq.Eq{"company": f.Company})
	}
	if f.Company == "" || f.ActiveOnly {
		where = append(where, sq.Eq{"is_active": true})
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
			sq.Expr("EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE ?)", pattern),
			sq.Expr("company IN (SELECT id FROM users WHERE name ILIKE ?)", pattern),
		})
	}
	if f.JobType != nil {
		where = append(where, sq.Eq{"job_type": string(*f.JobType)})
	}
	if f.City != "" {
		where = append(where, sq.Eq{"city": f.City})
	}
	if f.Remote {
		where = append(where, sq.Eq{"remote": true})
	}
	if f.MinSalary != nil {
		where = append(where, sq.GtOrEq{"salary_min": *f.MinSalary})
	}
	if f.MaxSalary != nil {
		where = append(where, sq.LtOrEq{"salary_max": *f.MaxSalary})
	}
	if len(f.Tags) > 0 {
		where = append(where, sq.Expr("tags && ?", f.Tags))
	}
	return where
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	var jobType string
	err := row.Scan(
		&j.ID, &j.Title, &j.Description, &j.Company, &j.Responsibilities, &j.Qualifications,
		&jobType, &j.Location.City, &j.Location.Country, &j.Salary.Min, &j.Salary.Max,
		&j.Salary.Currency, &j.Remote, &j.Tags,
		&j.ApplicantCount, &j.IsActive, &j.Views, &j.ExpiresAt, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	j.JobType = domain.JobType(jobType)
	return &j, nil
}

func scanJobs(rows pgx.Rows) ([]*domain.Job, error) {
	var result []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
