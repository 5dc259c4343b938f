package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/jobboard/internal/domain"
)

// Ratings are averaged from company_reviews on every read rather than
// stored on the profile.
const companyColumns = `p.id, p.employer, p.company_name, p.industry, p.company_size, p.website,
	p.description, p.logo, p.city, p.country, p.headquarters, p.founded_year,
	p.linkedin, p.twitter, p.facebook, p.is_verified, p.created_at, p.updated_at,
	(SELECT COALESCE(AVG(r.rating), 0)::float8 FROM company_reviews r WHERE r.company_id = p.id),
	(SELECT COUNT(*) FROM company_reviews r WHERE r.company_id = p.id)`

const reviewColumns = `r.id, r.company_id, r.reviewer, COALESCE(u.name, ''), r.rating, r.title,
	r.comment, r.created_at, r.updated_at`

type pgCompanyRepository struct {
	pool *pgxpool.Pool
}

// NewPgCompanyRepository returns a CompanyRepository backed by PostgreSQL.
func NewPgCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &pgCompanyRepository{pool: pool}
}

func (r *pgCompanyRepository) Create(ctx context.Context, p *domain.CompanyProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_profiles
			(id, employer, company_name, industry, company_size, website, description, logo,
			 city, country, headquarters, founded_year, linkedin, twitter, facebook,
			 is_verified, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		p.ID, p.Employer, p.CompanyName, p.Industry, string(p.CompanySize), p.Website,
		p.Description, p.Logo, p.Location.City, p.Location.Country, p.Location.Headquarters,
		p.FoundedYear, p.SocialLinks.LinkedIn, p.SocialLinks.Twitter, p.SocialLinks.Facebook,
		p.IsVerified, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return domain.ErrCompanyExists
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *pgCompanyRepository) GetByID(ctx context.Context, id string) (*domain.CompanyProfile, error) {
	return r.getOne(ctx, `p.id = $1`, id)
}

func (r *pgCompanyRepository) GetByEmployer(ctx context.Context, employer string) (*domain.CompanyProfile, error) {
	return r.getOne(ctx, `p.employer = $1`, employer)
}

func (r *pgCompanyRepository) getOne(ctx context.Context, cond, arg string) (*domain.CompanyProfile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM company_profiles p WHERE `+cond, arg)
	p, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get company: %w", err)
	}
	return p, nil
}

func (r *pgCompanyRepository) Update(ctx context.Context, p *domain.CompanyProfile) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE company_profiles SET
			company_name = $1, industry = $2, company_size = $3, website = $4, description = $5,
			logo = $6, city = $7, country = $8, headquarters = $9, founded_year = $10,
			linkedin = $11, twitter = $12, facebook = $13, updated_at = $14
		WHERE id = $15`,
		p.CompanyName, p.Industry, string(p.CompanySize), p.Website, p.Description,
		p.Logo, p.Location.City, p.Location.Country, p.Location.Headquarters, p.FoundedYear,
		p.SocialLinks.LinkedIn, p.SocialLinks.Twitter, p.SocialLinks.Facebook, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCompanyNotFound
	}
	return nil
}

func (r *pgCompanyRepository) AddReview(ctx context.Context, rv *domain.Review) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO company_reviews (id, company_id, reviewer, rating, title, comment, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rv.ID, rv.CompanyID, rv.Reviewer, rv.Rating, rv.Title, rv.Comment, rv.CreatedAt, rv.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return domain.ErrAlreadyReviewed
			case pgerrcode.ForeignKeyViolation:
				return domain.ErrCompanyNotFound
			}
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *pgCompanyRepository) GetReview(ctx context.Context, companyID, reviewID string) (*domain.Review, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reviewColumns+`
		FROM company_reviews r LEFT JOIN users u ON u.id = r.reviewer
		WHERE r.company_id = $1 AND r.id = $2`, companyID, reviewID)
	rv, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return rv, nil
}

func (r *pgCompanyRepository) UpdateReview(ctx context.Context, rv *domain.Review) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE company_reviews SET rating = $1, title = $2, comment = $3, updated_at = $4
		WHERE company_id = $5 AND id = $6`,
		rv.Rating, rv.Title, rv.Comment, rv.UpdatedAt, rv.CompanyID, rv.ID,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *pgCompanyRepository) DeleteReview(ctx context.Context, companyID, reviewID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM company_reviews WHERE company_id = $1 AND id = $2`, companyID, reviewID)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

func (r *pgCompanyRepository) ListReviews(ctx context.Context, companyID string) ([]*domain.Review, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM company_reviews r LEFT JOIN users u ON u.id = r.reviewer
		WHERE r.company_id = $1
		ORDER BY r.created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var result []*domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	return result, rows.Err()
}

// ---- helpers ----

func scanCompany(row pgx.Row) (*domain.CompanyProfile, error) {
	var p domain.CompanyProfile
	var size string
	err := row.Scan(
		&p.ID, &p.Employer, &p.CompanyName, &p.Industry, &size, &p.Website,
		&p.Description, &p.Logo, &p.Location.City, &p.Location.Country, &p.Location.Headquarters,
		&p.FoundedYear, &p.SocialLinks.LinkedIn, &p.SocialLinks.Twitter, &p.SocialLinks.Facebook,
		&p.IsVerified, &p.CreatedAt, &p.UpdatedAt, &p.Ratings, &p.ReviewCount,
	)
	if err != nil {
		return nil, err
	}
	p.CompanySize = domain.CompanySize(size)
	return &p, nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var rv domain.Review
	err := row.Scan(
		&rv.ID, &rv.CompanyID, &rv.Reviewer, &rv.ReviewerName, &rv.Rating, &rv.Title,
		&rv.Comment, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
