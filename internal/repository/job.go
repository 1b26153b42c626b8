package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobboardhq/job-board-api/internal/model"
)

// JobRepository defines the interface for job posting database operations.
type JobRepository interface {
	CreateJob(ctx context.Context, job *model.Job) (*model.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error)
	ListJobs(ctx context.Context) ([]*model.Job, error)
	ListJobsByCompany(ctx context.Context, companyID uuid.UUID, limit, offset uint64) ([]*model.Job, error)
	CountJobsByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

type jobPostgresRepository struct {
	db *Connection
}

// NewJobPostgresRepository creates a postgres backed JobRepository.
func NewJobPostgresRepository(db *Connection) JobRepository {
	return &jobPostgresRepository{db: db}
}

// Reads join users so listings can show the posting company's name without
// a second round trip. Candidates have no company_name, companies always do.
const jobSelect = `
	SELECT j.id, j.company_id, COALESCE(u.company_name, ''), j.title, j.department, j.location,
		   j.employment_type, j.experience_level, j.salary, j.description, j.requirements,
		   j.benefits, j.created_at, j.updated_at
	FROM jobs j
	JOIN users u ON u.id = j.company_id`

func scanJob(row pgx.Row) (*model.Job, error) {
	var job model.Job
	err := row.Scan(
		&job.ID, &job.CompanyID, &job.CompanyName, &job.Title, &job.Department, &job.Location,
		&job.EmploymentType, &job.ExperienceLevel, &job.Salary, &job.Description,
		&job.Requirements, &job.Benefits, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &job, nil
}

func (r *jobPostgresRepository) CreateJob(ctx context.Context, job *model.Job) (*model.Job, error) {
	query := `INSERT INTO jobs
			  (id, company_id, title, department, location, employment_type, experience_level,
			   salary, description, requirements, benefits)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			  RETURNING id, created_at, updated_at`

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}

	err := r.db.QueryRow(ctx, query,
		job.ID, job.CompanyID, job.Title, job.Department, job.Location,
		job.EmploymentType, job.ExperienceLevel, job.Salary,
		job.Description, job.Requirements, job.Benefits,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return job, nil
}

func (r *jobPostgresRepository) GetJob(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	query := jobSelect + ` WHERE j.id = $1`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return job, nil
}

func (r *jobPostgresRepository) ListJobs(ctx context.Context) ([]*model.Job, error) {
	query := jobSelect + ` ORDER BY j.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

func (r *jobPostgresRepository) ListJobsByCompany(
	ctx context.Context,
	companyID uuid.UUID,
	limit, offset uint64,
) ([]*model.Job, error) {
	query := jobSelect + ` WHERE j.company_id = $1 ORDER BY j.created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list company jobs: %w", err)
	}
	defer rows.Close()

	return collectJobs(rows)
}

func (r *jobPostgresRepository) CountJobsByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM jobs WHERE company_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, companyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count company jobs: %w", err)
	}

	return count, nil
}

func collectJobs(rows pgx.Rows) ([]*model.Job, error) {
	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}
