package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/repository"
)

// CompanyJobsPageSize matches the default page size of the listing API.
const CompanyJobsPageSize = 10

// JobUsecase defines the business logic for job postings.
type JobUsecase interface {
	CreateJob(ctx context.Context, companyID uuid.UUID, params CreateJobParams) (*model.Job, error)
	ListJobs(ctx context.Context) ([]*model.Job, error)
	ListCompanyJobs(ctx context.Context, companyID uuid.UUID, page uint64) (*JobPage, error)
}

// CreateJobParams defines the parameters for creating a job posting.
type CreateJobParams struct {
	Title           string
	Department      string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	Salary          *string
	Description     string
	Requirements    string
	Benefits        *string
}

// JobPage is one page of a company's job listings.
type JobPage struct {
	Count    int64
	Page     uint64
	PageSize uint64
	Jobs     []*model.Job
}

type jobUsecase struct {
	jobRepo repository.JobRepository
}

// NewJobUsecase creates a new instance of JobUsecase.
func NewJobUsecase(jobRepo repository.JobRepository) JobUsecase {
	return &jobUsecase{jobRepo: jobRepo}
}

func (u *jobUsecase) CreateJob(
	ctx context.Context,
	companyID uuid.UUID,
	params CreateJobParams,
) (*model.Job, error) {
	job, err := u.jobRepo.CreateJob(ctx, &model.Job{
		CompanyID:       companyID,
		Title:           params.Title,
		Department:      params.Department,
		Location:        params.Location,
		EmploymentType:  params.EmploymentType,
		ExperienceLevel: params.ExperienceLevel,
		Salary:          params.Salary,
		Description:     params.Description,
		Requirements:    params.Requirements,
		Benefits:        params.Benefits,
	})
	if err != nil {
		return nil, err
	}

	// Re-read through the listing query to pick up the company name.
	return u.jobRepo.GetJob(ctx, job.ID)
}

func (u *jobUsecase) ListJobs(ctx context.Context) ([]*model.Job, error) {
	return u.jobRepo.ListJobs(ctx)
}

func (u *jobUsecase) ListCompanyJobs(ctx context.Context, companyID uuid.UUID, page uint64) (*JobPage, error) {
	if page == 0 {
		page = 1
	}

	count, err := u.jobRepo.CountJobsByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	jobs, err := u.jobRepo.ListJobsByCompany(ctx, companyID, CompanyJobsPageSize, (page-1)*CompanyJobsPageSize)
	if err != nil {
		return nil, err
	}

	return &JobPage{
		Count:    count,
		Page:     page,
		PageSize: CompanyJobsPageSize,
		Jobs:     jobs,
	}, nil
}
