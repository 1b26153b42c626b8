package payload

import (
	"time"

	"github.com/jobboardhq/job-board-api/internal/model"
)

type CreateJobRequest struct {
	Title           string  `json:"title"            validate:"required,max=200"`
	Department      string  `json:"department"       validate:"required,max=100"`
	Location        string  `json:"location"         validate:"required,max=100"`
	EmploymentType  string  `json:"employment_type"  validate:"required,oneof=full-time part-time contract internship temporary"`
	ExperienceLevel string  `json:"experience_level" validate:"required,oneof=entry mid senior lead director"`
	Salary          *string `json:"salary"           validate:"omitempty,max=50"`
	Description     string  `json:"description"      validate:"required"`
	Requirements    string  `json:"requirements"     validate:"required"`
	Benefits        *string `json:"benefits"`
}

type JobResponse struct {
	ID              string    `json:"id"`
	CompanyID       string    `json:"company"`
	CompanyName     string    `json:"company_name"`
	Title           string    `json:"title"`
	Department      string    `json:"department"`
	Location        string    `json:"location"`
	EmploymentType  string    `json:"employment_type"`
	ExperienceLevel string    `json:"experience_level"`
	Salary          *string   `json:"salary,omitempty"`
	Description     string    `json:"description"`
	Requirements    string    `json:"requirements"`
	Benefits        *string   `json:"benefits,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewJobResponse maps a job posting to its API shape.
func NewJobResponse(job *model.Job) JobResponse {
	companyName := job.CompanyName
	if companyName == "" {
		companyName = "Company"
	}

	return JobResponse{
		ID:              job.ID.String(),
		CompanyID:       job.CompanyID.String(),
		CompanyName:     companyName,
		Title:           job.Title,
		Department:      job.Department,
		Location:        job.Location,
		EmploymentType:  job.EmploymentType,
		ExperienceLevel: job.ExperienceLevel,
		Salary:          job.Salary,
		Description:     job.Description,
		Requirements:    job.Requirements,
		Benefits:        job.Benefits,
		CreatedAt:       job.CreatedAt,
	}
}

// NewJobResponses maps a slice of jobs, returning an empty slice rather
// than null for no results.
func NewJobResponses(jobs []*model.Job) []JobResponse {
	out := make([]JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, NewJobResponse(job))
	}

	return out
}

type JobPageResponse struct {
	Count    int64         `json:"count"`
	Page     uint64        `json:"page"`
	PageSize uint64        `json:"page_size"`
	Results  []JobResponse `json:"results"`
}
