package model

import (
	"time"

	"github.com/google/uuid"
)

// Employment types accepted on a job posting.
const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentTemporary  = "temporary"
)

// Experience levels accepted on a job posting.
const (
	ExperienceEntry    = "entry"
	ExperienceMid      = "mid"
	ExperienceSenior   = "senior"
	ExperienceLead     = "lead"
	ExperienceDirector = "director"
)

// Job represents a job posting owned by a company user. CompanyName is
// denormalized from the owning user on reads and never written directly.
type Job struct {
	ID              uuid.UUID
	CompanyID       uuid.UUID
	CompanyName     string
	Title           string
	Department      string
	Location        string
	EmploymentType  string
	ExperienceLevel string
	Salary          *string
	Description     string
	Requirements    string
	Benefits        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
