package model

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user is allowed to do. Companies post jobs,
// candidates browse and apply.
type Role string

const (
	RoleCompany   Role = "company"
	RoleCandidate Role = "candidate"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCompany || r == RoleCandidate
}

// User represents an account in the job board. The password is stored only
// as an argon2 encoded hash.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         Role
	FullName     string
	CompanyName  *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
