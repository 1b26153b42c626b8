package model

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is the stored record backing a signed refresh token,
// keyed by JTI. Only a sha256 hash of the signed token is persisted.
// Rotation revokes the presented record and links the replacement to it
// through RotatedFromJTI.
type RefreshToken struct {
	ID             uuid.UUID
	JTI            string
	UserID         uuid.UUID
	TokenHash      []byte
	IssuedAt       time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	RotatedFromJTI *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
