package model

import (
	"time"

	"github.com/google/uuid"
)

// PasswordResetCode is the single-use 6-digit credential mailed to a user
// who requested a password reset. A code is meaningful only while it is
// unused and unexpired; requesting a new code invalidates earlier ones.
type PasswordResetCode struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Used      bool
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
