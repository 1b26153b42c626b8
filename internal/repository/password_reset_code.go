package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobboardhq/job-board-api/internal/model"
)

// PasswordResetCodeRepository defines the interface for password reset code operations.
type PasswordResetCodeRepository interface {
	// CreateCode persists a new reset code.
	CreateCode(ctx context.Context, code *model.PasswordResetCode) (*model.PasswordResetCode, error)

	// GetActiveCode retrieves the newest unused, unexpired code matching a user and code value.
	GetActiveCode(ctx context.Context, userID uuid.UUID, code string) (*model.PasswordResetCode, error)

	// MarkCodeAsUsed consumes a code so it cannot be replayed.
	MarkCodeAsUsed(ctx context.Context, id uuid.UUID) error

	// InvalidateUserCodes marks all unused codes for a user as used.
	InvalidateUserCodes(ctx context.Context, userID uuid.UUID) error

	// DeleteExpiredCodes removes expired codes and reports how many were deleted.
	DeleteExpiredCodes(ctx context.Context) (int64, error)
}

type passwordResetCodePostgresRepository struct {
	db *Connection
}

// NewPasswordResetCodePostgresRepository creates a postgres backed PasswordResetCodeRepository.
func NewPasswordResetCodePostgresRepository(db *Connection) PasswordResetCodeRepository {
	return &passwordResetCodePostgresRepository{db: db}
}

const resetCodeColumns = `id, user_id, code, used, expires_at, created_at, updated_at`

func scanResetCode(row pgx.Row) (*model.PasswordResetCode, error) {
	var code model.PasswordResetCode
	err := row.Scan(
		&code.ID, &code.UserID, &code.Code, &code.Used,
		&code.ExpiresAt, &code.CreatedAt, &code.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &code, nil
}

func (r *passwordResetCodePostgresRepository) CreateCode(
	ctx context.Context,
	code *model.PasswordResetCode,
) (*model.PasswordResetCode, error) {
	query := `INSERT INTO password_reset_codes (id, user_id, code, used, expires_at)
			  VALUES ($1, $2, $3, FALSE, $4)
			  RETURNING ` + resetCodeColumns

	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}

	saved, err := scanResetCode(r.db.QueryRow(ctx, query, code.ID, code.UserID, code.Code, code.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("failed to create password reset code: %w", err)
	}

	return saved, nil
}

func (r *passwordResetCodePostgresRepository) GetActiveCode(
	ctx context.Context,
	userID uuid.UUID,
	code string,
) (*model.PasswordResetCode, error) {
	query := `SELECT ` + resetCodeColumns + `
			  FROM password_reset_codes
			  WHERE user_id = $1 AND code = $2 AND used = FALSE AND expires_at > NOW()
			  ORDER BY created_at DESC
			  LIMIT 1`

	found, err := scanResetCode(r.db.QueryRow(ctx, query, userID, code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get password reset code: %w", err)
	}

	return found, nil
}

func (r *passwordResetCodePostgresRepository) MarkCodeAsUsed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE password_reset_codes SET used = TRUE, updated_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark password reset code as used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *passwordResetCodePostgresRepository) InvalidateUserCodes(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE password_reset_codes SET used = TRUE, updated_at = NOW()
			  WHERE user_id = $1 AND used = FALSE`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to invalidate password reset codes: %w", err)
	}

	return nil
}

func (r *passwordResetCodePostgresRepository) DeleteExpiredCodes(ctx context.Context) (int64, error) {
	query := `DELETE FROM password_reset_codes WHERE expires_at < NOW()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired password reset codes: %w", err)
	}

	return tag.RowsAffected(), nil
}
