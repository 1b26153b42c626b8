package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jobboardhq/job-board-api/internal/model"
)

// RefreshTokenRepository defines the interface for refresh token bookkeeping.
type RefreshTokenRepository interface {
	CreateToken(ctx context.Context, token *model.RefreshToken) error
	GetTokenByJTI(ctx context.Context, jti string) (*model.RefreshToken, error)

	// RevokeTokenByJTI marks a token revoked. It reports ErrNotFound when the
	// token does not exist or is already revoked, so of any number of callers
	// presenting the same token exactly one spends it.
	RevokeTokenByJTI(ctx context.Context, jti string) error

	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
}

type refreshTokenPostgresRepository struct {
	db *Connection
}

// NewRefreshTokenPostgresRepository creates a postgres backed RefreshTokenRepository.
func NewRefreshTokenPostgresRepository(db *Connection) RefreshTokenRepository {
	return &refreshTokenPostgresRepository{db: db}
}

func (r *refreshTokenPostgresRepository) CreateToken(ctx context.Context, token *model.RefreshToken) error {
	query := `INSERT INTO refresh_tokens
			  (id, jti, user_id, token_hash, issued_at, expires_at, revoked_at, rotated_from_jti)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx, query,
		token.ID, token.JTI, token.UserID, token.TokenHash,
		token.IssuedAt, token.ExpiresAt, token.RevokedAt, token.RotatedFromJTI,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

func (r *refreshTokenPostgresRepository) GetTokenByJTI(ctx context.Context, jti string) (*model.RefreshToken, error) {
	query := `SELECT id, jti, user_id, token_hash, issued_at, expires_at, revoked_at, rotated_from_jti,
					 created_at, updated_at
			  FROM refresh_tokens WHERE jti = $1`

	var token model.RefreshToken
	err := r.db.QueryRow(ctx, query, jti).Scan(
		&token.ID, &token.JTI, &token.UserID, &token.TokenHash,
		&token.IssuedAt, &token.ExpiresAt, &token.RevokedAt, &token.RotatedFromJTI,
		&token.CreatedAt, &token.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token by jti: %w", err)
	}

	return &token, nil
}

func (r *refreshTokenPostgresRepository) RevokeTokenByJTI(ctx context.Context, jti string) error {
	query := `UPDATE refresh_tokens SET revoked_at = NOW(), updated_at = NOW()
			  WHERE jti = $1 AND revoked_at IS NULL`

	tag, err := r.db.Exec(ctx, query, jti)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *refreshTokenPostgresRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked_at = NOW(), updated_at = NOW()
			  WHERE user_id = $1 AND revoked_at IS NULL`

	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to revoke refresh tokens for user: %w", err)
	}

	return nil
}
