package usecase

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobboardhq/job-board-api/internal/auth"
	"github.com/jobboardhq/job-board-api/internal/config"
	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/repository"
	"github.com/jobboardhq/job-board-api/internal/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Signup(ctx context.Context, params SignupParams) (*model.User, error)
	Login(ctx context.Context, params LoginParams) (*Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (*Tokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

// SignupParams defines the parameters for user registration.
type SignupParams struct {
	Email       string
	Password    string
	Role        model.Role
	FullName    string
	CompanyName *string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// Tokens is the access/refresh pair returned from login and refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("refresh token revoked")
	ErrTokenExpired       = errors.New("refresh token expired")
	ErrTokenMismatch      = errors.New("refresh token mismatch")
	ErrInvalidToken       = errors.New("invalid refresh token")
)

type authUsecase struct {
	userRepo  repository.UserRepository
	tokenRepo repository.RefreshTokenRepository
	jwtAuth   auth.JWTAuthenticator
	tokenCfg  config.Token
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.RefreshTokenRepository,
	jwtAuth auth.JWTAuthenticator,
	tokenCfg config.Token,
) AuthUsecase {
	return &authUsecase{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		jwtAuth:   jwtAuth,
		tokenCfg:  tokenCfg,
	}
}

func (u *authUsecase) Signup(ctx context.Context, params SignupParams) (*model.User, error) {
	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        params.Email,
		PasswordHash: passwordHash,
		Role:         params.Role,
		FullName:     params.FullName,
		CompanyName:  params.CompanyName,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}

		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Tokens, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return u.issueTokens(ctx, user.ID, user.Role, nil)
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := u.jwtAuth.ValidateToken(refreshToken, u.tokenCfg.RefreshTokenSecret, auth.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}

	stored, err := u.tokenRepo.GetTokenByJTI(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}

		return nil, err
	}

	if err := validateStoredToken(stored, hashToken(refreshToken), time.Now()); err != nil {
		return nil, err
	}

	// Rotation: the presented token is spent before its replacement exists.
	// The revoke is a compare-and-set, so of two concurrent refreshes with
	// the same token only one gets past this point.
	if err := u.tokenRepo.RevokeTokenByJTI(ctx, claims.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenRevoked
		}

		return nil, err
	}

	rotatedFrom := stored.JTI

	return u.issueTokens(ctx, claims.UserID, claims.Role, &rotatedFrom)
}

func (u *authUsecase) Logout(ctx context.Context, refreshToken string) error {
	claims, err := u.jwtAuth.ValidateToken(refreshToken, u.tokenCfg.RefreshTokenSecret, auth.TokenTypeRefresh)
	if err != nil {
		return ErrInvalidToken
	}

	// Logout is idempotent: a token that is gone or already revoked is done.
	if err := u.tokenRepo.RevokeTokenByJTI(ctx, claims.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	return nil
}

func (u *authUsecase) issueTokens(
	ctx context.Context,
	userID uuid.UUID,
	role model.Role,
	rotatedFromJTI *string,
) (*Tokens, error) {
	accessToken, _, err := u.jwtAuth.GenerateToken(
		userID, role, auth.TokenTypeAccess,
		u.tokenCfg.AccessTokenSecret, u.tokenCfg.AccessTokenExpiresIn,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, jti, err := u.jwtAuth.GenerateToken(
		userID, role, auth.TokenTypeRefresh,
		u.tokenCfg.RefreshTokenSecret, u.tokenCfg.RefreshTokenExpiresIn,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := time.Now()
	if err := u.tokenRepo.CreateToken(ctx, &model.RefreshToken{
		JTI:            jti,
		UserID:         userID,
		TokenHash:      hashToken(refreshToken),
		IssuedAt:       now,
		ExpiresAt:      now.Add(u.tokenCfg.RefreshTokenExpiresIn),
		RotatedFromJTI: rotatedFromJTI,
	}); err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func hashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func validateStoredToken(stored *model.RefreshToken, presentedHash []byte, now time.Time) error {
	if stored.RevokedAt != nil {
		return ErrTokenRevoked
	}
	if now.After(stored.ExpiresAt) {
		return ErrTokenExpired
	}
	if subtle.ConstantTimeCompare(stored.TokenHash, presentedHash) != 1 {
		return ErrTokenMismatch
	}

	return nil
}
