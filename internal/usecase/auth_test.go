package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboardhq/job-board-api/internal/auth"
	"github.com/jobboardhq/job-board-api/internal/config"
	"github.com/jobboardhq/job-board-api/internal/model"
)

func testTokenConfig() config.Token {
	return config.Token{
		Issuer:                "job-board-api",
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		AccessTokenExpiresIn:  2 * time.Hour,
		RefreshTokenExpiresIn: 7 * 24 * time.Hour,
	}
}

func newTestAuthUsecase() (AuthUsecase, *fakeUserRepo, *fakeRefreshTokenRepo, auth.JWTAuthenticator) {
	userRepo := newFakeUserRepo()
	tokenRepo := newFakeRefreshTokenRepo()
	jwtAuth := auth.NewJWTAuthenticator("job-board-api", "job-board-api")

	return NewAuthUsecase(userRepo, tokenRepo, jwtAuth, testTokenConfig()), userRepo, tokenRepo, jwtAuth
}

func companyName(name string) *string {
	return &name
}

func TestAuth_SignupThenLogin(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, _, jwtAuth := newTestAuthUsecase()

	user, err := authUsecase.Signup(ctx, SignupParams{
		Email:       "hr@acme.test",
		Password:    "s3cret-password",
		Role:        model.RoleCompany,
		FullName:    "Acme HR",
		CompanyName: companyName("Acme Corp"),
	})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)

	tokens, err := authUsecase.Login(ctx, LoginParams{
		Email:    "hr@acme.test",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	claims, err := jwtAuth.ValidateToken(tokens.AccessToken, "access-secret", auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.RoleCompany, claims.Role)
}

func TestAuth_SignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, _, _ := newTestAuthUsecase()

	params := SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	}

	_, err := authUsecase.Signup(ctx, params)
	require.NoError(t, err)

	_, err = authUsecase.Signup(ctx, params)
	require.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, tokenRepo, _ := newTestAuthUsecase()

	user, err := authUsecase.Signup(ctx, SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	})
	require.NoError(t, err)

	_, err = authUsecase.Login(ctx, LoginParams{Email: "dev@example.test", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, tokenRepo.activeCount(user.ID))
}

func TestAuth_LoginUnknownEmail(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, _, _ := newTestAuthUsecase()

	_, err := authUsecase.Login(ctx, LoginParams{Email: "nobody@example.test", Password: "whatever1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuth_LoginUpdatesLastLogin(t *testing.T) {
	ctx := context.Background()
	authUsecase, userRepo, _, _ := newTestAuthUsecase()

	user, err := authUsecase.Signup(ctx, SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	})
	require.NoError(t, err)
	require.Nil(t, userRepo.users[user.ID].LastLoginAt)

	_, err = authUsecase.Login(ctx, LoginParams{Email: "dev@example.test", Password: "s3cret-password"})
	require.NoError(t, err)

	assert.NotNil(t, userRepo.users[user.ID].LastLoginAt)
}

func TestAuth_RefreshRotation(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, _, _ := newTestAuthUsecase()

	_, err := authUsecase.Signup(ctx, SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	})
	require.NoError(t, err)

	tokens, err := authUsecase.Login(ctx, LoginParams{Email: "dev@example.test", Password: "s3cret-password"})
	require.NoError(t, err)

	rotated, err := authUsecase.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The first refresh spent the presented token; replaying it must fail.
	_, err = authUsecase.Refresh(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// The rotated token is still good.
	_, err = authUsecase.Refresh(ctx, rotated.RefreshToken)
	require.NoError(t, err)
}

// barrierTokenRepo delays every GetTokenByJTI until all expected readers have
// read, forcing concurrent refreshes to see the same unrevoked record before
// either tries to spend it.
type barrierTokenRepo struct {
	*fakeRefreshTokenRepo
	reads *sync.WaitGroup
}

func (r *barrierTokenRepo) GetTokenByJTI(ctx context.Context, jti string) (*model.RefreshToken, error) {
	token, err := r.fakeRefreshTokenRepo.GetTokenByJTI(ctx, jti)
	r.reads.Done()
	r.reads.Wait()

	return token, err
}

func TestAuth_ConcurrentRefreshSpendsTokenOnce(t *testing.T) {
	ctx := context.Background()
	authUsecase, userRepo, tokenRepo, jwtAuth := newTestAuthUsecase()

	_, err := authUsecase.Signup(ctx, SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	})
	require.NoError(t, err)

	tokens, err := authUsecase.Login(ctx, LoginParams{Email: "dev@example.test", Password: "s3cret-password"})
	require.NoError(t, err)

	var reads sync.WaitGroup
	reads.Add(2)
	racing := NewAuthUsecase(
		userRepo,
		&barrierTokenRepo{fakeRefreshTokenRepo: tokenRepo, reads: &reads},
		jwtAuth,
		testTokenConfig(),
	)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := racing.Refresh(ctx, tokens.RefreshToken)
			results <- err
		}()
	}

	succeeded := 0
	for i := 0; i < 2; i++ {
		if err := <-results; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrTokenRevoked)
		}
	}

	assert.Equal(t, 1, succeeded, "a refresh token is one-time use")
}

func TestAuth_RefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, _, _ := newTestAuthUsecase()

	_, err := authUsecase.Signup(ctx, SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	})
	require.NoError(t, err)

	tokens, err := authUsecase.Login(ctx, LoginParams{Email: "dev@example.test", Password: "s3cret-password"})
	require.NoError(t, err)

	_, err = authUsecase.Refresh(ctx, tokens.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuth_LogoutRevokesRefreshToken(t *testing.T) {
	ctx := context.Background()
	authUsecase, _, _, _ := newTestAuthUsecase()

	_, err := authUsecase.Signup(ctx, SignupParams{
		Email:    "dev@example.test",
		Password: "s3cret-password",
		Role:     model.RoleCandidate,
		FullName: "Dev One",
	})
	require.NoError(t, err)

	tokens, err := authUsecase.Login(ctx, LoginParams{Email: "dev@example.test", Password: "s3cret-password"})
	require.NoError(t, err)

	require.NoError(t, authUsecase.Logout(ctx, tokens.RefreshToken))

	_, err = authUsecase.Refresh(ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	// Logging out again with the same token is a no-op, not an error.
	require.NoError(t, authUsecase.Logout(ctx, tokens.RefreshToken))
}
