package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jobboardhq/job-board-api/internal/auth"
	"github.com/jobboardhq/job-board-api/internal/config"
	"github.com/jobboardhq/job-board-api/internal/handler"
	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/ratelimit"
	"github.com/jobboardhq/job-board-api/internal/server"
	"github.com/jobboardhq/job-board-api/internal/usecase"
	"github.com/jobboardhq/job-board-api/internal/validation"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
)

// Stub usecases with overridable behavior per test.

type stubAuthUsecase struct {
	signupFn  func(ctx context.Context, params usecase.SignupParams) (*model.User, error)
	loginFn   func(ctx context.Context, params usecase.LoginParams) (*usecase.Tokens, error)
	refreshFn func(ctx context.Context, refreshToken string) (*usecase.Tokens, error)
	logoutFn  func(ctx context.Context, refreshToken string) error
}

func (s *stubAuthUsecase) Signup(ctx context.Context, params usecase.SignupParams) (*model.User, error) {
	return s.signupFn(ctx, params)
}

func (s *stubAuthUsecase) Login(ctx context.Context, params usecase.LoginParams) (*usecase.Tokens, error) {
	return s.loginFn(ctx, params)
}

func (s *stubAuthUsecase) Refresh(ctx context.Context, refreshToken string) (*usecase.Tokens, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthUsecase) Logout(ctx context.Context, refreshToken string) error {
	return s.logoutFn(ctx, refreshToken)
}

type stubResetUsecase struct {
	requestFn func(ctx context.Context, email string) error
	resetFn   func(ctx context.Context, email, code, newPassword string) error
}

func (s *stubResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestFn(ctx, email)
}

func (s *stubResetUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return s.resetFn(ctx, email, code, newPassword)
}

func (s *stubResetUsecase) PurgeExpiredCodes(context.Context) (int64, error) {
	return 0, nil
}

type stubJobUsecase struct {
	createFn      func(ctx context.Context, companyID uuid.UUID, params usecase.CreateJobParams) (*model.Job, error)
	listFn        func(ctx context.Context) ([]*model.Job, error)
	listCompanyFn func(ctx context.Context, companyID uuid.UUID, page uint64) (*usecase.JobPage, error)
}

func (s *stubJobUsecase) CreateJob(
	ctx context.Context,
	companyID uuid.UUID,
	params usecase.CreateJobParams,
) (*model.Job, error) {
	return s.createFn(ctx, companyID, params)
}

func (s *stubJobUsecase) ListJobs(ctx context.Context) ([]*model.Job, error) {
	return s.listFn(ctx)
}

func (s *stubJobUsecase) ListCompanyJobs(
	ctx context.Context,
	companyID uuid.UUID,
	page uint64,
) (*usecase.JobPage, error) {
	return s.listCompanyFn(ctx, companyID, page)
}

type fixture struct {
	router  http.Handler
	jwtAuth auth.JWTAuthenticator
	auth    *stubAuthUsecase
	reset   *stubResetUsecase
	job     *stubJobUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zerolog.Nop()

	validator, err := validation.New()
	require.NoError(t, err)

	cfg := &config.Config{
		HTTP: config.HTTP{Addr: ":0", ShutdownTimeout: time.Second},
		Token: config.Token{
			Issuer:                "job-board-api",
			AccessTokenSecret:     testAccessSecret,
			RefreshTokenSecret:    testRefreshSecret,
			AccessTokenExpiresIn:  2 * time.Hour,
			RefreshTokenExpiresIn: 7 * 24 * time.Hour,
		},
	}

	f := &fixture{
		jwtAuth: auth.NewJWTAuthenticator("job-board-api", "job-board-api"),
		auth:    &stubAuthUsecase{},
		reset:   &stubResetUsecase{},
		job:     &stubJobUsecase{},
	}

	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(f.auth, validator, &logger),
		PasswordReset: handler.NewPasswordResetHandler(f.reset, validator, &logger),
		Job:           handler.NewJobHandler(f.job, validator, &logger),
	}

	srv := server.New(cfg, &logger, f.jwtAuth, handlers, ratelimit.NewMemoryLimiter(),
		func(context.Context) error { return nil })
	f.router = srv.Handler()

	return f
}

func (f *fixture) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "203.0.113.7:51234"
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *fixture) accessToken(t *testing.T, role model.Role, ttl time.Duration) string {
	t.Helper()

	token, _, err := f.jwtAuth.GenerateToken(uuid.New(), role, auth.TokenTypeAccess, testAccessSecret, ttl)
	require.NoError(t, err)

	return token
}
