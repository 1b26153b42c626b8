package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobboardhq/job-board-api/internal/auth"
	"github.com/jobboardhq/job-board-api/internal/config"
	"github.com/jobboardhq/job-board-api/internal/handler"
	"github.com/jobboardhq/job-board-api/internal/mailer"
	"github.com/jobboardhq/job-board-api/internal/ratelimit"
	"github.com/jobboardhq/job-board-api/internal/repository"
	"github.com/jobboardhq/job-board-api/internal/server"
	"github.com/jobboardhq/job-board-api/internal/usecase"
	"github.com/jobboardhq/job-board-api/internal/validation"
)

func main() {
	logger := newLogger()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger = logger.Level(zerolog.Level(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	userRepo := repository.NewUserPostgresRepository(db)
	jobRepo := repository.NewJobPostgresRepository(db)
	resetCodeRepo := repository.NewPasswordResetCodePostgresRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenPostgresRepository(db)

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Audience, cfg.Token.Issuer)
	mail := mailer.NewMailer(&logger)

	validator, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create validator")
	}

	authUsecase := usecase.NewAuthUsecase(userRepo, refreshTokenRepo, jwtAuth, cfg.Token)
	resetUsecase := usecase.NewPasswordResetUsecase(userRepo, resetCodeRepo, refreshTokenRepo, mail, cfg.Reset)
	jobUsecase := usecase.NewJobUsecase(jobRepo)

	go purgeExpiredResetCodes(ctx, resetUsecase, &logger)

	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(authUsecase, validator, &logger),
		PasswordReset: handler.NewPasswordResetHandler(resetUsecase, validator, &logger),
		Job:           handler.NewJobHandler(jobUsecase, validator, &logger),
	}

	limiter := newLimiter(cfg, &logger)
	defer limiter.Close()

	srv := server.New(cfg, &logger, jwtAuth, handlers, limiter, db.Health)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server stopped with error")
	}

	logger.Info().Msg("server stopped")
}

// purgeExpiredResetCodes deletes expired password reset codes at startup and
// then hourly, so the table does not accumulate dead rows.
func purgeExpiredResetCodes(ctx context.Context, resetUsecase usecase.PasswordResetUsecase, logger *zerolog.Logger) {
	purge := func() {
		deleted, err := resetUsecase.PurgeExpiredCodes(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to purge expired password reset codes")
			return
		}
		if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Msg("purged expired password reset codes")
		}
	}

	purge()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purge()
		}
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// newLimiter prefers redis when configured so limits hold across
// instances, and falls back to the in-memory limiter otherwise.
func newLimiter(cfg *config.Config, logger *zerolog.Logger) ratelimit.Limiter {
	if cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryLimiter()
	}

	limiter, err := ratelimit.NewRedisLimiter(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory rate limiter")
		return ratelimit.NewMemoryLimiter()
	}

	return limiter
}
