package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"time"

	"github.com/jobboardhq/job-board-api/internal/config"
	"github.com/jobboardhq/job-board-api/internal/mailer"
	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/repository"
	"github.com/jobboardhq/job-board-api/internal/security"
)

// PasswordResetUsecase defines the business logic for the password reset flow.
type PasswordResetUsecase interface {
	// RequestPasswordReset generates a one-time code for the account behind
	// email and dispatches it by mail.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword replaces the user's password if the presented code is
	// active, then consumes the code and revokes outstanding sessions.
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// PurgeExpiredCodes deletes codes past their expiry and reports how many
	// were removed. Expired codes are already unusable; this keeps the table
	// from growing without bound.
	PurgeExpiredCodes(ctx context.Context) (int64, error)
}

// MailSender is the outbound mail contract the reset flow depends on.
type MailSender interface {
	Send(ctx context.Context, email mailer.Email) error
}

var (
	ErrUserNotFound     = errors.New("user with this email does not exist")
	ErrInvalidResetCode = errors.New("invalid or expired password reset code")
	ErrEmailDelivery    = errors.New("failed to deliver password reset email")
)

type passwordResetUsecase struct {
	userRepo  repository.UserRepository
	codeRepo  repository.PasswordResetCodeRepository
	tokenRepo repository.RefreshTokenRepository
	mail      MailSender
	resetCfg  config.Reset
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	codeRepo repository.PasswordResetCodeRepository,
	tokenRepo repository.RefreshTokenRepository,
	mail MailSender,
	resetCfg config.Reset,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:  userRepo,
		codeRepo:  codeRepo,
		tokenRepo: tokenRepo,
		mail:      mail,
		resetCfg:  resetCfg,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}

		return err
	}

	// A fresh request supersedes any outstanding code for the account.
	if err := u.codeRepo.InvalidateUserCodes(ctx, user.ID); err != nil {
		return err
	}

	code, err := generateResetCode()
	if err != nil {
		return fmt.Errorf("failed to generate reset code: %w", err)
	}

	if _, err := u.codeRepo.CreateCode(ctx, &model.PasswordResetCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(u.resetCfg.CodeExpiresIn),
	}); err != nil {
		return err
	}

	if err := u.mail.Send(ctx, u.resetEmail(user.Email, code)); err != nil {
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// A wrong email and a wrong code are indistinguishable here.
			return ErrInvalidResetCode
		}

		return err
	}

	resetCode, err := u.codeRepo.GetActiveCode(ctx, user.ID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetCode
		}

		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := u.userRepo.UpdatePasswordHash(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	if err := u.codeRepo.MarkCodeAsUsed(ctx, resetCode.ID); err != nil {
		return err
	}

	// Existing sessions are not to survive a password reset.
	return u.tokenRepo.RevokeAllForUser(ctx, user.ID)
}

func (u *passwordResetUsecase) PurgeExpiredCodes(ctx context.Context) (int64, error) {
	return u.codeRepo.DeleteExpiredCodes(ctx)
}

func (u *passwordResetUsecase) resetEmail(to, code string) mailer.Email {
	resetLink := fmt.Sprintf("%s?email=%s&code=%s", u.resetCfg.URL, url.QueryEscape(to), url.QueryEscape(code))
	body := fmt.Sprintf(
		"Your password reset code is: %s\n\n"+
			"Or reset your password using the link below:\n%s\n\n"+
			"The code expires in %s. If you did not request a password reset, "+
			"you can safely ignore this email.",
		code, resetLink, u.resetCfg.CodeExpiresIn,
	)
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>Your password reset code is: <strong>%s</strong></p>
		<p>Or reset your password using the link below:</p>

		<p><a href="%s">%s</a></p>

		<p>This code will expire in %s for your security.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, code, resetLink, resetLink, u.resetCfg.CodeExpiresIn)

	return mailer.Email{
		To:       []string{to},
		Subject:  "Password Reset Request",
		Body:     body,
		HTMLBody: htmlBody,
	}
}

// generateResetCode draws a 6-digit code from [100000, 999999] using a
// cryptographically secure source.
func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
