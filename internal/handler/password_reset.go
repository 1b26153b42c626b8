package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jobboardhq/job-board-api/internal/payload"
	"github.com/jobboardhq/job-board-api/internal/usecase"
	"github.com/jobboardhq/job-board-api/internal/validation"
)

// PasswordResetHandler serves the forgot-password and reset-password endpoints.
type PasswordResetHandler struct {
	resetUsecase usecase.PasswordResetUsecase
	validator    *validation.Validator
	logger       *zerolog.Logger
}

// NewPasswordResetHandler creates a new PasswordResetHandler instance.
func NewPasswordResetHandler(
	resetUsecase usecase.PasswordResetUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *PasswordResetHandler {
	return &PasswordResetHandler{
		resetUsecase: resetUsecase,
		validator:    validator,
		logger:       logger,
	}
}

func (h *PasswordResetHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	err := h.resetUsecase.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			respondDetail(w, http.StatusBadRequest, "user with this email does not exist")
		case errors.Is(err, usecase.ErrEmailDelivery):
			h.logger.Error().Err(err).Msg("failed to deliver password reset email")
			respondDetail(w, http.StatusBadGateway, "failed to send password reset email")
		default:
			h.logger.Error().Err(err).Msg("failed to request password reset")
			respondDetail(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondDetail(w, http.StatusOK, "Password reset email sent! Check your inbox.")
}

func (h *PasswordResetHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	err := h.resetUsecase.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidResetCode) {
			respondDetail(w, http.StatusBadRequest, "invalid or expired password reset code")
			return
		}

		h.logger.Error().Err(err).Msg("failed to reset password")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondDetail(w, http.StatusOK, "Password has been reset.")
}
