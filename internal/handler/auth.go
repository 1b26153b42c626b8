package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jobboardhq/job-board-api/internal/model"
	"github.com/jobboardhq/job-board-api/internal/payload"
	"github.com/jobboardhq/job-board-api/internal/usecase"
	"github.com/jobboardhq/job-board-api/internal/validation"
)

// AuthHandler serves the signup, login and token endpoints.
type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	validator   *validation.Validator
	logger      *zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler instance.
func NewAuthHandler(
	authUsecase usecase.AuthUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		validator:   validator,
		logger:      logger,
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	user, err := h.authUsecase.Signup(r.Context(), usecase.SignupParams{
		Email:       req.Email,
		Password:    req.Password,
		Role:        model.Role(req.Role),
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrUserAlreadyExists) {
			respondDetail(w, http.StatusBadRequest, "user with this email already exists")
			return
		}

		h.logger.Error().Err(err).Msg("failed to sign up user")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusCreated, payload.NewUserResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	tokens, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			respondDetail(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		h.logger.Error().Err(err).Msg("failed to log in user")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, payload.TokenResponse{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req payload.RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	tokens, err := h.authUsecase.Refresh(r.Context(), req.Refresh)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidToken),
			errors.Is(err, usecase.ErrTokenRevoked),
			errors.Is(err, usecase.ErrTokenExpired),
			errors.Is(err, usecase.ErrTokenMismatch):
			respondDetail(w, http.StatusUnauthorized, "invalid refresh token")
		default:
			h.logger.Error().Err(err).Msg("failed to refresh tokens")
			respondDetail(w, http.StatusInternalServerError, "something went wrong")
		}
		return
	}

	respondJSON(w, http.StatusOK, payload.TokenResponse{
		Access:  tokens.AccessToken,
		Refresh: tokens.RefreshToken,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req payload.LogoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	if err := h.authUsecase.Logout(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, usecase.ErrInvalidToken) {
			respondDetail(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}

		h.logger.Error().Err(err).Msg("failed to log out user")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
