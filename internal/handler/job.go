package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jobboardhq/job-board-api/internal/middleware"
	"github.com/jobboardhq/job-board-api/internal/payload"
	"github.com/jobboardhq/job-board-api/internal/usecase"
	"github.com/jobboardhq/job-board-api/internal/validation"
)

// JobHandler serves the job posting endpoints.
type JobHandler struct {
	jobUsecase usecase.JobUsecase
	validator  *validation.Validator
	logger     *zerolog.Logger
}

// NewJobHandler creates a new JobHandler instance.
func NewJobHandler(
	jobUsecase usecase.JobUsecase,
	validator *validation.Validator,
	logger *zerolog.Logger,
) *JobHandler {
	return &JobHandler{
		jobUsecase: jobUsecase,
		validator:  validator,
		logger:     logger,
	}
}

func (h *JobHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req payload.CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Employment type is normalized before validation, matching client
	// payloads that send "Full-Time".
	req.EmploymentType = strings.ToLower(req.EmploymentType)

	if fields := h.validator.Validate(req); fields != nil {
		respondValidation(w, fields)
		return
	}

	job, err := h.jobUsecase.CreateJob(r.Context(), claims.UserID, usecase.CreateJobParams{
		Title:           req.Title,
		Department:      req.Department,
		Location:        req.Location,
		EmploymentType:  req.EmploymentType,
		ExperienceLevel: req.ExperienceLevel,
		Salary:          req.Salary,
		Description:     req.Description,
		Requirements:    req.Requirements,
		Benefits:        req.Benefits,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create job")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusCreated, payload.NewJobResponse(job))
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobUsecase.ListJobs(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list jobs")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, payload.NewJobResponses(jobs))
}

func (h *JobHandler) ListCompanyJobs(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondDetail(w, http.StatusUnauthorized, "authentication required")
		return
	}

	page := uint64(1)
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || parsed == 0 {
			respondDetail(w, http.StatusBadRequest, "invalid page parameter")
			return
		}
		page = parsed
	}

	result, err := h.jobUsecase.ListCompanyJobs(r.Context(), claims.UserID, page)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list company jobs")
		respondDetail(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, payload.JobPageResponse{
		Count:    result.Count,
		Page:     result.Page,
		PageSize: result.PageSize,
		Results:  payload.NewJobResponses(result.Jobs),
	})
}
