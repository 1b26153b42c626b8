package handler

import (
	"encoding/json"
	"net/http"

	"github.com/jobboardhq/job-board-api/internal/payload"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, payload.DetailResponse{Detail: detail})
}

func respondValidation(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusBadRequest, payload.DetailResponse{
		Detail: "validation failed",
		Fields: fields,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	return true
}
