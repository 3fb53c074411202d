package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"diy-research-agent/internal/domain"
	"diy-research-agent/internal/usecase"
)

// startRequest is the expected JSON body for starting a research job.
type startRequest struct {
	Query string `json:"query"`
	Email string `json:"email"`
}

func startResearchHandler(uc usecase.ResearchUseCase, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		jobID, err := uc.Submit(r.Context(), req.Query, req.Email)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyQuery) || errors.Is(err, domain.ErrInvalidEmail) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error().Err(err).Msg("submit failed")
			http.Error(w, "Failed to start research", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"job_id": jobID})
	}
}

func statusHandler(uc usecase.ResearchUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := chi.URLParam(r, "jobID")

		status, err := uc.Poll(r.Context(), jobID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				http.Error(w, "Job not found", http.StatusNotFound)
				return
			}
			http.Error(w, "Failed to get status", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
