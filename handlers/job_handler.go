package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"alumniConnectAPI/internal/types/job"
	"alumniConnectAPI/services"
)

type JobHandler struct {
	jobs     *services.JobService
	skillGap *services.SkillGapService
}

func NewJobHandler(jobs *services.JobService, skillGap *services.SkillGapService) *JobHandler {
	return &JobHandler{jobs: jobs, skillGap: skillGap}
}

// Create handles POST /jobs
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title        string   `json:"title"`
		Company      string   `json:"company"`
		Location     string   `json:"location"`
		Description  string   `json:"description"`
		Requirements []string `json:"requirements"`
		JobType      string   `json:"jobType"`
		ApplyURL     string   `json:"applyUrl"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.jobs.CreateJob(ctx, &job.Job{
		Title:        body.Title,
		Company:      body.Company,
		Location:     body.Location,
		Description:  body.Description,
		Requirements: body.Requirements,
		PostedBy:     userID,
		JobType:      body.JobType,
		ApplyURL:     body.ApplyURL,
	})
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	jobs, err := h.jobs.ListJobs(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	respondWithJSON(w, http.StatusOK, jobs)
}

// Get handles GET /jobs/{id}
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	j, err := h.jobs.GetJob(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	respondWithJSON(w, http.StatusOK, j)
}

// Delete handles DELETE /jobs/{id}
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.jobs.DeleteJob(ctx, mux.Vars(r)["id"], userID); err != nil {
		if errors.Is(err, services.ErrNotJobPoster) {
			respondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AnalyzeJob handles GET /jobs/{id}/skill-gap
func (h *JobHandler) AnalyzeJob(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	gap, err := h.skillGap.AnalyzeJob(ctx, userID, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Job not found")
		return
	}
	respondWithJSON(w, http.StatusOK, gap)
}

// AnalyzeAll handles GET /jobs/skill-gap. The batch run carries its own
// deadline, so no per-request timeout is layered on top.
func (h *JobHandler) AnalyzeAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	reports, err := h.skillGap.AnalyzeAllJobs(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to analyze jobs")
		return
	}
	respondWithJSON(w, http.StatusOK, reports)
}
