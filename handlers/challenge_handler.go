package handlers

import (
	"context"
	"net/http"
	"time"

	"alumniConnectAPI/internal/types/challenge"
	"alumniConnectAPI/services"
)

type ChallengeHandler struct {
	challenges *services.ChallengeService
	quests     *services.QuestService
}

func NewChallengeHandler(challenges *services.ChallengeService, quests *services.QuestService) *ChallengeHandler {
	return &ChallengeHandler{challenges: challenges, quests: quests}
}

// CreateChallenge handles POST /challenges
func (h *ChallengeHandler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	var body struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Type        string    `json:"type"`
		Action      string    `json:"action"`
		Target      int       `json:"target"`
		Reward      int       `json:"reward"`
		StartDate   time.Time `json:"startDate"`
		EndDate     time.Time `json:"endDate"`
		Icon        string    `json:"icon"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.challenges.CreateChallenge(ctx, &challenge.Challenge{
		Title:       body.Title,
		Description: body.Description,
		Type:        body.Type,
		Criteria:    challenge.Criteria{Action: body.Action, Target: body.Target},
		Reward:      body.Reward,
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Icon:        body.Icon,
	})
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ListChallenges handles GET /challenges
func (h *ChallengeHandler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	challenges, err := h.challenges.GetUserChallenges(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load challenges")
		return
	}
	respondWithJSON(w, http.StatusOK, challenges)
}

// RecordAction handles POST /challenges/progress
func (h *ChallengeHandler) RecordAction(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Action string `json:"action"`
		Amount int    `json:"amount"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Action == "" {
		respondWithError(w, http.StatusBadRequest, "Action is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.challenges.RecordAction(ctx, userID, body.Action, body.Amount); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record progress")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListQuests handles GET /quests
func (h *ChallengeHandler) ListQuests(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	quests, err := h.quests.ListQuests(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load quests")
		return
	}
	respondWithJSON(w, http.StatusOK, quests)
}

// EvaluateQuests handles POST /quests/evaluate
func (h *ChallengeHandler) EvaluateQuests(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	completed, err := h.quests.EvaluateQuests(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to evaluate quests")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"completed": completed})
}

// RecordPageVisit handles POST /quests/page-visit
func (h *ChallengeHandler) RecordPageVisit(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		PageID string `json:"pageId"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.PageID == "" {
		respondWithError(w, http.StatusBadRequest, "pageId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.quests.RecordPageVisit(ctx, userID, body.PageID); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record page visit")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
