package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"alumniConnectAPI/middleware"
	"alumniConnectAPI/services"
)

type GamificationHandler struct {
	gamification *services.GamificationService
	streaks      *services.StreakService
	users        *services.UserService
}

func NewGamificationHandler(gamification *services.GamificationService, streaks *services.StreakService, users *services.UserService) *GamificationHandler {
	return &GamificationHandler{gamification: gamification, streaks: streaks, users: users}
}

// GetStats handles GET /gamification/stats
func (h *GamificationHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	stats, err := h.gamification.GetStats(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load gamification stats")
		return
	}
	if stats == nil {
		respondWithError(w, http.StatusNotFound, "No gamification stats yet")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// AwardPoints handles POST /gamification/award
func (h *GamificationHandler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Action      string `json:"action"`
		Description string `json:"description"`
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

	points, err := h.gamification.AwardPoints(ctx, userID, body.Action, body.Description)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to award points")
		return
	}
	middleware.RecordPointsAwarded(body.Action, points)
	respondWithJSON(w, http.StatusOK, map[string]int{"pointsAwarded": points})
}

// GetPointsHistory handles GET /gamification/history?limit=
func (h *GamificationHandler) GetPointsHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	history, err := h.gamification.GetPointsHistory(ctx, userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load points history")
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

// GetLeaderboard handles GET /gamification/leaderboard?limit=
func (h *GamificationHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	entries, err := h.gamification.GetLeaderboard(ctx, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return
	}
	respondWithJSON(w, http.StatusOK, entries)
}

// RecordLogin handles POST /gamification/login
func (h *GamificationHandler) RecordLogin(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	streak, err := h.streaks.RecordLogin(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to record login")
		return
	}
	if err := h.users.TouchLastActive(ctx, userID); err != nil {
		log.Printf("RecordLogin: failed to touch lastActive for %s: %v", userID, err)
	}
	respondWithJSON(w, http.StatusOK, streak)
}

// GetStreak handles GET /gamification/streak
func (h *GamificationHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	streak, err := h.streaks.GetStreak(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load streak")
		return
	}
	respondWithJSON(w, http.StatusOK, streak)
}
