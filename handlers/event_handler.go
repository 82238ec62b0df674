package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"alumniConnectAPI/internal/types/event"
	"alumniConnectAPI/services"
)

type EventHandler struct {
	events          *services.EventService
	recommendations *services.RecommendationService
}

func NewEventHandler(events *services.EventService, recommendations *services.RecommendationService) *EventHandler {
	return &EventHandler{events: events, recommendations: recommendations}
}

// Create handles POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		Location    string    `json:"location"`
		Type        string    `json:"type"`
		Category    string    `json:"category"`
		Capacity    int       `json:"capacity"`
		Tags        []string  `json:"tags"`
		Departments []string  `json:"departments"`
		Batches     []int     `json:"batches"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ev := &event.Event{
		Title:       body.Title,
		Description: body.Description,
		Date:        body.Date,
		Location:    body.Location,
		Type:        body.Type,
		Category:    body.Category,
		Organizer:   userID,
		Capacity:    body.Capacity,
		Tags:        body.Tags,
		TargetAudience: event.TargetAudience{
			Departments: body.Departments,
			Batches:     body.Batches,
		},
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.events.CreateEvent(ctx, ev)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// List handles GET /events
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	events, err := h.events.ListUpcomingEvents(ctx)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	respondWithJSON(w, http.StatusOK, events)
}

// Get handles GET /events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	ev, err := h.events.GetEvent(ctx, mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Event not found")
		return
	}
	respondWithJSON(w, http.StatusOK, ev)
}

// RSVP handles POST /events/{id}/rsvp
func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.events.RSVP(ctx, userID, mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, services.ErrEventFull) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "registered"})
}

// Attend handles POST /events/{id}/attend
func (h *EventHandler) Attend(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.events.MarkAttended(ctx, userID, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "attended"})
}

// View handles POST /events/{id}/view
func (h *EventHandler) View(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.events.RecordView(ctx, userID, mux.Vars(r)["id"]); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "viewed"})
}

// Interest handles POST /events/{id}/interest
func (h *EventHandler) Interest(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Interested bool `json:"interested"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.events.RecordInterest(ctx, userID, mux.Vars(r)["id"], body.Interested); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Rate handles POST /events/{id}/rate
func (h *EventHandler) Rate(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Rating int `json:"rating"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.events.RateEvent(ctx, userID, mux.Vars(r)["id"], body.Rating); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "rated"})
}

// Recommendations handles GET /events/recommendations
func (h *EventHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	recs, err := h.recommendations.GetRecommendations(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load recommendations")
		return
	}
	respondWithJSON(w, http.StatusOK, recs)
}

// RefreshRecommendations handles POST /events/recommendations/refresh
func (h *EventHandler) RefreshRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	scored, err := h.recommendations.Regenerate(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to regenerate recommendations")
		return
	}
	respondWithJSON(w, http.StatusOK, scored)
}
