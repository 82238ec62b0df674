package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"alumniConnectAPI/internal/types/shadowing"
	"alumniConnectAPI/services"
)

type ShadowingHandler struct {
	shadowing *services.ShadowingService
}

func NewShadowingHandler(shadowing *services.ShadowingService) *ShadowingHandler {
	return &ShadowingHandler{shadowing: shadowing}
}

// CreateOpportunity handles POST /shadowing/opportunities
func (h *ShadowingHandler) CreateOpportunity(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Company        string      `json:"company"`
		Position       string      `json:"position"`
		Industry       string      `json:"industry"`
		Description    string      `json:"description"`
		AvailableDates []time.Time `json:"availableDates"`
		MaxSlots       int         `json:"maxSlots"`
		Requirements   []string    `json:"requirements"`
		City           string      `json:"city"`
		Address        string      `json:"address"`
		IsVirtual      bool        `json:"isVirtual"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	id, err := h.shadowing.CreateOpportunity(ctx, &shadowing.Opportunity{
		AlumniID:       userID,
		Company:        body.Company,
		Position:       body.Position,
		Industry:       body.Industry,
		Description:    body.Description,
		AvailableDates: body.AvailableDates,
		MaxSlots:       body.MaxSlots,
		Requirements:   body.Requirements,
		City:           body.City,
		Address:        body.Address,
		IsVirtual:      body.IsVirtual,
	})
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// ListOpportunities handles GET /shadowing/opportunities?open=true
func (h *ShadowingHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	if _, ok := authenticatedUser(w, r); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	opportunities, err := h.shadowing.ListOpportunities(ctx, r.URL.Query().Get("open") == "true")
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list opportunities")
		return
	}
	respondWithJSON(w, http.StatusOK, opportunities)
}

// Book handles POST /shadowing/opportunities/{id}/book
func (h *ShadowingHandler) Book(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Date time.Time `json:"date"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	booking, err := h.shadowing.Book(ctx, userID, mux.Vars(r)["id"], body.Date)
	if err != nil {
		if errors.Is(err, services.ErrNoSlotsAvailable) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, booking)
}

// Confirm handles POST /shadowing/bookings/{id}/confirm
func (h *ShadowingHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.shadowing.Confirm)
}

// Cancel handles POST /shadowing/bookings/{id}/cancel
func (h *ShadowingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.shadowing.Cancel)
}

// Complete handles POST /shadowing/bookings/{id}/complete
func (h *ShadowingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.shadowing.Complete)
}

func (h *ShadowingHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) (*shadowing.Booking, error)) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	booking, err := op(ctx, mux.Vars(r)["id"], userID)
	if err != nil {
		if errors.Is(err, services.ErrNotBookingParty) {
			respondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, booking)
}

// Feedback handles POST /shadowing/bookings/{id}/feedback
func (h *ShadowingHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.shadowing.SubmitFeedback(ctx, mux.Vars(r)["id"], userID, body.Rating, body.Comment); err != nil {
		if errors.Is(err, services.ErrNotBookingParty) {
			respondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListBookings handles GET /shadowing/bookings
func (h *ShadowingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	bookings, err := h.shadowing.GetBookings(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list bookings")
		return
	}
	respondWithJSON(w, http.StatusOK, bookings)
}
