package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"alumniConnectAPI/services"
)

type ConnectionHandler struct {
	connections *services.ConnectionService
}

func NewConnectionHandler(connections *services.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{connections: connections}
}

// SendRequest handles POST /connections
func (h *ConnectionHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		RecipientID string `json:"recipientId"`
		Message     string `json:"message"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.RecipientID == "" {
		respondWithError(w, http.StatusBadRequest, "recipientId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	conn, err := h.connections.SendRequest(ctx, userID, body.RecipientID, body.Message)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateConnection) {
			respondWithError(w, http.StatusConflict, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusCreated, conn)
}

// Respond handles POST /connections/{id}/respond
func (h *ConnectionHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	var body struct {
		Accept bool `json:"accept"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	conn, err := h.connections.Respond(ctx, mux.Vars(r)["id"], userID, body.Accept)
	if err != nil {
		if errors.Is(err, services.ErrNotConnectionParty) {
			respondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, conn)
}

// Remove handles DELETE /connections/{id}
func (h *ConnectionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	if err := h.connections.Remove(ctx, mux.Vars(r)["id"], userID); err != nil {
		if errors.Is(err, services.ErrNotConnectionParty) {
			respondWithError(w, http.StatusForbidden, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to remove connection")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// List handles GET /connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	conns, err := h.connections.GetConnections(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list connections")
		return
	}
	respondWithJSON(w, http.StatusOK, conns)
}

// ListPending handles GET /connections/pending
func (h *ConnectionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	pending, err := h.connections.GetPendingRequests(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to list pending requests")
		return
	}
	respondWithJSON(w, http.StatusOK, pending)
}

// Suggestions handles GET /connections/suggestions
func (h *ConnectionHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	suggestions, err := h.connections.GetSuggestions(ctx, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to build suggestions")
		return
	}
	respondWithJSON(w, http.StatusOK, suggestions)
}

// StreamPending handles GET /connections/pending/stream as server-sent
// events. The stream stays open until the client disconnects; no request
// timeout applies here.
func (h *ConnectionHandler) StreamPending(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedUser(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	updates, cancel := h.connections.StreamPendingRequests(r.Context(), userID)
	defer cancel()

	for {
		select {
		case batch, open := <-updates:
			if !open {
				return
			}
			payload, err := json.Marshal(batch)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
