package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"alumniConnectAPI/middleware"
)

// requestTimeout bounds every store round trip a handler makes.
const requestTimeout = 5 * time.Second

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal response: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// authenticatedUser pulls the Clerk subject off the context, answering 401
// itself when the request slipped past auth without one.
func authenticatedUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetClerkID(r.Context())
	if !ok || userID == "" {
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}
