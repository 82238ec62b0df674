package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/connection"
	"alumniConnectAPI/internal/types/user"
)

// maxSuggestions caps the ranked suggestion list.
const maxSuggestions = 10

var ErrDuplicateConnection = errors.New("a connection between these users already exists")
var ErrNotConnectionParty = errors.New("user is not a party to this connection")

type ConnectionService struct {
	store        docstore.Store
	gamification *GamificationService
	now          func() time.Time
}

func NewConnectionService(store docstore.Store, gamification *GamificationService) *ConnectionService {
	return &ConnectionService{store: store, gamification: gamification, now: time.Now}
}

// SendRequest creates a pending edge between two users. Self-connections and
// duplicate edges in either direction are rejected.
func (s *ConnectionService) SendRequest(ctx context.Context, requesterID, recipientID, message string) (*connection.Connection, error) {
	if requesterID == recipientID {
		return nil, fmt.Errorf("cannot send a connection request to yourself")
	}

	existing, err := s.edgeBetween(ctx, requesterID, recipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status != connection.StatusRejected {
		return nil, ErrDuplicateConnection
	}

	requester, err := s.profile(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.profile(ctx, recipientID)
	if err != nil {
		return nil, err
	}

	conn := &connection.Connection{
		RequesterID:      requesterID,
		RequesterName:    requester.DisplayName,
		RequesterPhoto:   requester.PhotoURL,
		RequesterRole:    requester.Headline,
		RequesterCompany: requester.Company,
		RecipientID:      recipientID,
		RecipientName:    recipient.DisplayName,
		RecipientPhoto:   recipient.PhotoURL,
		RecipientRole:    recipient.Headline,
		RecipientCompany: recipient.Company,
		Status:           connection.StatusPending,
		Message:          message,
		CreatedAt:        s.now(),
	}

	id, err := s.store.Add(ctx, "connections", map[string]any{
		"requesterId":      conn.RequesterID,
		"requesterName":    conn.RequesterName,
		"requesterPhoto":   conn.RequesterPhoto,
		"requesterRole":    conn.RequesterRole,
		"requesterCompany": conn.RequesterCompany,
		"recipientId":      conn.RecipientID,
		"recipientName":    conn.RecipientName,
		"recipientPhoto":   conn.RecipientPhoto,
		"recipientRole":    conn.RecipientRole,
		"recipientCompany": conn.RecipientCompany,
		"status":           conn.Status,
		"message":          conn.Message,
		"createdAt":        conn.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create connection request: %w", err)
	}
	conn.ID = id
	return conn, nil
}

// Respond resolves a pending request. Only the recipient may respond, and a
// resolved request never transitions again. Acceptance credits both parties.
func (s *ConnectionService) Respond(ctx context.Context, connectionID, userID string, accept bool) (*connection.Connection, error) {
	data, err := s.store.Get(ctx, "connections/"+connectionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("connection %s not found: %w", connectionID, err)
		}
		return nil, fmt.Errorf("failed to read connection: %w", err)
	}
	conn := connection.FromDoc(connectionID, data)

	if conn.RecipientID != userID {
		return nil, ErrNotConnectionParty
	}
	if conn.Status != connection.StatusPending {
		return nil, fmt.Errorf("connection %s has already been resolved", connectionID)
	}

	conn.Status = connection.StatusRejected
	if accept {
		conn.Status = connection.StatusAccepted
	}
	conn.RespondedAt = s.now()

	err = s.store.Update(ctx, "connections/"+connectionID, map[string]any{
		"status":      conn.Status,
		"respondedAt": conn.RespondedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}

	if accept {
		for _, uid := range []string{conn.RequesterID, conn.RecipientID} {
			if _, err := s.gamification.AwardPoints(ctx, uid, "connectWithAlumni", "New connection made"); err != nil {
				log.Printf("Respond: failed to award connection points for %s: %v", uid, err)
			}
		}
	}
	return conn, nil
}

// Remove deletes an edge. Either party may remove it.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, userID string) error {
	data, err := s.store.Get(ctx, "connections/"+connectionID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read connection: %w", err)
	}
	conn := connection.FromDoc(connectionID, data)
	if conn.RequesterID != userID && conn.RecipientID != userID {
		return ErrNotConnectionParty
	}
	return s.store.Delete(ctx, "connections/"+connectionID)
}

// GetConnections lists a user's accepted edges, both directions.
func (s *ConnectionService) GetConnections(ctx context.Context, userID string) ([]*connection.Connection, error) {
	return s.edgesFor(ctx, userID, connection.StatusAccepted)
}

// GetPendingRequests lists requests awaiting the user's response.
func (s *ConnectionService) GetPendingRequests(ctx context.Context, userID string) ([]*connection.Connection, error) {
	docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
		docstore.Where("recipientId", "==", userID),
		docstore.Where("status", "==", connection.StatusPending),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	out := make([]*connection.Connection, 0, len(docs))
	for _, doc := range docs {
		out = append(out, connection.FromDoc(doc.ID, doc.Data))
	}
	return out, nil
}

// StreamPendingRequests pushes the pending request set on every change until
// ctx is done. The returned cancel func releases the underlying watch.
func (s *ConnectionService) StreamPendingRequests(ctx context.Context, userID string) (<-chan []*connection.Connection, func()) {
	raw, cancel := s.store.Subscribe(ctx, "connections", []docstore.Filter{
		docstore.Where("recipientId", "==", userID),
		docstore.Where("status", "==", connection.StatusPending),
	})

	out := make(chan []*connection.Connection)
	go func() {
		defer close(out)
		for docs := range raw {
			batch := make([]*connection.Connection, 0, len(docs))
			for _, doc := range docs {
				batch = append(batch, connection.FromDoc(doc.ID, doc.Data))
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, cancel
}

// Suggestion is a ranked connection candidate.
type Suggestion struct {
	User  *user.Profile `json:"user"`
	Score int           `json:"score"`
}

// GetSuggestions ranks users the caller is not yet connected to.
func (s *ConnectionService) GetSuggestions(ctx context.Context, userID string) ([]Suggestion, error) {
	me, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	known := map[string]bool{userID: true}
	for _, status := range []string{connection.StatusAccepted, connection.StatusPending} {
		edges, err := s.edgesFor(ctx, userID, status)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			known[e.OtherParty(userID)] = true
		}
	}

	docs, err := s.store.Query(ctx, "users", nil, docstore.Limit(200))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	candidates := make([]*user.Profile, 0, len(docs))
	for _, doc := range docs {
		if known[doc.ID] {
			continue
		}
		candidates = append(candidates, user.FromDoc(doc.ID, doc.Data))
	}
	return RankCandidates(me, candidates), nil
}

// RankCandidates scores each candidate against the reference profile and
// returns the top matches, highest first. Equal scores keep input order.
func RankCandidates(me *user.Profile, candidates []*user.Profile) []Suggestion {
	suggestions := make([]Suggestion, 0, len(candidates))
	for _, c := range candidates {
		suggestions = append(suggestions, Suggestion{User: c, Score: matchScore(me, c)})
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// roleFamilies groups job titles so "Software Engineer" and "ML Engineer"
// count as the same kind of role.
var roleFamilies = []string{"Engineer", "Manager", "Designer", "Analyst", "Developer"}

func matchScore(me, other *user.Profile) int {
	score := 0
	if me.Industry != "" && strings.EqualFold(me.Industry, other.Industry) {
		score += 3
	}
	if me.Location != "" && me.Location == other.Location {
		score += 2
	}

	mySkills := make(map[string]bool, len(me.Skills))
	for _, skill := range me.Skills {
		mySkills[strings.ToLower(skill)] = true
	}
	for _, skill := range other.Skills {
		if mySkills[strings.ToLower(skill)] {
			score++
		}
	}

	if me.GraduationYear != 0 && me.GraduationYear == other.GraduationYear {
		score++
	}
	if sameRoleFamily(me.Headline, other.Headline) {
		score += 2
	}
	return score
}

func sameRoleFamily(a, b string) bool {
	fa := roleFamilyOf(a)
	return fa != "" && fa == roleFamilyOf(b)
}

// roleFamilyOf returns the first family keyword a headline mentions, so
// "Engineering Manager" reads as Engineer, not Manager.
func roleFamilyOf(headline string) string {
	lower := strings.ToLower(headline)
	for _, family := range roleFamilies {
		if strings.Contains(lower, strings.ToLower(family)) {
			return family
		}
	}
	return ""
}

func (s *ConnectionService) edgesFor(ctx context.Context, userID, status string) ([]*connection.Connection, error) {
	var out []*connection.Connection
	for _, field := range []string{"requesterId", "recipientId"} {
		docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
			docstore.Where(field, "==", userID),
			docstore.Where("status", "==", status),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list connections: %w", err)
		}
		for _, doc := range docs {
			out = append(out, connection.FromDoc(doc.ID, doc.Data))
		}
	}
	return out, nil
}

func (s *ConnectionService) edgeBetween(ctx context.Context, a, b string) (*connection.Connection, error) {
	pairs := [][2]string{{a, b}, {b, a}}
	for _, pair := range pairs {
		docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
			docstore.Where("requesterId", "==", pair[0]),
			docstore.Where("recipientId", "==", pair[1]),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to check existing connections: %w", err)
		}
		for _, doc := range docs {
			conn := connection.FromDoc(doc.ID, doc.Data)
			if conn.Status != connection.StatusRejected {
				return conn, nil
			}
		}
	}
	return nil, nil
}

func (s *ConnectionService) profile(ctx context.Context, userID string) (*user.Profile, error) {
	data, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("user %s not found: %w", userID, err)
		}
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}
	return user.FromDoc(userID, data), nil
}
