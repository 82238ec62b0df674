package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/connection"
	"alumniConnectAPI/internal/types/event"
	"alumniConnectAPI/internal/types/recommendation"
	"alumniConnectAPI/internal/types/user"
)

// maxRecommendations caps how many scored events are persisted per user.
const maxRecommendations = 20

type RecommendationService struct {
	store docstore.Store
	now   func() time.Time
}

func NewRecommendationService(store docstore.Store) *RecommendationService {
	return &RecommendationService{store: store, now: time.Now}
}

func recommendationsPath(userID string) string {
	return "eventRecommendations/" + userID + "/recommendations"
}

// ScoredEvent is an event with its relevance score and the signals behind it.
type ScoredEvent struct {
	Event   *event.Event `json:"event"`
	Score   int          `json:"score"`
	Reasons []string     `json:"reasons"`
}

// ScoreEvent rates one upcoming event for one user. Every contributing
// signal adds a human-readable reason; the score never goes below the base.
func ScoreEvent(profile *user.Profile, ev *event.Event, connectedIDs map[string]bool, attendedTypes map[string]bool, now time.Time) (int, []string) {
	score := 10
	var reasons []string

	interests := make(map[string]bool, len(profile.Interests))
	for _, interest := range profile.Interests {
		interests[strings.ToLower(interest)] = true
	}
	for _, tag := range ev.Tags {
		if interests[strings.ToLower(tag)] {
			score += 15
			reasons = append(reasons, "Matches your interest in "+tag)
		}
	}

	for _, dept := range ev.TargetAudience.Departments {
		if profile.Industry != "" && strings.EqualFold(dept, profile.Industry) {
			score += 20
			reasons = append(reasons, "Aimed at the "+dept+" industry")
			break
		}
	}
	for _, batch := range ev.TargetAudience.Batches {
		if profile.GraduationYear != 0 && batch == profile.GraduationYear {
			score += 15
			reasons = append(reasons, fmt.Sprintf("For the class of %d", batch))
			break
		}
	}

	if ev.IsVirtual() {
		score += 10
		reasons = append(reasons, "Virtual, join from anywhere")
	} else if sameCity(profile.Location, ev.Location) {
		score += 25
		reasons = append(reasons, "Happening in your city")
	}

	attending := 0
	for _, uid := range ev.Attendees {
		if connectedIDs[uid] {
			attending++
		}
	}
	if attending > 0 {
		score += attending * 10
		reasons = append(reasons, fmt.Sprintf("%d of your connections are attending", attending))
	}

	kind := ev.Category
	if kind == "" {
		kind = ev.Type
	}
	if kind != "" && attendedTypes[strings.ToLower(kind)] {
		score += 15
		reasons = append(reasons, "You attended similar events before")
	}

	if profile.Gamification.Level > 3 {
		score += 5
		reasons = append(reasons, "Recommended for active members")
	}

	if !ev.Date.IsZero() && ev.Date.After(now) && ev.Date.Before(now.Add(7*24*time.Hour)) {
		score += 10
		reasons = append(reasons, "Coming up this week")
	}

	return score, reasons
}

func sameCity(userLocation, eventLocation string) bool {
	userCity := firstSegment(userLocation)
	eventCity := firstSegment(eventLocation)
	return userCity != "" && strings.EqualFold(userCity, eventCity)
}

func firstSegment(location string) string {
	city, _, _ := strings.Cut(location, ",")
	return strings.TrimSpace(city)
}

// Regenerate rescores all upcoming events for a user and rewrites the
// persisted recommendation set with the top matches.
func (s *RecommendationService) Regenerate(ctx context.Context, userID string) ([]ScoredEvent, error) {
	userData, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}
	profile := user.FromDoc(userID, userData)

	connectedIDs, err := s.connectedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	attendedTypes, err := s.attendedTypes(ctx, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Query(ctx, "events", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	now := s.now()
	scored := make([]ScoredEvent, 0, len(docs))
	for _, doc := range docs {
		ev := event.FromDoc(doc.ID, doc.Data)
		if ev.HasAttendee(userID) {
			continue
		}
		if !ev.Date.IsZero() && ev.Date.Before(now) {
			continue
		}
		score, reasons := ScoreEvent(profile, ev, connectedIDs, attendedTypes, now)
		if score <= 0 {
			continue
		}
		scored = append(scored, ScoredEvent{Event: ev, Score: score, Reasons: reasons})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	// Replace the stored set wholesale so stale events drop out.
	stale, err := s.store.Query(ctx, recommendationsPath(userID), nil)
	if err == nil {
		for _, doc := range stale {
			if err := s.store.Delete(ctx, recommendationsPath(userID)+"/"+doc.ID); err != nil {
				log.Printf("Regenerate: failed to delete stale recommendation %s: %v", doc.ID, err)
			}
		}
	}
	for _, se := range scored {
		err := s.store.Set(ctx, recommendationsPath(userID)+"/"+se.Event.ID, map[string]any{
			"eventId":     se.Event.ID,
			"score":       se.Score,
			"reasons":     se.Reasons,
			"generatedAt": now,
		}, false)
		if err != nil {
			log.Printf("Regenerate: failed to store recommendation for event %s: %v", se.Event.ID, err)
		}
	}

	return scored, nil
}

// GetRecommendations returns the persisted set, regenerating when empty.
func (s *RecommendationService) GetRecommendations(ctx context.Context, userID string) ([]*recommendation.Recommendation, error) {
	docs, err := s.store.Query(ctx, recommendationsPath(userID), nil,
		docstore.OrderBy("score", true))
	if err != nil {
		return nil, fmt.Errorf("failed to read recommendations: %w", err)
	}

	if len(docs) == 0 {
		scored, err := s.Regenerate(ctx, userID)
		if err != nil {
			return nil, err
		}
		out := make([]*recommendation.Recommendation, 0, len(scored))
		for _, se := range scored {
			out = append(out, &recommendation.Recommendation{
				EventID:     se.Event.ID,
				Score:       se.Score,
				Reasons:     se.Reasons,
				GeneratedAt: s.now(),
			})
		}
		return out, nil
	}

	out := make([]*recommendation.Recommendation, 0, len(docs))
	for _, doc := range docs {
		out = append(out, recommendation.FromDoc(doc.ID, doc.Data))
	}
	return out, nil
}

func (s *RecommendationService) connectedIDs(ctx context.Context, userID string) (map[string]bool, error) {
	connected := map[string]bool{}
	for _, field := range []string{"requesterId", "recipientId"} {
		docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
			docstore.Where(field, "==", userID),
			docstore.Where("status", "==", connection.StatusAccepted),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list connections: %w", err)
		}
		for _, doc := range docs {
			connected[connection.FromDoc(doc.ID, doc.Data).OtherParty(userID)] = true
		}
	}
	return connected, nil
}

func (s *RecommendationService) attendedTypes(ctx context.Context, userID string) (map[string]bool, error) {
	docs, err := s.store.Query(ctx, "userEventInteractions/"+userID+"/interactions", []docstore.Filter{
		docstore.Where("attended", "==", true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read event interactions: %w", err)
	}

	types := map[string]bool{}
	for _, doc := range docs {
		if kind := event.InteractionFromDoc(doc.ID, doc.Data).EventType; kind != "" {
			types[strings.ToLower(kind)] = true
		}
	}
	return types, nil
}
