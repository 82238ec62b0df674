package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/event"
)

var ErrEventFull = errors.New("event is at capacity")

type EventService struct {
	store           docstore.Store
	gamification    *GamificationService
	challenges      *ChallengeService
	recommendations *RecommendationService
	now             func() time.Time
}

func NewEventService(store docstore.Store, gamification *GamificationService, challenges *ChallengeService, recommendations *RecommendationService) *EventService {
	return &EventService{
		store:           store,
		gamification:    gamification,
		challenges:      challenges,
		recommendations: recommendations,
		now:             time.Now,
	}
}

func interactionPath(userID, eventID string) string {
	return "userEventInteractions/" + userID + "/interactions/" + eventID
}

// CreateEvent stores a new event and returns its ID.
func (s *EventService) CreateEvent(ctx context.Context, ev *event.Event) (string, error) {
	if ev.Title == "" {
		return "", fmt.Errorf("event requires a title")
	}
	if ev.Date.IsZero() {
		return "", fmt.Errorf("event requires a date")
	}

	id, err := s.store.Add(ctx, "events", map[string]any{
		"title":         ev.Title,
		"description":   ev.Description,
		"date":          ev.Date,
		"location":      ev.Location,
		"type":          ev.Type,
		"category":      ev.Category,
		"organizer":     ev.Organizer,
		"organizerName": ev.OrganizerName,
		"attendees":     []string{},
		"capacity":      ev.Capacity,
		"tags":          ev.Tags,
		"targetAudience": map[string]any{
			"departments": ev.TargetAudience.Departments,
			"batches":     ev.TargetAudience.Batches,
		},
		"createdAt": s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return id, nil
}

func (s *EventService) GetEvent(ctx context.Context, eventID string) (*event.Event, error) {
	data, err := s.store.Get(ctx, "events/"+eventID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("event %s not found: %w", eventID, err)
		}
		return nil, fmt.Errorf("failed to read event: %w", err)
	}
	return event.FromDoc(eventID, data), nil
}

// ListUpcomingEvents returns future events, soonest first.
func (s *EventService) ListUpcomingEvents(ctx context.Context) ([]*event.Event, error) {
	docs, err := s.store.Query(ctx, "events", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	now := s.now()
	events := make([]*event.Event, 0, len(docs))
	for _, doc := range docs {
		ev := event.FromDoc(doc.ID, doc.Data)
		if ev.Date.IsZero() || !ev.Date.Before(now) {
			events = append(events, ev)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

// RSVP adds the user to the attendee list and records the interaction.
// Already-registered users are a no-op; capacity is enforced when set.
func (s *EventService) RSVP(ctx context.Context, userID, eventID string) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.HasAttendee(userID) {
		return nil
	}
	if ev.Capacity > 0 && len(ev.Attendees) >= ev.Capacity {
		return ErrEventFull
	}

	attendees := append(ev.Attendees, userID)
	if err := s.store.Update(ctx, "events/"+eventID, map[string]any{"attendees": attendees}); err != nil {
		return fmt.Errorf("failed to update attendees: %w", err)
	}

	s.recordInteraction(ctx, userID, ev, map[string]any{"rsvped": true})
	s.regenerate(ctx, userID)
	return nil
}

// MarkAttended records attendance and pays out the attendance action.
// Attendance is idempotent; the points are awarded only on the first call.
func (s *EventService) MarkAttended(ctx context.Context, userID, eventID string) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if data, err := s.store.Get(ctx, interactionPath(userID, eventID)); err == nil {
		if event.InteractionFromDoc(eventID, data).Attended {
			return nil
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("failed to read interaction: %w", err)
	}

	if !ev.HasAttendee(userID) {
		attendees := append(ev.Attendees, userID)
		if err := s.store.Update(ctx, "events/"+eventID, map[string]any{"attendees": attendees}); err != nil {
			return fmt.Errorf("failed to update attendees: %w", err)
		}
	}

	s.recordInteraction(ctx, userID, ev, map[string]any{"attended": true})

	if _, err := s.gamification.AwardPoints(ctx, userID, "attendEvent", "Attended event: "+ev.Title); err != nil {
		log.Printf("MarkAttended: failed to award points for %s: %v", userID, err)
	}
	if err := s.challenges.RecordAction(ctx, userID, "attendEvent", 1); err != nil {
		log.Printf("MarkAttended: failed to advance challenges for %s: %v", userID, err)
	}

	s.regenerate(ctx, userID)
	return nil
}

// RecordView marks an event viewed, as a scoring signal only.
func (s *EventService) RecordView(ctx context.Context, userID, eventID string) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	s.recordInteraction(ctx, userID, ev, map[string]any{"viewed": true})
	return nil
}

// RecordInterest toggles the interested flag on the interaction record.
func (s *EventService) RecordInterest(ctx context.Context, userID, eventID string, interested bool) error {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	s.recordInteraction(ctx, userID, ev, map[string]any{"interested": interested})
	return nil
}

// RateEvent stores a 1-5 rating on the interaction record.
func (s *EventService) RateEvent(ctx context.Context, userID, eventID string, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	s.recordInteraction(ctx, userID, ev, map[string]any{"rating": rating})
	return nil
}

func (s *EventService) recordInteraction(ctx context.Context, userID string, ev *event.Event, fields map[string]any) {
	kind := ev.Category
	if kind == "" {
		kind = ev.Type
	}
	fields["eventType"] = kind
	fields["lastUpdated"] = s.now()

	if err := s.store.Set(ctx, interactionPath(userID, ev.ID), fields, true); err != nil {
		log.Printf("recordInteraction: failed to store interaction for %s/%s: %v", userID, ev.ID, err)
	}
}

func (s *EventService) regenerate(ctx context.Context, userID string) {
	if _, err := s.recommendations.Regenerate(ctx, userID); err != nil {
		log.Printf("regenerate: failed to refresh recommendations for %s: %v", userID, err)
	}
}
