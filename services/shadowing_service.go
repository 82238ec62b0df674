package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/shadowing"
)

var ErrNoSlotsAvailable = errors.New("no slots available for this opportunity")
var ErrNotBookingParty = errors.New("user is not a party to this booking")

type ShadowingService struct {
	store        docstore.Store
	gamification *GamificationService
	now          func() time.Time
}

func NewShadowingService(store docstore.Store, gamification *GamificationService) *ShadowingService {
	return &ShadowingService{store: store, gamification: gamification, now: time.Now}
}

// CreateOpportunity publishes a shadowing offer and credits the host.
func (s *ShadowingService) CreateOpportunity(ctx context.Context, o *shadowing.Opportunity) (string, error) {
	if o.AlumniID == "" || o.Company == "" || o.Position == "" {
		return "", fmt.Errorf("opportunity requires a host, a company and a position")
	}
	if o.MaxSlots <= 0 {
		return "", fmt.Errorf("opportunity requires at least one slot")
	}

	dates := make([]any, 0, len(o.AvailableDates))
	for _, d := range o.AvailableDates {
		dates = append(dates, d)
	}
	id, err := s.store.Add(ctx, "shadowingOpportunities", map[string]any{
		"alumniId":       o.AlumniID,
		"company":        o.Company,
		"position":       o.Position,
		"industry":       o.Industry,
		"description":    o.Description,
		"availableDates": dates,
		"maxSlots":       o.MaxSlots,
		"bookedSlots":    0,
		"requirements":   o.Requirements,
		"location":       map[string]any{"city": o.City, "address": o.Address},
		"isVirtual":      o.IsVirtual,
		"createdAt":      s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create opportunity: %w", err)
	}

	if _, err := s.gamification.AwardPoints(ctx, o.AlumniID, "createShadowingOpportunity", "Offered a shadowing opportunity"); err != nil {
		log.Printf("CreateOpportunity: failed to award points for %s: %v", o.AlumniID, err)
	}
	return id, nil
}

// ListOpportunities returns every offer, newest first. When openOnly is set,
// fully booked offers are filtered out.
func (s *ShadowingService) ListOpportunities(ctx context.Context, openOnly bool) ([]*shadowing.Opportunity, error) {
	docs, err := s.store.Query(ctx, "shadowingOpportunities", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	out := make([]*shadowing.Opportunity, 0, len(docs))
	for _, doc := range docs {
		o := shadowing.OpportunityFromDoc(doc.ID, doc.Data)
		if openOnly && o.BookedSlots >= o.MaxSlots {
			continue
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Book reserves a slot on an opportunity for a student. Fully booked
// opportunities return ErrNoSlotsAvailable.
func (s *ShadowingService) Book(ctx context.Context, studentID, opportunityID string, date time.Time) (*shadowing.Booking, error) {
	data, err := s.store.Get(ctx, "shadowingOpportunities/"+opportunityID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("opportunity %s not found: %w", opportunityID, err)
		}
		return nil, fmt.Errorf("failed to read opportunity: %w", err)
	}
	opp := shadowing.OpportunityFromDoc(opportunityID, data)

	if opp.AlumniID == studentID {
		return nil, fmt.Errorf("cannot book your own opportunity")
	}
	if opp.BookedSlots >= opp.MaxSlots {
		return nil, ErrNoSlotsAvailable
	}

	err = s.store.Update(ctx, "shadowingOpportunities/"+opportunityID, map[string]any{
		"bookedSlots": docstore.Increment(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reserve slot: %w", err)
	}

	booking := &shadowing.Booking{
		OpportunityID: opportunityID,
		AlumniID:      opp.AlumniID,
		StudentID:     studentID,
		SelectedDate:  date,
		Status:        shadowing.StatusPending,
		CreatedAt:     s.now(),
		UpdatedAt:     s.now(),
	}
	id, err := s.store.Add(ctx, "shadowingBookings", map[string]any{
		"opportunityId": booking.OpportunityID,
		"alumniId":      booking.AlumniID,
		"studentId":     booking.StudentID,
		"selectedDate":  booking.SelectedDate,
		"status":        booking.Status,
		"createdAt":     booking.CreatedAt,
		"updatedAt":     booking.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	booking.ID = id

	if _, err := s.gamification.AwardPoints(ctx, studentID, "bookShadowing", "Booked a shadowing session"); err != nil {
		log.Printf("Book: failed to award points for %s: %v", studentID, err)
	}
	return booking, nil
}

// Confirm moves a pending booking to confirmed. Only the host may confirm.
func (s *ShadowingService) Confirm(ctx context.Context, bookingID, alumniID string) (*shadowing.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.AlumniID != alumniID {
		return nil, ErrNotBookingParty
	}
	if booking.Status != shadowing.StatusPending {
		return nil, fmt.Errorf("booking %s is %s, only pending bookings can be confirmed", bookingID, booking.Status)
	}
	return s.transition(ctx, booking, shadowing.StatusConfirmed)
}

// Cancel aborts a pending or confirmed booking and releases the slot.
// Either party may cancel.
func (s *ShadowingService) Cancel(ctx context.Context, bookingID, userID string) (*shadowing.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.AlumniID != userID && booking.StudentID != userID {
		return nil, ErrNotBookingParty
	}
	if booking.Status != shadowing.StatusPending && booking.Status != shadowing.StatusConfirmed {
		return nil, fmt.Errorf("booking %s is %s and can no longer be cancelled", bookingID, booking.Status)
	}

	err = s.store.Update(ctx, "shadowingOpportunities/"+booking.OpportunityID, map[string]any{
		"bookedSlots": docstore.Increment(-1),
	})
	if err != nil {
		log.Printf("Cancel: failed to release slot on %s: %v", booking.OpportunityID, err)
	}
	return s.transition(ctx, booking, shadowing.StatusCancelled)
}

// Complete closes out a confirmed booking and credits both parties.
func (s *ShadowingService) Complete(ctx context.Context, bookingID, alumniID string) (*shadowing.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.AlumniID != alumniID {
		return nil, ErrNotBookingParty
	}
	if booking.Status != shadowing.StatusConfirmed {
		return nil, fmt.Errorf("booking %s is %s, only confirmed bookings can be completed", bookingID, booking.Status)
	}

	booking, err = s.transition(ctx, booking, shadowing.StatusCompleted)
	if err != nil {
		return nil, err
	}

	if _, err := s.gamification.AwardPoints(ctx, booking.AlumniID, "completeShadowing", "Hosted a shadowing session"); err != nil {
		log.Printf("Complete: failed to award host points: %v", err)
	}
	if _, err := s.gamification.AwardPoints(ctx, booking.StudentID, "attendShadowing", "Attended a shadowing session"); err != nil {
		log.Printf("Complete: failed to award student points: %v", err)
	}
	return booking, nil
}

// SubmitFeedback stores one side's rating on a completed booking and credits
// the reviewer. Each side's feedback is written once and then kept.
func (s *ShadowingService) SubmitFeedback(ctx context.Context, bookingID, userID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return err
	}
	if booking.Status != shadowing.StatusCompleted {
		return fmt.Errorf("feedback is only accepted on completed bookings")
	}

	var fields map[string]any
	switch userID {
	case booking.StudentID:
		if booking.Feedback.StudentRating != 0 {
			return fmt.Errorf("feedback already submitted")
		}
		fields = map[string]any{
			"feedback.studentRating":  rating,
			"feedback.studentComment": comment,
		}
	case booking.AlumniID:
		if booking.Feedback.AlumniRating != 0 {
			return fmt.Errorf("feedback already submitted")
		}
		fields = map[string]any{
			"feedback.alumniRating":  rating,
			"feedback.alumniComment": comment,
		}
	default:
		return ErrNotBookingParty
	}
	fields["updatedAt"] = s.now()

	if err := s.store.Update(ctx, "shadowingBookings/"+bookingID, fields); err != nil {
		return fmt.Errorf("failed to store feedback: %w", err)
	}

	if _, err := s.gamification.AwardPoints(ctx, userID, "provideFeedback", "Shadowing feedback"); err != nil {
		log.Printf("SubmitFeedback: failed to award points for %s: %v", userID, err)
	}
	return nil
}

// GetBookings lists bookings where the user is either party.
func (s *ShadowingService) GetBookings(ctx context.Context, userID string) ([]*shadowing.Booking, error) {
	var out []*shadowing.Booking
	for _, field := range []string{"studentId", "alumniId"} {
		docs, err := s.store.Query(ctx, "shadowingBookings", []docstore.Filter{
			docstore.Where(field, "==", userID),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list bookings: %w", err)
		}
		for _, doc := range docs {
			out = append(out, shadowing.BookingFromDoc(doc.ID, doc.Data))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *ShadowingService) getBooking(ctx context.Context, bookingID string) (*shadowing.Booking, error) {
	data, err := s.store.Get(ctx, "shadowingBookings/"+bookingID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("booking %s not found: %w", bookingID, err)
		}
		return nil, fmt.Errorf("failed to read booking: %w", err)
	}
	return shadowing.BookingFromDoc(bookingID, data), nil
}

func (s *ShadowingService) transition(ctx context.Context, booking *shadowing.Booking, status string) (*shadowing.Booking, error) {
	err := s.store.Update(ctx, "shadowingBookings/"+booking.ID, map[string]any{
		"status":    status,
		"updatedAt": s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}
	booking.Status = status
	booking.UpdatedAt = s.now()
	return booking, nil
}
