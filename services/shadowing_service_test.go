package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/shadowing"
)

func newTestShadowing(store *docstore.MemoryStore) *ShadowingService {
	now := func() time.Time { return testNow }
	gam := NewGamificationService(store)
	gam.now = now
	svc := NewShadowingService(store, gam)
	svc.now = now
	return svc
}

func seedOpportunity(t *testing.T, svc *ShadowingService, slots int) string {
	t.Helper()
	id, err := svc.CreateOpportunity(context.Background(), &shadowing.Opportunity{
		AlumniID: "host",
		Company:  "Acme",
		Position: "Engineer",
		MaxSlots: slots,
	})
	if err != nil {
		t.Fatalf("CreateOpportunity failed: %v", err)
	}
	return id
}

func TestCreateOpportunityAwardsHost(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/host", map[string]any{}, false)

	svc := newTestShadowing(store)
	seedOpportunity(t, svc, 2)

	hostDoc, _ := store.Get(ctx, "users/host")
	if docstore.Int(hostDoc, "points") != 150 {
		t.Errorf("Expected 150 points for hosting, got %d", docstore.Int(hostDoc, "points"))
	}
}

func TestBookExhaustsSlots(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/host", map[string]any{}, false)
	store.Set(ctx, "users/s1", map[string]any{}, false)
	store.Set(ctx, "users/s2", map[string]any{}, false)

	svc := newTestShadowing(store)
	oppID := seedOpportunity(t, svc, 1)

	if _, err := svc.Book(ctx, "s1", oppID, testNow.Add(72*time.Hour)); err != nil {
		t.Fatalf("First booking failed: %v", err)
	}
	if _, err := svc.Book(ctx, "s2", oppID, testNow.Add(72*time.Hour)); !errors.Is(err, ErrNoSlotsAvailable) {
		t.Errorf("Expected ErrNoSlotsAvailable, got %v", err)
	}
}

func TestBookRejectsOwnOpportunity(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Set(context.Background(), "users/host", map[string]any{}, false)

	svc := newTestShadowing(store)
	oppID := seedOpportunity(t, svc, 1)

	if _, err := svc.Book(context.Background(), "host", oppID, testNow); err == nil {
		t.Error("Expected booking your own opportunity to be rejected")
	}
}

func TestBookingLifecycle(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/host", map[string]any{}, false)
	store.Set(ctx, "users/student", map[string]any{}, false)

	svc := newTestShadowing(store)
	oppID := seedOpportunity(t, svc, 2)
	booking, err := svc.Book(ctx, "student", oppID, testNow.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	// Completing a pending booking is invalid; it must be confirmed first.
	if _, err := svc.Complete(ctx, booking.ID, "host"); err == nil {
		t.Error("Expected completing a pending booking to fail")
	}

	// Only the host may confirm.
	if _, err := svc.Confirm(ctx, booking.ID, "student"); !errors.Is(err, ErrNotBookingParty) {
		t.Errorf("Expected ErrNotBookingParty, got %v", err)
	}
	if _, err := svc.Confirm(ctx, booking.ID, "host"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	completed, err := svc.Complete(ctx, booking.ID, "host")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != shadowing.StatusCompleted {
		t.Errorf("Expected completed status, got %s", completed.Status)
	}

	// host: 150 create + 100 complete; student: 50 book + 100 attend.
	hostDoc, _ := store.Get(ctx, "users/host")
	if docstore.Int(hostDoc, "points") != 250 {
		t.Errorf("Expected host at 250 points, got %d", docstore.Int(hostDoc, "points"))
	}
	studentDoc, _ := store.Get(ctx, "users/student")
	if docstore.Int(studentDoc, "points") != 150 {
		t.Errorf("Expected student at 150 points, got %d", docstore.Int(studentDoc, "points"))
	}

	if err := svc.SubmitFeedback(ctx, booking.ID, "student", 5, "great"); err != nil {
		t.Fatalf("SubmitFeedback failed: %v", err)
	}
	if err := svc.SubmitFeedback(ctx, booking.ID, "student", 4, "again"); err == nil {
		t.Error("Expected duplicate feedback to be rejected")
	}
	if err := svc.SubmitFeedback(ctx, booking.ID, "stranger", 3, "?"); !errors.Is(err, ErrNotBookingParty) {
		t.Errorf("Expected ErrNotBookingParty for stranger feedback, got %v", err)
	}
}

func TestCancelReleasesSlot(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/host", map[string]any{}, false)
	store.Set(ctx, "users/s1", map[string]any{}, false)
	store.Set(ctx, "users/s2", map[string]any{}, false)

	svc := newTestShadowing(store)
	oppID := seedOpportunity(t, svc, 1)

	booking, _ := svc.Book(ctx, "s1", oppID, testNow.Add(72*time.Hour))
	if _, err := svc.Cancel(ctx, booking.ID, "s1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if _, err := svc.Book(ctx, "s2", oppID, testNow.Add(72*time.Hour)); err != nil {
		t.Errorf("Expected freed slot to be bookable: %v", err)
	}
}
