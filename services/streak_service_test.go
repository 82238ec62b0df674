package services

import (
	"context"
	"testing"
	"time"

	"alumniConnectAPI/internal/docstore"
)

func newTestStreak(store *docstore.MemoryStore, day time.Time) (*StreakService, *time.Time) {
	clock := day
	gam := NewGamificationService(store)
	gam.now = func() time.Time { return clock }
	svc := NewStreakService(store, gam)
	svc.now = func() time.Time { return clock }
	return svc, &clock
}

func countAction(t *testing.T, store *docstore.MemoryStore, userID, action string) int {
	t.Helper()
	docs, err := store.Query(context.Background(), "users/"+userID+"/pointsHistory", []docstore.Filter{
		docstore.Where("action", "==", action),
	})
	if err != nil {
		t.Fatalf("Failed to query history: %v", err)
	}
	return len(docs)
}

func TestRecordLoginFirstDay(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc, _ := newTestStreak(store, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC))
	data, err := svc.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	if data.CurrentStreak != 1 || data.LongestStreak != 1 {
		t.Errorf("Expected streak 1/1, got %d/%d", data.CurrentStreak, data.LongestStreak)
	}
	if got := countAction(t, store, "u1", "dailyLogin"); got != 1 {
		t.Errorf("Expected 1 dailyLogin award, got %d", got)
	}
}

func TestRecordLoginSameDayIsIdempotent(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc, _ := newTestStreak(store, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	svc.RecordLogin(ctx, "u1")

	data, err := svc.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	if data.CurrentStreak != 1 {
		t.Errorf("Expected streak to stay 1, got %d", data.CurrentStreak)
	}
	if got := countAction(t, store, "u1", "dailyLogin"); got != 1 {
		t.Errorf("Second same-day login awarded points again: %d awards", got)
	}
}

func TestRecordLoginConsecutiveDaysAndWeeklyMilestone(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc, clock := newTestStreak(store, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	for day := 0; day < 7; day++ {
		*clock = time.Date(2026, 3, 1+day, 8, 0, 0, 0, time.UTC)
		if _, err := svc.RecordLogin(ctx, "u1"); err != nil {
			t.Fatalf("RecordLogin day %d failed: %v", day, err)
		}
	}

	data, _ := svc.GetStreak(ctx, "u1")
	if data.CurrentStreak != 7 || data.LongestStreak != 7 {
		t.Errorf("Expected streak 7/7, got %d/%d", data.CurrentStreak, data.LongestStreak)
	}
	// The weekly bonus fires exactly once, on day seven.
	if got := countAction(t, store, "u1", "weeklyStreak"); got != 1 {
		t.Errorf("Expected 1 weeklyStreak award, got %d", got)
	}
	if got := countAction(t, store, "u1", "monthlyStreak"); got != 0 {
		t.Errorf("Expected no monthlyStreak award, got %d", got)
	}
}

func TestRecordLoginMonthlyMilestone(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc, clock := newTestStreak(store, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	for day := 0; day < 30; day++ {
		*clock = time.Date(2026, 3, 1+day, 8, 0, 0, 0, time.UTC)
		if _, err := svc.RecordLogin(ctx, "u1"); err != nil {
			t.Fatalf("RecordLogin day %d failed: %v", day, err)
		}
	}

	data, _ := svc.GetStreak(ctx, "u1")
	if data.CurrentStreak != 30 {
		t.Fatalf("Expected streak 30, got %d", data.CurrentStreak)
	}
	// The monthly bonus fires exactly once, on day thirty; the weekly
	// bonus stays at its single day-seven firing.
	if got := countAction(t, store, "u1", "monthlyStreak"); got != 1 {
		t.Errorf("Expected 1 monthlyStreak award, got %d", got)
	}
	if got := countAction(t, store, "u1", "weeklyStreak"); got != 1 {
		t.Errorf("Expected 1 weeklyStreak award, got %d", got)
	}
}

func TestRecordLoginGapResetsButKeepsLongest(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc, clock := newTestStreak(store, time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC))
	for day := 0; day < 3; day++ {
		*clock = time.Date(2026, 3, 1+day, 8, 0, 0, 0, time.UTC)
		svc.RecordLogin(ctx, "u1")
	}

	// Two missed days.
	*clock = time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	data, err := svc.RecordLogin(ctx, "u1")
	if err != nil {
		t.Fatalf("RecordLogin failed: %v", err)
	}
	if data.CurrentStreak != 1 {
		t.Errorf("Expected streak reset to 1, got %d", data.CurrentStreak)
	}
	if data.LongestStreak != 3 {
		t.Errorf("Expected longest streak to stay 3, got %d", data.LongestStreak)
	}
	if len(data.StreakHistory) != 1 {
		t.Errorf("Expected history reset to today only, got %d entries", len(data.StreakHistory))
	}
}
