package services

import (
	"context"
	"testing"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/challenge"
)

func newTestChallenges(store *docstore.MemoryStore) *ChallengeService {
	now := func() time.Time { return testNow }
	gam := NewGamificationService(store)
	gam.now = now
	svc := NewChallengeService(store, gam)
	svc.now = now
	return svc
}

func seedChallenge(t *testing.T, svc *ChallengeService, action string, target, reward int) string {
	t.Helper()
	id, err := svc.CreateChallenge(context.Background(), &challenge.Challenge{
		Title:     "Networking Sprint",
		Type:      "weekly",
		Criteria:  challenge.Criteria{Action: action, Target: target},
		Reward:    reward,
		StartDate: testNow.Add(-24 * time.Hour),
		EndDate:   testNow.Add(6 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateChallenge failed: %v", err)
	}
	return id
}

func TestCreateChallengeValidates(t *testing.T) {
	svc := newTestChallenges(docstore.NewMemoryStore())

	_, err := svc.CreateChallenge(context.Background(), &challenge.Challenge{
		Title:     "Broken",
		Criteria:  challenge.Criteria{Action: "attendEvent", Target: 3},
		StartDate: testNow,
		EndDate:   testNow.Add(-time.Hour),
	})
	if err == nil {
		t.Error("Expected inverted date window to be rejected")
	}

	_, err = svc.CreateChallenge(context.Background(), &challenge.Challenge{
		Title:     "No target",
		Criteria:  challenge.Criteria{Action: "attendEvent"},
		StartDate: testNow,
		EndDate:   testNow.Add(time.Hour),
	})
	if err == nil {
		t.Error("Expected zero target to be rejected")
	}
}

func TestRecordActionCompletesOnceAndPaysReward(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc := newTestChallenges(store)
	id := seedChallenge(t, svc, "attendEvent", 2, 120)

	if err := svc.RecordAction(ctx, "u1", "attendEvent", 1); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	list, _ := svc.GetUserChallenges(ctx, "u1")
	if list[0].Progress.Progress != 1 || list[0].Progress.Status != challenge.StatusActive {
		t.Errorf("Expected progress 1/active, got %+v", list[0].Progress)
	}

	if err := svc.RecordAction(ctx, "u1", "attendEvent", 1); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	list, _ = svc.GetUserChallenges(ctx, "u1")
	if list[0].Progress.Status != challenge.StatusCompleted {
		t.Errorf("Expected completed status, got %s", list[0].Progress.Status)
	}

	userDoc, _ := store.Get(ctx, "users/u1")
	if docstore.Int(userDoc, "points") != 120 {
		t.Errorf("Expected 120 reward points, got %d", docstore.Int(userDoc, "points"))
	}

	// Further actions never reopen or re-pay a completed challenge.
	if err := svc.RecordAction(ctx, "u1", "attendEvent", 5); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	progress, _ := store.Get(ctx, challengeProgressPath("u1", id))
	if docstore.Int(progress, "progress") != 2 {
		t.Errorf("Expected progress frozen at 2, got %d", docstore.Int(progress, "progress"))
	}
	userDoc, _ = store.Get(ctx, "users/u1")
	if docstore.Int(userDoc, "points") != 120 {
		t.Errorf("Reward paid twice: %d points", docstore.Int(userDoc, "points"))
	}
}

func TestRecordActionIgnoresOtherActions(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc := newTestChallenges(store)
	id := seedChallenge(t, svc, "attendEvent", 2, 120)

	if err := svc.RecordAction(ctx, "u1", "connectWithAlumni", 1); err != nil {
		t.Fatalf("RecordAction failed: %v", err)
	}
	if _, err := store.Get(ctx, challengeProgressPath("u1", id)); err == nil {
		t.Error("Expected no progress doc for an unrelated action")
	}
}

func TestListActiveChallengesExcludesExpired(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	svc := newTestChallenges(store)
	seedChallenge(t, svc, "attendEvent", 2, 100)

	store.Add(ctx, "challenges", map[string]any{
		"title":     "Expired",
		"criteria":  map[string]any{"action": "attendEvent", "target": 1},
		"startDate": testNow.Add(-10 * 24 * time.Hour),
		"endDate":   testNow.Add(-3 * 24 * time.Hour),
	})
	store.Add(ctx, "challenges", map[string]any{
		"title":     "Not started",
		"criteria":  map[string]any{"action": "attendEvent", "target": 1},
		"startDate": testNow.Add(3 * 24 * time.Hour),
		"endDate":   testNow.Add(10 * 24 * time.Hour),
	})

	active, err := svc.ListActiveChallenges(ctx)
	if err != nil {
		t.Fatalf("ListActiveChallenges failed: %v", err)
	}
	if len(active) != 1 || active[0].Title != "Networking Sprint" {
		t.Errorf("Expected only the live challenge, got %d", len(active))
	}
}
