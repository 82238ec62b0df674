package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumniConnectAPI/internal/docstore"
)

func newTestUsers(store *docstore.MemoryStore) *UserService {
	now := func() time.Time { return testNow }
	gam := NewGamificationService(store)
	gam.now = now
	quests := NewQuestService(store, gam)
	quests.now = now
	svc := NewUserService(store, gam, quests)
	svc.now = now
	return svc
}

func fullProfileFields() map[string]any {
	return map[string]any{
		"displayName":    "Dana",
		"email":          "dana@example.com",
		"graduationYear": 2020,
		"role":           "alumni",
		"company":        "Acme",
		"headline":       "Engineer",
		"location":       "Sofia",
		"bio":            "Hi",
		"photoURL":       "http://x/p.png",
	}
}

func TestUpdateProfileIgnoresProtectedFields(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{"points": 500}, false)

	svc := newTestUsers(store)
	_, err := svc.UpdateProfile(ctx, "u1", map[string]any{
		"displayName": "Dana",
		"points":      999999,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	doc, _ := store.Get(ctx, "users/u1")
	if docstore.Int(doc, "points") != 500 {
		t.Errorf("Points field was writable through profile update: %d", docstore.Int(doc, "points"))
	}
	if docstore.Str(doc, "displayName") != "Dana" {
		t.Errorf("Expected displayName updated, got %q", docstore.Str(doc, "displayName"))
	}
}

func TestUpdateProfileRejectsEmptyPatch(t *testing.T) {
	store := docstore.NewMemoryStore()
	store.Set(context.Background(), "users/u1", map[string]any{}, false)

	svc := newTestUsers(store)
	if _, err := svc.UpdateProfile(context.Background(), "u1", map[string]any{"points": 1}); err == nil {
		t.Error("Expected patch with only protected fields to be rejected")
	}
}

func TestProfileCompletionAwardPaysOnce(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/u1", map[string]any{}, false)

	svc := newTestUsers(store)
	if _, err := svc.UpdateProfile(ctx, "u1", fullProfileFields()); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	completion, err := svc.GetProfileCompletion(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfileCompletion failed: %v", err)
	}
	if completion != 100 {
		t.Fatalf("Expected 100%% completion, got %d", completion)
	}

	history, err := NewGamificationService(store).GetPointsHistory(ctx, "u1", 50)
	if err != nil {
		t.Fatalf("GetPointsHistory failed: %v", err)
	}
	awards := 0
	for _, tx := range history {
		if tx.Action == "completeProfile" {
			awards++
		}
	}
	if awards != 1 {
		t.Fatalf("Expected exactly one completeProfile award, got %d", awards)
	}

	// Another edit to an already complete profile must not pay again.
	if _, err := svc.UpdateProfile(ctx, "u1", map[string]any{"bio": "Updated"}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	history, _ = NewGamificationService(store).GetPointsHistory(ctx, "u1", 50)
	awards = 0
	for _, tx := range history {
		if tx.Action == "completeProfile" {
			awards++
		}
	}
	if awards != 1 {
		t.Errorf("completeProfile paid twice: %d awards", awards)
	}
}

func TestGetProfileNotFound(t *testing.T) {
	svc := newTestUsers(docstore.NewMemoryStore())
	if _, err := svc.GetProfile(context.Background(), "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestSearchUsersFilters(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/a", map[string]any{"role": "alumni", "industry": "Tech"}, false)
	store.Set(ctx, "users/b", map[string]any{"role": "student", "industry": "Tech"}, false)
	store.Set(ctx, "users/c", map[string]any{"role": "alumni", "industry": "Finance"}, false)

	svc := newTestUsers(store)
	results, err := svc.SearchUsers(ctx, "alumni", "Tech", 0)
	if err != nil {
		t.Fatalf("SearchUsers failed: %v", err)
	}
	if len(results) != 1 || results[0].UID != "a" {
		t.Errorf("Expected only user a, got %d results", len(results))
	}
}
