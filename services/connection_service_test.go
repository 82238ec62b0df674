package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/connection"
	"alumniConnectAPI/internal/types/user"
)

func newTestConnections(store *docstore.MemoryStore) *ConnectionService {
	gam := NewGamificationService(store)
	gam.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	svc := NewConnectionService(store, gam)
	svc.now = gam.now
	return svc
}

func seedUser(t *testing.T, store *docstore.MemoryStore, id, name string) {
	t.Helper()
	err := store.Set(context.Background(), "users/"+id, map[string]any{
		"displayName": name,
	}, false)
	if err != nil {
		t.Fatalf("Failed to seed user %s: %v", id, err)
	}
}

func TestSendRequestRejectsDuplicates(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	seedUser(t, store, "a", "Alice")
	seedUser(t, store, "b", "Bob")

	svc := newTestConnections(store)
	if _, err := svc.SendRequest(ctx, "a", "b", "hi"); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	if _, err := svc.SendRequest(ctx, "a", "b", "again"); !errors.Is(err, ErrDuplicateConnection) {
		t.Errorf("Expected ErrDuplicateConnection, got %v", err)
	}
	// Reverse direction is the same edge.
	if _, err := svc.SendRequest(ctx, "b", "a", "reverse"); !errors.Is(err, ErrDuplicateConnection) {
		t.Errorf("Expected ErrDuplicateConnection for reverse edge, got %v", err)
	}
}

func TestSendRequestRejectsSelf(t *testing.T) {
	store := docstore.NewMemoryStore()
	seedUser(t, store, "a", "Alice")

	svc := newTestConnections(store)
	if _, err := svc.SendRequest(context.Background(), "a", "a", ""); err == nil {
		t.Error("Expected self-connection to be rejected")
	}
}

func TestRespondAcceptAwardsBothParties(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	seedUser(t, store, "a", "Alice")
	seedUser(t, store, "b", "Bob")

	svc := newTestConnections(store)
	conn, _ := svc.SendRequest(ctx, "a", "b", "")

	// Only the recipient may respond.
	if _, err := svc.Respond(ctx, conn.ID, "a", true); !errors.Is(err, ErrNotConnectionParty) {
		t.Errorf("Expected ErrNotConnectionParty for requester response, got %v", err)
	}

	accepted, err := svc.Respond(ctx, conn.ID, "b", true)
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if accepted.Status != connection.StatusAccepted {
		t.Errorf("Expected accepted status, got %s", accepted.Status)
	}

	for _, uid := range []string{"a", "b"} {
		doc, _ := store.Get(ctx, "users/"+uid)
		if docstore.Int(doc, "points") != 50 {
			t.Errorf("Expected 50 connection points for %s, got %d", uid, docstore.Int(doc, "points"))
		}
	}

	// Resolved requests never transition again.
	if _, err := svc.Respond(ctx, conn.ID, "b", false); err == nil {
		t.Error("Expected error responding to a resolved request")
	}
}

func TestRankCandidatesScenario(t *testing.T) {
	me := &user.Profile{
		UID:            "me",
		Industry:       "Tech",
		Location:       "Sofia",
		Skills:         []string{"Go", "SQL"},
		GraduationYear: 2020,
		Headline:       "Software Engineer",
	}
	strong := &user.Profile{
		UID:            "strong",
		Industry:       "Tech",     // +3
		Location:       "Sofia",    // +2
		Skills:         []string{"go"}, // +1
		GraduationYear: 2021,
		Headline:       "QA Analyst",
	}
	weak := &user.Profile{
		UID:            "weak",
		Industry:       "Finance",
		Location:       "Varna",
		GraduationYear: 2020, // +1
		Headline:       "Accountant",
	}

	ranked := RankCandidates(me, []*user.Profile{weak, strong})
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 suggestions, got %d", len(ranked))
	}
	if ranked[0].User.UID != "strong" || ranked[0].Score != 6 {
		t.Errorf("Expected strong first with score 6, got %s/%d", ranked[0].User.UID, ranked[0].Score)
	}
	if ranked[1].User.UID != "weak" || ranked[1].Score != 1 {
		t.Errorf("Expected weak second with score 1, got %s/%d", ranked[1].User.UID, ranked[1].Score)
	}
}

func TestRoleFamilyUsesFirstKeyword(t *testing.T) {
	// Both headlines mention Manager, but the first family for
	// "Engineering Manager" is Engineer.
	if sameRoleFamily("Engineering Manager", "Product Manager") {
		t.Error("Expected different primary role families not to match")
	}
	if !sameRoleFamily("Software Engineer", "ML Engineer") {
		t.Error("Expected shared Engineer family to match")
	}
	if sameRoleFamily("Accountant", "Accountant") {
		t.Error("Expected headlines outside every family not to match")
	}
}

func TestMatchScoreLocationIsExact(t *testing.T) {
	me := &user.Profile{UID: "me", Location: "Sofia"}
	other := &user.Profile{UID: "other", Location: "sofia"}
	if got := matchScore(me, other); got != 0 {
		t.Errorf("Expected case-different locations not to score, got %d", got)
	}
	other.Location = "Sofia"
	if got := matchScore(me, other); got != 2 {
		t.Errorf("Expected exact location match to score 2, got %d", got)
	}
}

func TestRankCandidatesStableOnTies(t *testing.T) {
	me := &user.Profile{UID: "me", GraduationYear: 2020}
	first := &user.Profile{UID: "first", GraduationYear: 2020}
	second := &user.Profile{UID: "second", GraduationYear: 2020}

	ranked := RankCandidates(me, []*user.Profile{first, second})
	if ranked[0].User.UID != "first" || ranked[1].User.UID != "second" {
		t.Errorf("Tied candidates reordered: %s, %s", ranked[0].User.UID, ranked[1].User.UID)
	}
}

func TestRankCandidatesCapsAtTen(t *testing.T) {
	me := &user.Profile{UID: "me"}
	var candidates []*user.Profile
	for i := 0; i < 15; i++ {
		candidates = append(candidates, &user.Profile{UID: "c"})
	}
	if got := len(RankCandidates(me, candidates)); got != 10 {
		t.Errorf("Expected 10 suggestions, got %d", got)
	}
}

func TestStreamPendingRequests(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()
	seedUser(t, store, "a", "Alice")
	seedUser(t, store, "b", "Bob")

	svc := newTestConnections(store)
	updates, cancel := svc.StreamPendingRequests(ctx, "b")
	defer cancel()

	// Initial snapshot is empty.
	select {
	case batch := <-updates:
		if len(batch) != 0 {
			t.Errorf("Expected empty initial snapshot, got %d", len(batch))
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for initial snapshot")
	}

	if _, err := svc.SendRequest(ctx, "a", "b", "hello"); err != nil {
		t.Fatalf("SendRequest failed: %v", err)
	}

	deadline := time.After(time.Second)
	for {
		select {
		case batch := <-updates:
			if len(batch) == 1 && batch[0].RequesterID == "a" {
				return
			}
		case <-deadline:
			t.Fatal("Timed out waiting for pending request on stream")
		}
	}
}
