package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/user"
	"alumniConnectAPI/utils"
)

var ErrUserNotFound = errors.New("user not found")

// profileFieldAllowlist is the set of user document fields a profile update
// may touch. Gamification counters are owned by the award path and are never
// writable here.
var profileFieldAllowlist = map[string]bool{
	"displayName":      true,
	"email":            true,
	"photoURL":         true,
	"role":             true,
	"headline":         true,
	"bio":              true,
	"company":          true,
	"location":         true,
	"industry":         true,
	"graduationYear":   true,
	"skills":           true,
	"interests":        true,
	"mentorshipStatus": true,
}

type UserService struct {
	store        docstore.Store
	gamification *GamificationService
	quests       *QuestService
	now          func() time.Time
}

func NewUserService(store docstore.Store, gamification *GamificationService, quests *QuestService) *UserService {
	return &UserService{store: store, gamification: gamification, quests: quests, now: time.Now}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	data, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}
	return user.FromDoc(userID, data), nil
}

// UpdateProfile merges allowlisted fields into the user document, then
// re-checks profile-driven rewards. Hitting 100% completion pays the
// completeProfile action exactly once per account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*user.Profile, error) {
	filtered := make(map[string]any, len(fields))
	for key, value := range fields {
		if profileFieldAllowlist[key] {
			filtered[key] = value
		}
	}
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no updatable fields in request")
	}
	filtered["lastActive"] = s.now()

	if err := s.store.Set(ctx, "users/"+userID, filtered, true); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	data, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}

	if utils.ProfileCompletion(data) >= 100 && !docstore.Bool(data, "completeProfileAwarded") {
		if err := s.store.Update(ctx, "users/"+userID, map[string]any{"completeProfileAwarded": true}); err != nil {
			log.Printf("UpdateProfile: failed to mark completion award for %s: %v", userID, err)
		} else if _, err := s.gamification.AwardPoints(ctx, userID, "completeProfile", "Profile completed"); err != nil {
			log.Printf("UpdateProfile: failed to award completion points for %s: %v", userID, err)
		}
	}

	if _, err := s.quests.EvaluateQuests(ctx, userID); err != nil {
		log.Printf("UpdateProfile: quest evaluation failed for %s: %v", userID, err)
	}

	return user.FromDoc(userID, data), nil
}

// GetProfileCompletion reports the 0-100 completion score.
func (s *UserService) GetProfileCompletion(ctx context.Context, userID string) (int, error) {
	data, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to read user %s: %w", userID, err)
	}
	return utils.ProfileCompletion(data), nil
}

// SearchUsers lists profiles filtered by role and industry, both optional.
func (s *UserService) SearchUsers(ctx context.Context, role, industry string, limit int) ([]*user.Profile, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var filters []docstore.Filter
	if role != "" {
		filters = append(filters, docstore.Where("role", "==", role))
	}
	if industry != "" {
		filters = append(filters, docstore.Where("industry", "==", industry))
	}

	docs, err := s.store.Query(ctx, "users", filters, docstore.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	out := make([]*user.Profile, 0, len(docs))
	for _, doc := range docs {
		out = append(out, user.FromDoc(doc.ID, doc.Data))
	}
	return out, nil
}

// TouchLastActive bumps the activity timestamp, creating the document if the
// user is new.
func (s *UserService) TouchLastActive(ctx context.Context, userID string) error {
	return s.store.Set(ctx, "users/"+userID, map[string]any{"lastActive": s.now()}, true)
}
