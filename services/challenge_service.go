package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/challenge"
)

type ChallengeService struct {
	store        docstore.Store
	gamification *GamificationService
	now          func() time.Time
}

func NewChallengeService(store docstore.Store, gamification *GamificationService) *ChallengeService {
	return &ChallengeService{store: store, gamification: gamification, now: time.Now}
}

func challengeProgressPath(userID, challengeID string) string {
	return "users/" + userID + "/challenges/" + challengeID
}

// CreateChallenge stores a new time-boxed challenge and returns its ID.
func (s *ChallengeService) CreateChallenge(ctx context.Context, c *challenge.Challenge) (string, error) {
	if c.Title == "" || c.Criteria.Action == "" || c.Criteria.Target <= 0 {
		return "", fmt.Errorf("challenge requires a title, a criteria action and a positive target")
	}
	if !c.EndDate.After(c.StartDate) {
		return "", fmt.Errorf("challenge end date must be after its start date")
	}

	id, err := s.store.Add(ctx, "challenges", map[string]any{
		"title":       c.Title,
		"description": c.Description,
		"type":        c.Type,
		"criteria":    map[string]any{"action": c.Criteria.Action, "target": c.Criteria.Target},
		"reward":      c.Reward,
		"startDate":   c.StartDate,
		"endDate":     c.EndDate,
		"icon":        c.Icon,
		"createdAt":   s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create challenge: %w", err)
	}
	return id, nil
}

// ListActiveChallenges returns challenges whose window contains now.
func (s *ChallengeService) ListActiveChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	docs, err := s.store.Query(ctx, "challenges", []docstore.Filter{
		docstore.Where("endDate", ">=", s.now()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}

	active := make([]*challenge.Challenge, 0, len(docs))
	for _, doc := range docs {
		c := challenge.FromDoc(doc.ID, doc.Data)
		if !c.StartDate.After(s.now()) {
			active = append(active, c)
		}
	}
	return active, nil
}

// UserChallenge pairs an active challenge with the caller's progress.
type UserChallenge struct {
	*challenge.Challenge
	Progress *challenge.Progress `json:"progress"`
}

// GetUserChallenges joins the active challenge set with per-user progress.
// Challenges the user has not advanced carry zero progress.
func (s *ChallengeService) GetUserChallenges(ctx context.Context, userID string) ([]UserChallenge, error) {
	active, err := s.ListActiveChallenges(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserChallenge, 0, len(active))
	for _, c := range active {
		uc := UserChallenge{Challenge: c, Progress: &challenge.Progress{
			ChallengeID: c.ID,
			Status:      challenge.StatusActive,
		}}
		if data, err := s.store.Get(ctx, challengeProgressPath(userID, c.ID)); err == nil {
			uc.Progress = challenge.ProgressFromDoc(c.ID, data)
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("failed to read challenge progress: %w", err)
		}
		out = append(out, uc)
	}
	return out, nil
}

// RecordAction advances every active challenge tracking the given action and
// completes those that reach their target. Completion is one-way and the
// reward is paid exactly once.
func (s *ChallengeService) RecordAction(ctx context.Context, userID, action string, amount int) error {
	if amount <= 0 {
		amount = 1
	}

	active, err := s.ListActiveChallenges(ctx)
	if err != nil {
		return err
	}

	for _, c := range active {
		if c.Criteria.Action != action {
			continue
		}

		progress := &challenge.Progress{
			ChallengeID: c.ID,
			Status:      challenge.StatusActive,
			StartedAt:   s.now(),
		}
		if data, err := s.store.Get(ctx, challengeProgressPath(userID, c.ID)); err == nil {
			progress = challenge.ProgressFromDoc(c.ID, data)
		} else if !errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("failed to read challenge progress: %w", err)
		}

		if progress.Status == challenge.StatusCompleted {
			continue
		}

		progress.Progress += amount
		fields := map[string]any{
			"challengeId": c.ID,
			"progress":    progress.Progress,
			"status":      progress.Status,
			"startedAt":   progress.StartedAt,
		}
		if progress.Progress >= c.Criteria.Target {
			progress.Status = challenge.StatusCompleted
			progress.CompletedAt = s.now()
			fields["status"] = progress.Status
			fields["completedAt"] = progress.CompletedAt
		}

		if err := s.store.Set(ctx, challengeProgressPath(userID, c.ID), fields, true); err != nil {
			return fmt.Errorf("failed to update challenge progress: %w", err)
		}

		if progress.Status == challenge.StatusCompleted {
			if _, err := s.gamification.AwardFixed(ctx, userID, "challengeReward", c.Reward, "Challenge completed: "+c.Title); err != nil {
				log.Printf("RecordAction: failed to pay reward for challenge %s: %v", c.ID, err)
			}
		}
	}
	return nil
}
