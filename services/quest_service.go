package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/quest"
)

type QuestService struct {
	store        docstore.Store
	gamification *GamificationService
	now          func() time.Time
}

func NewQuestService(store docstore.Store, gamification *GamificationService) *QuestService {
	return &QuestService{store: store, gamification: gamification, now: time.Now}
}

func questPath(userID, questID string) string {
	return "users/" + userID + "/quests/" + questID
}

// QuestStatus is a catalog quest joined with the caller's progress.
type QuestStatus struct {
	quest.Quest
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ListQuests returns the full catalog annotated with the user's state.
// Quests the user has never touched show as active with zero progress.
func (s *QuestService) ListQuests(ctx context.Context, userID string) ([]QuestStatus, error) {
	docs, err := s.store.Query(ctx, "users/"+userID+"/quests", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read quest progress: %w", err)
	}

	state := make(map[string]*quest.UserQuest, len(docs))
	for _, doc := range docs {
		state[doc.ID] = quest.UserQuestFromDoc(doc.Data)
	}

	out := make([]QuestStatus, 0, len(quest.Catalog))
	for _, q := range quest.Catalog {
		qs := QuestStatus{Quest: q, Status: quest.StatusActive}
		if uq, ok := state[q.ID]; ok {
			qs.Status = uq.Status
			qs.Progress = uq.Progress
			if !uq.CompletedAt.IsZero() {
				completedAt := uq.CompletedAt
				qs.CompletedAt = &completedAt
			}
		}
		out = append(out, qs)
	}
	return out, nil
}

// CompleteQuest marks a catalog quest completed and pays out its reward.
// Completion is one-way; a completed quest is never paid twice.
func (s *QuestService) CompleteQuest(ctx context.Context, userID, questID string) (*quest.UserQuest, error) {
	q, ok := quest.ByID(questID)
	if !ok {
		return nil, fmt.Errorf("unknown quest %q", questID)
	}

	if data, err := s.store.Get(ctx, questPath(userID, questID)); err == nil {
		existing := quest.UserQuestFromDoc(data)
		if existing.Status == quest.StatusCompleted {
			return existing, nil
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return nil, fmt.Errorf("failed to read quest state: %w", err)
	}

	completed := &quest.UserQuest{
		QuestID:     questID,
		UserID:      userID,
		Status:      quest.StatusCompleted,
		Progress:    q.Criteria.Target,
		CompletedAt: s.now(),
	}
	err := s.store.Set(ctx, questPath(userID, questID), map[string]any{
		"questId":     completed.QuestID,
		"userId":      completed.UserID,
		"status":      completed.Status,
		"progress":    completed.Progress,
		"completedAt": completed.CompletedAt,
	}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to complete quest: %w", err)
	}

	if _, err := s.gamification.AwardFixed(ctx, userID, "questCompleted", q.Points, "Quest completed: "+q.Title); err != nil {
		log.Printf("CompleteQuest: failed to award points for %s: %v", questID, err)
	}
	return completed, nil
}

// RecordPageVisit completes any page-visit quest bound to pageID.
func (s *QuestService) RecordPageVisit(ctx context.Context, userID, pageID string) error {
	for _, q := range quest.Catalog {
		if q.Criteria.Type != quest.CriteriaPageVisit || q.Criteria.PageID != pageID {
			continue
		}
		if _, err := s.CompleteQuest(ctx, userID, q.ID); err != nil {
			return err
		}
	}
	return nil
}

// EvaluateQuests checks every non-page-visit quest against the user's current
// profile and connection state, completing those already satisfied. Returns
// the IDs of quests completed by this pass.
func (s *QuestService) EvaluateQuests(ctx context.Context, userID string) ([]string, error) {
	userData, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read user: %w", err)
	}

	connections := -1 // fetched lazily, most passes never need it
	var completed []string

	for _, q := range quest.Catalog {
		if done, err := s.isCompleted(ctx, userID, q.ID); err != nil {
			return completed, err
		} else if done {
			continue
		}

		satisfied := false
		switch q.Criteria.Type {
		case quest.CriteriaProfileCompletion:
			satisfied = profileQuestScore(userData) >= 3
		case quest.CriteriaConnectionCount:
			if connections < 0 {
				connections = s.countAcceptedConnections(ctx, userID)
			}
			satisfied = connections >= q.Criteria.Target
		case quest.CriteriaCustom:
			satisfied = docstore.Str(userData, q.Criteria.Field) != ""
		}

		if satisfied {
			if _, err := s.CompleteQuest(ctx, userID, q.ID); err != nil {
				return completed, err
			}
			completed = append(completed, q.ID)
		}
	}
	return completed, nil
}

// profileQuestScore counts the fields the complete_profile quest cares
// about: a bio, at least one skill, and an industry. This is a separate
// yardstick from utils.ProfileCompletion, which feeds badges.
func profileQuestScore(data map[string]any) int {
	score := 0
	if docstore.Str(data, "bio") != "" {
		score++
	}
	if len(docstore.Strings(data, "skills")) > 0 {
		score++
	}
	if docstore.Str(data, "industry") != "" {
		score++
	}
	return score
}

func (s *QuestService) isCompleted(ctx context.Context, userID, questID string) (bool, error) {
	data, err := s.store.Get(ctx, questPath(userID, questID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read quest state: %w", err)
	}
	return quest.UserQuestFromDoc(data).Status == quest.StatusCompleted, nil
}

func (s *QuestService) countAcceptedConnections(ctx context.Context, userID string) int {
	count := 0
	for _, field := range []string{"requesterId", "recipientId"} {
		docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
			docstore.Where(field, "==", userID),
			docstore.Where("status", "==", "accepted"),
		})
		if err != nil {
			log.Printf("EvaluateQuests: failed to count connections for %s: %v", userID, err)
			continue
		}
		count += len(docs)
	}
	return count
}
