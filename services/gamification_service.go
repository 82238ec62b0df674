package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/badge"
	"alumniConnectAPI/internal/types/gamification"
	"alumniConnectAPI/internal/types/leaderboard"
	"alumniConnectAPI/internal/types/user"
	"alumniConnectAPI/utils"
)

// maxBadgePasses bounds the badge fixed-point loop. Bonus points from a
// freshly awarded badge can only unlock point-based badges, so the loop
// settles quickly; the cap guards against a pathological catalog.
const maxBadgePasses = 10

type GamificationService struct {
	store docstore.Store
	now   func() time.Time
}

func NewGamificationService(store docstore.Store) *GamificationService {
	return &GamificationService{store: store, now: time.Now}
}

func statsPath(userID string) string {
	return "users/" + userID + "/gamification/stats"
}

func historyPath(userID string) string {
	return "users/" + userID + "/pointsHistory"
}

// AwardPoints credits the configured point value for action, appends a
// transaction record, and re-evaluates level and badges.
func (s *GamificationService) AwardPoints(ctx context.Context, userID, action, description string) (int, error) {
	points := s.pointsFor(ctx, action)
	return s.award(ctx, userID, action, points, description, true)
}

// AwardFixed credits an explicit point value under an action label, bypassing
// the points config. Quest and challenge rewards carry their own values.
func (s *GamificationService) AwardFixed(ctx context.Context, userID, action string, points int, description string) (int, error) {
	return s.award(ctx, userID, action, points, description, true)
}

func (s *GamificationService) award(ctx context.Context, userID, action string, points int, description string, runChecks bool) (int, error) {
	if description == "" {
		description = fmt.Sprintf("Earned %d points for %s", points, action)
	}

	if _, err := s.store.Get(ctx, statsPath(userID)); err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			return 0, fmt.Errorf("failed to read gamification stats: %w", err)
		}
		initial := map[string]any{
			"totalPoints": points,
			"level":       1,
			"currentTier": gamification.DefaultLevels[0].Name,
			"badges":      []string{},
			"lastUpdated": s.now(),
		}
		if err := s.store.Set(ctx, statsPath(userID), initial, false); err != nil {
			return 0, fmt.Errorf("failed to initialize gamification stats: %w", err)
		}
	} else {
		err := s.store.Update(ctx, statsPath(userID), map[string]any{
			"totalPoints": docstore.Increment(points),
			"lastUpdated": s.now(),
		})
		if err != nil {
			return 0, fmt.Errorf("failed to add points: %w", err)
		}
	}

	// Both the nested projection and the legacy top-level counter go through
	// one update so the pair moves together.
	err := s.store.Update(ctx, "users/"+userID, map[string]any{
		"gamification.points": docstore.Increment(points),
		"points":              docstore.Increment(points),
	})
	if err != nil {
		log.Printf("AwardPoints: failed to sync user document for %s: %v", userID, err)
	}

	_, err = s.store.Add(ctx, historyPath(userID), map[string]any{
		"action":      action,
		"points":      points,
		"description": description,
		"timestamp":   s.now(),
	})
	if err != nil {
		log.Printf("AwardPoints: failed to record transaction for %s: %v", userID, err)
	}

	if runChecks {
		if err := s.CheckLevelUp(ctx, userID); err != nil {
			log.Printf("AwardPoints: level check failed for %s: %v", userID, err)
		}
		if err := s.CheckBadges(ctx, userID); err != nil {
			log.Printf("AwardPoints: badge check failed for %s: %v", userID, err)
		}
	}

	return points, nil
}

func (s *GamificationService) pointsFor(ctx context.Context, action string) int {
	actions := gamification.DefaultActionPoints

	if data, err := s.store.Get(ctx, "pointsConfig/actions"); err == nil {
		if configured := docstore.Map(data, "actions"); configured != nil {
			actions = make(map[string]int, len(configured))
			for name := range configured {
				actions[name] = docstore.Int(configured, name)
			}
		}
	} else if !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("pointsFor: failed to read points config: %v", err)
	}

	points, ok := actions[action]
	if !ok || points == 0 {
		log.Printf("pointsFor: action %q not in points config, defaulting to %d", action, gamification.UnknownActionPoints)
		return gamification.UnknownActionPoints
	}
	return points
}

func (s *GamificationService) levels(ctx context.Context) []gamification.Level {
	data, err := s.store.Get(ctx, "pointsConfig/actions")
	if err != nil {
		return gamification.DefaultLevels
	}
	raw, _ := data["levels"].([]any)
	return gamification.LevelsFromConfig(raw)
}

// CheckLevelUp recomputes the level from the point total and stores it when
// it changed. Level and tier stay a pure function of points.
func (s *GamificationService) CheckLevelUp(ctx context.Context, userID string) error {
	data, err := s.store.Get(ctx, statsPath(userID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return err
	}
	stats := gamification.StatsFromDoc(data)

	current := gamification.LevelForPoints(s.levels(ctx), stats.TotalPoints)
	if current.Level == stats.Level {
		return nil
	}

	err = s.store.Update(ctx, statsPath(userID), map[string]any{
		"level":       current.Level,
		"currentTier": current.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to store level: %w", err)
	}

	err = s.store.Update(ctx, "users/"+userID, map[string]any{
		"gamification.level":       current.Level,
		"gamification.currentTier": current.Name,
	})
	if err != nil {
		log.Printf("CheckLevelUp: failed to sync user document for %s: %v", userID, err)
	}

	log.Printf("CheckLevelUp: user %s reached %s (level %d)", userID, current.Name, current.Level)
	return nil
}

// CheckBadges runs the badge evaluator to a fixed point: passes keep going
// until one awards nothing new. A badge, once held, is never re-awarded.
func (s *GamificationService) CheckBadges(ctx context.Context, userID string) error {
	for pass := 0; pass < maxBadgePasses; pass++ {
		awarded, err := s.badgePass(ctx, userID)
		if err != nil {
			return err
		}
		if !awarded {
			return nil
		}
	}
	return nil
}

func (s *GamificationService) badgePass(ctx context.Context, userID string) (bool, error) {
	data, err := s.store.Get(ctx, statsPath(userID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	stats := gamification.StatsFromDoc(data)

	docs, err := s.store.Query(ctx, "badges", nil)
	if err != nil {
		return false, fmt.Errorf("failed to load badge catalog: %w", err)
	}

	userStats := s.UserStats(ctx, userID)

	held := append([]string{}, stats.Badges...)
	awardedAny := false
	for _, doc := range docs {
		b := badge.FromDoc(doc.ID, doc.Data)
		if stats.HasBadge(b.ID) || !meetsCriteria(b.Criteria, userStats) {
			continue
		}

		held = append(held, b.ID)
		if err := s.store.Update(ctx, statsPath(userID), map[string]any{"badges": held}); err != nil {
			return awardedAny, fmt.Errorf("failed to store badge %s: %w", b.ID, err)
		}
		if err := s.store.Update(ctx, "users/"+userID, map[string]any{"gamification.badges": held}); err != nil {
			log.Printf("badgePass: failed to sync badges for %s: %v", userID, err)
		}
		stats.Badges = held

		bonus := b.Points
		if bonus == 0 {
			bonus = s.pointsFor(ctx, "badgeEarned")
		}
		// Bonus points bypass the badge check; the outer loop owns re-evaluation.
		if _, err := s.award(ctx, userID, "badgeEarned", bonus, "Earned badge: "+b.Name, false); err != nil {
			log.Printf("badgePass: failed to award bonus for badge %s: %v", b.ID, err)
		}
		if err := s.CheckLevelUp(ctx, userID); err != nil {
			log.Printf("badgePass: level check failed for %s: %v", userID, err)
		}

		log.Printf("badgePass: user %s earned badge %s", userID, b.Name)
		awardedAny = true
	}

	return awardedAny, nil
}

// meetsCriteria reports whether every criterion threshold is satisfied.
// Missing stats count as zero; leaderboardRank is evaluated elsewhere.
func meetsCriteria(criteria map[string]int, userStats map[string]int) bool {
	if len(criteria) == 0 {
		return false
	}
	for key, threshold := range criteria {
		if key == "leaderboardRank" {
			continue
		}
		if userStats[key] < threshold {
			return false
		}
	}
	return true
}

// UserStats assembles the stat snapshot badge criteria are checked against.
// Every dimension degrades to zero on a read failure; badge evaluation must
// never take an award path down with it.
func (s *GamificationService) UserStats(ctx context.Context, userID string) map[string]int {
	stats := map[string]int{
		"profileCompletion": 0,
		"connections":       0,
		"eventsAttended":    0,
		"donations":         0,
		"totalPoints":       0,
	}

	if data, err := s.store.Get(ctx, statsPath(userID)); err == nil {
		stats["totalPoints"] = gamification.StatsFromDoc(data).TotalPoints
	} else if !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("UserStats: failed to read gamification stats for %s: %v", userID, err)
	}

	if data, err := s.store.Get(ctx, "users/"+userID); err == nil {
		stats["profileCompletion"] = utils.ProfileCompletion(data)
	} else if !errors.Is(err, docstore.ErrNotFound) {
		log.Printf("UserStats: failed to read user %s: %v", userID, err)
	}

	count := 0
	for _, field := range []string{"requesterId", "recipientId"} {
		docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
			docstore.Where(field, "==", userID),
			docstore.Where("status", "==", "accepted"),
		})
		if err != nil {
			log.Printf("UserStats: failed to count connections for %s: %v", userID, err)
			continue
		}
		count += len(docs)
	}
	stats["connections"] = count

	attended, err := s.store.Query(ctx, "userEventInteractions/"+userID+"/interactions", []docstore.Filter{
		docstore.Where("attended", "==", true),
	})
	if err != nil {
		log.Printf("UserStats: failed to count attended events for %s: %v", userID, err)
	} else {
		stats["eventsAttended"] = len(attended)
	}

	donations, err := s.store.Query(ctx, "donations", []docstore.Filter{
		docstore.Where("donorId", "==", userID),
	})
	if err != nil {
		log.Printf("UserStats: failed to count donations for %s: %v", userID, err)
	} else {
		stats["donations"] = len(donations)
	}

	return stats
}

// GetStats returns the ledger for a user, or nil when none exists yet.
func (s *GamificationService) GetStats(ctx context.Context, userID string) (*gamification.Stats, error) {
	data, err := s.store.Get(ctx, statsPath(userID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get gamification stats: %w", err)
	}
	return gamification.StatsFromDoc(data), nil
}

// GetPointsHistory lists the most recent transactions, newest first.
func (s *GamificationService) GetPointsHistory(ctx context.Context, userID string, limit int) ([]*gamification.Transaction, error) {
	if limit <= 0 {
		limit = 20
	}
	docs, err := s.store.Query(ctx, historyPath(userID), nil,
		docstore.OrderBy("timestamp", true), docstore.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get points history: %w", err)
	}

	history := make([]*gamification.Transaction, 0, len(docs))
	for _, doc := range docs {
		history = append(history, gamification.TransactionFromDoc(doc.Data))
	}
	return history, nil
}

// GetLeaderboard ranks users by the top-level points counter over a bounded
// fetch, descending, ranks starting at 1.
func (s *GamificationService) GetLeaderboard(ctx context.Context, limit int) ([]*leaderboard.Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	docs, err := s.store.Query(ctx, "users", nil, docstore.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users for leaderboard: %w", err)
	}

	profiles := make([]*user.Profile, 0, len(docs))
	for _, doc := range docs {
		profiles = append(profiles, user.FromDoc(doc.ID, doc.Data))
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Points > profiles[j].Points
	})

	if len(profiles) > limit {
		profiles = profiles[:limit]
	}

	entries := make([]*leaderboard.Entry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, &leaderboard.Entry{
			Rank:        i + 1,
			UserID:      p.UID,
			DisplayName: p.DisplayName,
			PhotoURL:    p.PhotoURL,
			Points:      p.Points,
			Level:       p.Gamification.Level,
			CurrentTier: p.Gamification.CurrentTier,
		})
	}
	return entries, nil
}
