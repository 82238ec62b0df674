package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/streak"
)

// streakHistoryKeep caps how many login days the history window retains.
const streakHistoryKeep = 30

type StreakService struct {
	store        docstore.Store
	gamification *GamificationService
	now          func() time.Time
}

func NewStreakService(store docstore.Store, gamification *GamificationService) *StreakService {
	return &StreakService{store: store, gamification: gamification, now: time.Now}
}

func streakPath(userID string) string {
	return "users/" + userID + "/streaks/login"
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordLogin advances the login streak for today. Calling it again on the
// same day is a no-op; the daily points are only ever awarded once per day.
func (s *StreakService) RecordLogin(ctx context.Context, userID string) (*streak.Data, error) {
	today := dateOnly(s.now())

	data, err := s.store.Get(ctx, streakPath(userID))
	if err != nil {
		if !errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("failed to read login streak: %w", err)
		}
		fresh := &streak.Data{
			CurrentStreak: 1,
			LongestStreak: 1,
			LastLoginDate: today,
			StreakHistory: []time.Time{today},
		}
		if err := s.store.Set(ctx, streakPath(userID), streakFields(fresh), false); err != nil {
			return nil, fmt.Errorf("failed to initialize login streak: %w", err)
		}
		s.awardLoginPoints(ctx, userID, fresh.CurrentStreak)
		return fresh, nil
	}

	current := streak.FromDoc(data)
	lastLogin := dateOnly(current.LastLoginDate)
	daysDiff := int(today.Sub(lastLogin).Hours() / 24)

	switch {
	case daysDiff <= 0:
		return current, nil

	case daysDiff == 1:
		current.CurrentStreak++
		if current.CurrentStreak > current.LongestStreak {
			current.LongestStreak = current.CurrentStreak
		}
		current.StreakHistory = append(current.StreakHistory, today)
		if len(current.StreakHistory) > streakHistoryKeep {
			current.StreakHistory = current.StreakHistory[len(current.StreakHistory)-streakHistoryKeep:]
		}

	default:
		// A missed day breaks the run; the longest streak already earned
		// never decreases.
		current.CurrentStreak = 1
		current.StreakHistory = []time.Time{today}
	}

	current.LastLoginDate = today
	if err := s.store.Update(ctx, streakPath(userID), streakFields(current)); err != nil {
		return nil, fmt.Errorf("failed to update login streak: %w", err)
	}

	s.awardLoginPoints(ctx, userID, current.CurrentStreak)
	return current, nil
}

func (s *StreakService) awardLoginPoints(ctx context.Context, userID string, currentStreak int) {
	if _, err := s.gamification.AwardPoints(ctx, userID, "dailyLogin", "Daily login"); err != nil {
		log.Printf("RecordLogin: failed to award daily login points for %s: %v", userID, err)
	}

	// Milestones fire exactly once, on the day the streak hits the mark.
	switch currentStreak {
	case 7:
		if _, err := s.gamification.AwardPoints(ctx, userID, "weeklyStreak", "7-day login streak"); err != nil {
			log.Printf("RecordLogin: failed to award weekly streak points for %s: %v", userID, err)
		}
	case 30:
		if _, err := s.gamification.AwardPoints(ctx, userID, "monthlyStreak", "30-day login streak"); err != nil {
			log.Printf("RecordLogin: failed to award monthly streak points for %s: %v", userID, err)
		}
	}
}

// GetStreak reads the login streak, returning a zero-value record when the
// user has never logged in.
func (s *StreakService) GetStreak(ctx context.Context, userID string) (*streak.Data, error) {
	data, err := s.store.Get(ctx, streakPath(userID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return &streak.Data{StreakHistory: []time.Time{}}, nil
		}
		return nil, fmt.Errorf("failed to read login streak: %w", err)
	}
	return streak.FromDoc(data), nil
}

func streakFields(d *streak.Data) map[string]any {
	history := make([]any, 0, len(d.StreakHistory))
	for _, day := range d.StreakHistory {
		history = append(history, day)
	}
	return map[string]any{
		"currentStreak": d.CurrentStreak,
		"longestStreak": d.LongestStreak,
		"lastLoginDate": d.LastLoginDate,
		"streakHistory": history,
	}
}
