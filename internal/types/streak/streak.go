package streak

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

// Data is the per-user login streak record at users/{uid}/streaks/login.
// Invariant: LongestStreak >= CurrentStreak.
type Data struct {
	CurrentStreak int         `json:"currentStreak"`
	LongestStreak int         `json:"longestStreak"`
	LastLoginDate time.Time   `json:"lastLoginDate"`
	StreakHistory []time.Time `json:"streakHistory"`
}

func FromDoc(data map[string]any) *Data {
	return &Data{
		CurrentStreak: docstore.Int(data, "currentStreak"),
		LongestStreak: docstore.Int(data, "longestStreak"),
		LastLoginDate: docstore.Time(data, "lastLoginDate"),
		StreakHistory: docstore.Times(data, "streakHistory"),
	}
}
