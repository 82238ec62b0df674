package gamification

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

// Stats is the authoritative per-user gamification ledger, stored at
// users/{uid}/gamification/stats.
type Stats struct {
	TotalPoints int       `json:"totalPoints"`
	Level       int       `json:"level"`
	CurrentTier string    `json:"currentTier"`
	Badges      []string  `json:"badges"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func StatsFromDoc(data map[string]any) *Stats {
	s := &Stats{
		TotalPoints: docstore.Int(data, "totalPoints"),
		Level:       docstore.Int(data, "level"),
		CurrentTier: docstore.Str(data, "currentTier"),
		Badges:      docstore.Strings(data, "badges"),
		LastUpdated: docstore.Time(data, "lastUpdated"),
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.CurrentTier == "" {
		s.CurrentTier = DefaultLevels[0].Name
	}
	return s
}

func (s *Stats) HasBadge(badgeID string) bool {
	for _, id := range s.Badges {
		if id == badgeID {
			return true
		}
	}
	return false
}

// Transaction is an immutable points-history record; written once under
// users/{uid}/pointsHistory, never mutated.
type Transaction struct {
	Action      string    `json:"action"`
	Points      int       `json:"points"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

func TransactionFromDoc(data map[string]any) *Transaction {
	return &Transaction{
		Action:      docstore.Str(data, "action"),
		Points:      docstore.Int(data, "points"),
		Description: docstore.Str(data, "description"),
		Timestamp:   docstore.Time(data, "timestamp"),
	}
}

// Level maps a contiguous points range to a tier. MaxPoints < 0 marks the
// open-ended top range.
type Level struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
	MaxPoints int    `json:"maxPoints"`
}

var DefaultLevels = []Level{
	{Level: 1, Name: "Bronze", MinPoints: 0, MaxPoints: 499},
	{Level: 2, Name: "Silver", MinPoints: 500, MaxPoints: 1499},
	{Level: 3, Name: "Gold", MinPoints: 1500, MaxPoints: 2999},
	{Level: 4, Name: "Platinum", MinPoints: 3000, MaxPoints: 5999},
	{Level: 5, Name: "Diamond", MinPoints: 6000, MaxPoints: -1},
}

// LevelForPoints resolves a point total against a level table.
func LevelForPoints(levels []Level, totalPoints int) Level {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	for _, l := range levels {
		if totalPoints >= l.MinPoints && (l.MaxPoints < 0 || totalPoints <= l.MaxPoints) {
			return l
		}
	}
	return levels[0]
}

// LevelsFromConfig decodes the optional "levels" array of the pointsConfig
// document. An empty or malformed array falls back to DefaultLevels.
func LevelsFromConfig(raw []any) []Level {
	var levels []Level
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		l := Level{
			Level:     docstore.Int(m, "level"),
			Name:      docstore.Str(m, "name"),
			MinPoints: docstore.Int(m, "minPoints"),
			MaxPoints: docstore.Int(m, "maxPoints"),
		}
		if _, present := m["maxPoints"]; !present {
			l.MaxPoints = -1
		}
		if l.Level > 0 && l.Name != "" {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		return DefaultLevels
	}
	return levels
}

// DefaultActionPoints mirrors the fallback used when the pointsConfig
// document is absent. Unknown actions award UnknownActionPoints.
var DefaultActionPoints = map[string]int{
	"completeProfile":            100,
	"connectWithAlumni":          50,
	"attendEvent":                75,
	"dailyLogin":                 10,
	"weeklyStreak":               50,
	"monthlyStreak":              200,
	"challengeCompleted":         100,
	"challengeReward":            50,
	"createShadowingOpportunity": 150,
	"bookShadowing":              50,
	"completeShadowing":          100,
	"attendShadowing":            100,
	"provideFeedback":            30,
	"badgeEarned":                25,
}

const UnknownActionPoints = 10
