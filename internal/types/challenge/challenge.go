package challenge

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

type Criteria struct {
	Action string `json:"action"`
	Target int    `json:"target"`
}

// Challenge is a stored, time-boxed goal.
type Challenge struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"` // daily, weekly, monthly, special
	Criteria    Criteria  `json:"criteria"`
	Reward      int       `json:"reward"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
}

func FromDoc(id string, data map[string]any) *Challenge {
	c := &Challenge{
		ID:          id,
		Title:       docstore.Str(data, "title"),
		Description: docstore.Str(data, "description"),
		Type:        docstore.Str(data, "type"),
		Reward:      docstore.Int(data, "reward"),
		StartDate:   docstore.Time(data, "startDate"),
		EndDate:     docstore.Time(data, "endDate"),
		Icon:        docstore.Str(data, "icon"),
		CreatedAt:   docstore.Time(data, "createdAt"),
	}
	if raw := docstore.Map(data, "criteria"); raw != nil {
		c.Criteria = Criteria{
			Action: docstore.Str(raw, "action"),
			Target: docstore.Int(raw, "target"),
		}
	}
	return c
}

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Progress is per-user-per-challenge state at users/{uid}/challenges/{id}.
// The active -> completed transition is one-way.
type Progress struct {
	ChallengeID string    `json:"challengeId"`
	Progress    int       `json:"progress"`
	Status      string    `json:"status"`
	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
}

func ProgressFromDoc(id string, data map[string]any) *Progress {
	p := &Progress{
		ChallengeID: id,
		Progress:    docstore.Int(data, "progress"),
		Status:      docstore.Str(data, "status"),
		StartedAt:   docstore.Time(data, "startedAt"),
		CompletedAt: docstore.Time(data, "completedAt"),
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	return p
}
