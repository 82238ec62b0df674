package recommendation

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

// Recommendation is a derived, cacheable score for one event, regenerated on
// demand and overwritten wholesale; never patched incrementally.
type Recommendation struct {
	EventID     string    `json:"eventId"`
	Score       int       `json:"score"`
	Reasons     []string  `json:"reasons"`
	GeneratedAt time.Time `json:"generatedAt,omitempty"`
}

func FromDoc(id string, data map[string]any) *Recommendation {
	return &Recommendation{
		EventID:     id,
		Score:       docstore.Int(data, "score"),
		Reasons:     docstore.Strings(data, "reasons"),
		GeneratedAt: docstore.Time(data, "generatedAt"),
	}
}
