package badge

import "alumniConnectAPI/internal/docstore"

// Badge is a static catalog entry from the badges collection. Criteria maps
// stat names (profileCompletion, connections, eventsAttended, donations,
// totalPoints) to minimum thresholds; every criterion must be met to unlock.
type Badge struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Category    string         `json:"category"`
	Points      int            `json:"points"`
	Rarity      string         `json:"rarity"`
	Criteria    map[string]int `json:"criteria"`
}

func FromDoc(id string, data map[string]any) *Badge {
	b := &Badge{
		ID:          id,
		Name:        docstore.Str(data, "name"),
		Description: docstore.Str(data, "description"),
		Icon:        docstore.Str(data, "icon"),
		Category:    docstore.Str(data, "category"),
		Points:      docstore.Int(data, "points"),
		Rarity:      docstore.Str(data, "rarity"),
	}
	if raw := docstore.Map(data, "criteria"); raw != nil {
		b.Criteria = make(map[string]int, len(raw))
		for key := range raw {
			b.Criteria[key] = docstore.Int(raw, key)
		}
	}
	return b
}
