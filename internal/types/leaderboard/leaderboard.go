package leaderboard

type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Points      int    `json:"points"`
	Level       int    `json:"level"`
	CurrentTier string `json:"currentTier,omitempty"`
}
