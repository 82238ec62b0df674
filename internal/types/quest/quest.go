package quest

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

type CriteriaType string

const (
	CriteriaProfileCompletion CriteriaType = "profile_completion"
	CriteriaConnectionCount   CriteriaType = "connection_count"
	CriteriaPageVisit         CriteriaType = "page_visit"
	CriteriaCustom            CriteriaType = "custom"
)

type Criteria struct {
	Type   CriteriaType `json:"type"`
	Target int          `json:"target,omitempty"`
	Field  string       `json:"field,omitempty"`
	PageID string       `json:"pageId,omitempty"`
}

// Quest is a statically defined recurring goal; the catalog is not stored in
// the database.
type Quest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Points      int      `json:"points"`
	Type        string   `json:"type"`
	Criteria    Criteria `json:"criteria"`
	Icon        string   `json:"icon"`
}

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// UserQuest is per-user progress at users/{uid}/quests/{questId}.
// Completion is one-way.
type UserQuest struct {
	QuestID     string    `json:"questId"`
	UserID      string    `json:"userId"`
	Status      string    `json:"status"`
	Progress    int       `json:"progress"`
	CompletedAt time.Time `json:"completedAt,omitempty"`
	Claimed     bool      `json:"claimed"`
}

func UserQuestFromDoc(data map[string]any) *UserQuest {
	uq := &UserQuest{
		QuestID:     docstore.Str(data, "questId"),
		UserID:      docstore.Str(data, "userId"),
		Status:      docstore.Str(data, "status"),
		Progress:    docstore.Int(data, "progress"),
		CompletedAt: docstore.Time(data, "completedAt"),
		Claimed:     docstore.Bool(data, "claimed"),
	}
	if uq.Status == "" {
		uq.Status = StatusActive
	}
	return uq
}

// Catalog is the full quest set served to every user.
var Catalog = []Quest{
	{
		ID:          "complete_profile",
		Title:       "Complete Your Profile",
		Description: "Add your bio, skills, and industry info.",
		Points:      50,
		Type:        "profile",
		Criteria:    Criteria{Type: CriteriaProfileCompletion},
		Icon:        "👤",
	},
	{
		ID:          "upload_avatar",
		Title:       "Show Your Face",
		Description: "Upload a profile picture.",
		Points:      25,
		Type:        "profile",
		Criteria:    Criteria{Type: CriteriaCustom, Field: "photoURL"},
		Icon:        "📸",
	},
	{
		ID:          "first_chat",
		Title:       "Break the Ice",
		Description: "Make your first connection with an alumni or student.",
		Points:      40,
		Type:        "social",
		Criteria:    Criteria{Type: CriteriaConnectionCount, Target: 1},
		Icon:        "💬",
	},
	{
		ID:          "active_networker",
		Title:       "Network Builder",
		Description: "Connect with 5 people.",
		Points:      100,
		Type:        "social",
		Criteria:    Criteria{Type: CriteriaConnectionCount, Target: 5},
		Icon:        "🤝",
	},
	{
		ID:          "explorer_analytics",
		Title:       "Data Enjoyer",
		Description: "Visit the Analytics page to see platform insights.",
		Points:      20,
		Type:        "exploration",
		Criteria:    Criteria{Type: CriteriaPageVisit, PageID: "analytics"},
		Icon:        "📊",
	},
	{
		ID:          "explorer_jobs",
		Title:       "Career Hunter",
		Description: "Visit the Jobs board.",
		Points:      20,
		Type:        "exploration",
		Criteria:    Criteria{Type: CriteriaPageVisit, PageID: "jobs"},
		Icon:        "💼",
	},
}

// ByID looks a quest up in the catalog.
func ByID(id string) (Quest, bool) {
	for _, q := range Catalog {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}
