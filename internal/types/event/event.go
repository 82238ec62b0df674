package event

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

const (
	TypeVirtual  = "virtual"
	TypePhysical = "physical"
)

// TargetAudience narrows an event to industries and graduation batches; an
// empty value targets everyone.
type TargetAudience struct {
	Departments []string `json:"departments,omitempty"`
	Batches     []int    `json:"batches,omitempty"`
}

type Event struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Date           time.Time      `json:"date"`
	Location       string         `json:"location,omitempty"`
	Type           string         `json:"type,omitempty"`
	Category       string         `json:"category,omitempty"`
	Organizer      string         `json:"organizer,omitempty"`
	OrganizerName  string         `json:"organizerName,omitempty"`
	Attendees      []string       `json:"attendees,omitempty"`
	Capacity       int            `json:"capacity,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	TargetAudience TargetAudience `json:"targetAudience,omitempty"`
	CreatedAt      time.Time      `json:"createdAt,omitempty"`
}

func FromDoc(id string, data map[string]any) *Event {
	e := &Event{
		ID:            id,
		Title:         docstore.Str(data, "title"),
		Description:   docstore.Str(data, "description"),
		Date:          docstore.Time(data, "date"),
		Location:      docstore.Str(data, "location"),
		Type:          docstore.Str(data, "type"),
		Category:      docstore.Str(data, "category"),
		Organizer:     docstore.Str(data, "organizer"),
		OrganizerName: docstore.Str(data, "organizerName"),
		Attendees:     docstore.Strings(data, "attendees"),
		Capacity:      docstore.Int(data, "capacity"),
		Tags:          docstore.Strings(data, "tags"),
		CreatedAt:     docstore.Time(data, "createdAt"),
	}
	// Older event documents carry startTime instead of date.
	if e.Date.IsZero() {
		e.Date = docstore.Time(data, "startTime")
	}
	if ta := docstore.Map(data, "targetAudience"); ta != nil {
		e.TargetAudience = TargetAudience{
			Departments: docstore.Strings(ta, "departments"),
			Batches:     docstore.Ints(ta, "batches"),
		}
	}
	return e
}

func (e *Event) IsVirtual() bool {
	return e.Type == TypeVirtual
}

func (e *Event) HasAttendee(userID string) bool {
	for _, uid := range e.Attendees {
		if uid == userID {
			return true
		}
	}
	return false
}

// Interaction is the per-user-per-event history record at
// userEventInteractions/{uid}/interactions/{eventId}.
type Interaction struct {
	EventID     string    `json:"eventId"`
	EventType   string    `json:"eventType,omitempty"`
	Viewed      bool      `json:"viewed,omitempty"`
	Interested  bool      `json:"interested,omitempty"`
	RSVPed      bool      `json:"rsvped,omitempty"`
	Attended    bool      `json:"attended,omitempty"`
	Rating      int       `json:"rating,omitempty"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func InteractionFromDoc(id string, data map[string]any) *Interaction {
	return &Interaction{
		EventID:     id,
		EventType:   docstore.Str(data, "eventType"),
		Viewed:      docstore.Bool(data, "viewed"),
		Interested:  docstore.Bool(data, "interested"),
		RSVPed:      docstore.Bool(data, "rsvped"),
		Attended:    docstore.Bool(data, "attended"),
		Rating:      docstore.Int(data, "rating"),
		LastUpdated: docstore.Time(data, "lastUpdated"),
	}
}
