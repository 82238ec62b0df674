package shadowing

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

// Opportunity is a job-shadowing offer with a bounded number of slots.
type Opportunity struct {
	ID             string      `json:"id"`
	AlumniID       string      `json:"alumniId"`
	Company        string      `json:"company"`
	Position       string      `json:"position"`
	Industry       string      `json:"industry"`
	Description    string      `json:"description"`
	AvailableDates []time.Time `json:"availableDates,omitempty"`
	MaxSlots       int         `json:"maxSlots"`
	BookedSlots    int         `json:"bookedSlots"`
	Requirements   []string    `json:"requirements,omitempty"`
	City           string      `json:"city,omitempty"`
	Address        string      `json:"address,omitempty"`
	IsVirtual      bool        `json:"isVirtual"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func OpportunityFromDoc(id string, data map[string]any) *Opportunity {
	o := &Opportunity{
		ID:             id,
		AlumniID:       docstore.Str(data, "alumniId"),
		Company:        docstore.Str(data, "company"),
		Position:       docstore.Str(data, "position"),
		Industry:       docstore.Str(data, "industry"),
		Description:    docstore.Str(data, "description"),
		AvailableDates: docstore.Times(data, "availableDates"),
		MaxSlots:       docstore.Int(data, "maxSlots"),
		BookedSlots:    docstore.Int(data, "bookedSlots"),
		Requirements:   docstore.Strings(data, "requirements"),
		IsVirtual:      docstore.Bool(data, "isVirtual"),
		CreatedAt:      docstore.Time(data, "createdAt"),
	}
	if loc := docstore.Map(data, "location"); loc != nil {
		o.City = docstore.Str(loc, "city")
		o.Address = docstore.Str(loc, "address")
	}
	return o
}

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Feedback struct {
	StudentRating int    `json:"studentRating,omitempty"`
	StudentNote   string `json:"studentComment,omitempty"`
	AlumniRating  int    `json:"alumniRating,omitempty"`
	AlumniNote    string `json:"alumniComment,omitempty"`
}

type Booking struct {
	ID            string    `json:"id"`
	OpportunityID string    `json:"opportunityId"`
	AlumniID      string    `json:"alumniId"`
	StudentID     string    `json:"studentId"`
	SelectedDate  time.Time `json:"selectedDate"`
	Status        string    `json:"status"`
	Feedback      Feedback  `json:"feedback,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func BookingFromDoc(id string, data map[string]any) *Booking {
	b := &Booking{
		ID:            id,
		OpportunityID: docstore.Str(data, "opportunityId"),
		AlumniID:      docstore.Str(data, "alumniId"),
		StudentID:     docstore.Str(data, "studentId"),
		SelectedDate:  docstore.Time(data, "selectedDate"),
		Status:        docstore.Str(data, "status"),
		CreatedAt:     docstore.Time(data, "createdAt"),
		UpdatedAt:     docstore.Time(data, "updatedAt"),
	}
	if fb := docstore.Map(data, "feedback"); fb != nil {
		b.Feedback = Feedback{
			StudentRating: docstore.Int(fb, "studentRating"),
			StudentNote:   docstore.Str(fb, "studentComment"),
			AlumniRating:  docstore.Int(fb, "alumniRating"),
			AlumniNote:    docstore.Str(fb, "alumniComment"),
		}
	}
	return b
}
