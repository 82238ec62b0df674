package job

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements,omitempty"`
	PostedBy     string    `json:"postedBy"`
	PostedByName string    `json:"postedByName,omitempty"`
	JobType      string    `json:"jobType,omitempty"`
	ApplyURL     string    `json:"applyUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func FromDoc(id string, data map[string]any) *Job {
	return &Job{
		ID:           id,
		Title:        docstore.Str(data, "title"),
		Company:      docstore.Str(data, "company"),
		Location:     docstore.Str(data, "location"),
		Description:  docstore.Str(data, "description"),
		Requirements: docstore.Strings(data, "requirements"),
		PostedBy:     docstore.Str(data, "postedBy"),
		PostedByName: docstore.Str(data, "postedByName"),
		JobType:      docstore.Str(data, "jobType"),
		ApplyURL:     docstore.Str(data, "applyUrl"),
		CreatedAt:    docstore.Time(data, "createdAt"),
	}
}
