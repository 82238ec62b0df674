package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/job"
)

var ErrNotJobPoster = errors.New("user did not post this job")

type JobService struct {
	store docstore.Store
	now   func() time.Time
}

func NewJobService(store docstore.Store) *JobService {
	return &JobService{store: store, now: time.Now}
}

// CreateJob stores a posting and returns its ID.
func (s *JobService) CreateJob(ctx context.Context, j *job.Job) (string, error) {
	if j.Title == "" || j.Company == "" {
		return "", fmt.Errorf("job requires a title and a company")
	}

	id, err := s.store.Add(ctx, "jobs", map[string]any{
		"title":        j.Title,
		"company":      j.Company,
		"location":     j.Location,
		"description":  j.Description,
		"requirements": j.Requirements,
		"postedBy":     j.PostedBy,
		"postedByName": j.PostedByName,
		"jobType":      j.JobType,
		"applyUrl":     j.ApplyURL,
		"createdAt":    s.now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

func (s *JobService) GetJob(ctx context.Context, jobID string) (*job.Job, error) {
	data, err := s.store.Get(ctx, "jobs/"+jobID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("job %s not found: %w", jobID, err)
		}
		return nil, fmt.Errorf("failed to read job: %w", err)
	}
	return job.FromDoc(jobID, data), nil
}

// ListJobs returns all postings, newest first.
func (s *JobService) ListJobs(ctx context.Context) ([]*job.Job, error) {
	docs, err := s.store.Query(ctx, "jobs", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*job.Job, 0, len(docs))
	for _, doc := range docs {
		jobs = append(jobs, job.FromDoc(doc.ID, doc.Data))
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})
	return jobs, nil
}

// DeleteJob removes a posting. Only the poster may delete it.
func (s *JobService) DeleteJob(ctx context.Context, jobID, userID string) error {
	j, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if j.PostedBy != userID {
		return ErrNotJobPoster
	}
	return s.store.Delete(ctx, "jobs/"+jobID)
}
