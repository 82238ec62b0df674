package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/connection"
	"alumniConnectAPI/internal/types/job"
	"alumniConnectAPI/internal/types/user"
)

// batchAnalysisTimeout bounds a whole-board analysis run.
const batchAnalysisTimeout = 10 * time.Second

// commonSkills backs requirement extraction for job posts that carry a free
// text description but no explicit requirements list.
var commonSkills = []string{
	"Python", "Java", "JavaScript", "TypeScript", "Go", "C++", "SQL",
	"React", "Node.js", "AWS", "Docker", "Kubernetes", "Machine Learning",
	"Data Analysis", "Communication", "Leadership", "Project Management",
}

type SkillGapService struct {
	store docstore.Store
}

func NewSkillGapService(store docstore.Store) *SkillGapService {
	return &SkillGapService{store: store}
}

// SkillGap is the referral readiness report for one user against one job.
type SkillGap struct {
	JobID               string   `json:"jobId,omitempty"`
	JobTitle            string   `json:"jobTitle"`
	Company             string   `json:"company,omitempty"`
	MatchingSkills      []string `json:"matchingSkills"`
	MissingSkills       []string `json:"missingSkills"`
	SkillMatchPercent   int      `json:"skillMatchPercent"`
	NetworkBonus        int      `json:"networkBonus"`
	ReferralProbability int      `json:"referralProbability"`
	Recommendation      string   `json:"recommendation"`
}

// AnalyzeSkills compares a skill set to a job's requirements and folds in a
// network bonus. Same inputs always produce the same report.
func AnalyzeSkills(userSkills, requiredSkills []string, connectionCount int) *SkillGap {
	have := make(map[string]bool, len(userSkills))
	for _, skill := range userSkills {
		have[strings.ToLower(strings.TrimSpace(skill))] = true
	}

	matching := []string{}
	missing := []string{}
	for _, skill := range requiredSkills {
		if have[strings.ToLower(strings.TrimSpace(skill))] {
			matching = append(matching, skill)
		} else {
			missing = append(missing, skill)
		}
	}

	percent := 50
	if len(requiredSkills) > 0 {
		percent = int(math.Round(100 * float64(len(matching)) / float64(len(requiredSkills))))
	}

	bonus := connectionCount * 2
	if bonus > 30 {
		bonus = 30
	}

	probability := int(math.Round(float64(percent)*0.7)) + bonus
	if probability > 95 {
		probability = 95
	}

	recommendation := "Consider Upskilling"
	switch {
	case probability > 70:
		recommendation = "Strong Match"
	case probability > 50:
		recommendation = "Good Potential"
	}

	return &SkillGap{
		MatchingSkills:      matching,
		MissingSkills:       missing,
		SkillMatchPercent:   percent,
		NetworkBonus:        bonus,
		ReferralProbability: probability,
		Recommendation:      recommendation,
	}
}

// ExtractRequirements scans a job description for known skill keywords. Used
// when a post has no explicit requirements list.
func ExtractRequirements(description string) []string {
	lower := strings.ToLower(description)
	var found []string
	for _, skill := range commonSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			found = append(found, skill)
		}
	}
	return found
}

// neutralAnalysis is the fallback report for jobs the batch run could not
// score before its deadline.
func neutralAnalysis(j *job.Job) *SkillGap {
	return &SkillGap{
		JobID:               j.ID,
		JobTitle:            j.Title,
		Company:             j.Company,
		MatchingSkills:      []string{},
		MissingSkills:       []string{},
		SkillMatchPercent:   50,
		NetworkBonus:        0,
		ReferralProbability: 50,
		Recommendation:      "Good Potential",
	}
}

func requirementsOf(j *job.Job) []string {
	if len(j.Requirements) > 0 {
		return j.Requirements
	}
	return ExtractRequirements(j.Description)
}

// AnalyzeJob runs the gap analysis for a user against one stored job.
func (s *SkillGapService) AnalyzeJob(ctx context.Context, userID, jobID string) (*SkillGap, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Get(ctx, "jobs/"+jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to read job %s: %w", jobID, err)
	}
	j := job.FromDoc(jobID, data)

	gap := AnalyzeSkills(profile.Skills, requirementsOf(j), s.connectionCount(ctx, userID))
	gap.JobID = j.ID
	gap.JobTitle = j.Title
	gap.Company = j.Company
	return gap, nil
}

// AnalyzeAllJobs scores the user against the whole job board under a hard
// deadline; a slow store yields a partial result rather than a hang.
func (s *SkillGapService) AnalyzeAllJobs(ctx context.Context, userID string) ([]*SkillGap, error) {
	ctx, cancel := context.WithTimeout(ctx, batchAnalysisTimeout)
	defer cancel()

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	connections := s.connectionCount(ctx, userID)

	docs, err := s.store.Query(ctx, "jobs", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	reports := make([]*SkillGap, 0, len(docs))
	expired := 0
	for _, doc := range docs {
		j := job.FromDoc(doc.ID, doc.Data)
		if ctx.Err() != nil {
			// Out of budget: every remaining job gets the neutral report.
			reports = append(reports, neutralAnalysis(j))
			expired++
			continue
		}
		gap := AnalyzeSkills(profile.Skills, requirementsOf(j), connections)
		gap.JobID = j.ID
		gap.JobTitle = j.Title
		gap.Company = j.Company
		reports = append(reports, gap)
	}
	if expired > 0 {
		log.Printf("AnalyzeAllJobs: deadline hit, %d of %d jobs defaulted", expired, len(docs))
	}
	return reports, nil
}

func (s *SkillGapService) profile(ctx context.Context, userID string) (*user.Profile, error) {
	data, err := s.store.Get(ctx, "users/"+userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user %s: %w", userID, err)
	}
	return user.FromDoc(userID, data), nil
}

func (s *SkillGapService) connectionCount(ctx context.Context, userID string) int {
	count := 0
	for _, field := range []string{"requesterId", "recipientId"} {
		docs, err := s.store.Query(ctx, "connections", []docstore.Filter{
			docstore.Where(field, "==", userID),
			docstore.Where("status", "==", connection.StatusAccepted),
		})
		if err != nil {
			log.Printf("connectionCount: failed to count connections for %s: %v", userID, err)
			continue
		}
		count += len(docs)
	}
	return count
}
