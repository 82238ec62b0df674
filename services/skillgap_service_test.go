package services

import (
	"context"
	"reflect"
	"testing"

	"alumniConnectAPI/internal/docstore"
)

func TestAnalyzeSkillsScenario(t *testing.T) {
	gap := AnalyzeSkills(
		[]string{"Go", "SQL", "Docker"},
		[]string{"go", "sql", "Kubernetes"},
		5,
	)

	if gap.SkillMatchPercent != 67 {
		t.Errorf("Expected 67%% match, got %d", gap.SkillMatchPercent)
	}
	if gap.NetworkBonus != 10 {
		t.Errorf("Expected network bonus 10, got %d", gap.NetworkBonus)
	}
	// round(67*0.7)=47, +10 = 57
	if gap.ReferralProbability != 57 {
		t.Errorf("Expected referral probability 57, got %d", gap.ReferralProbability)
	}
	if gap.Recommendation != "Good Potential" {
		t.Errorf("Expected 'Good Potential', got %q", gap.Recommendation)
	}
	if !reflect.DeepEqual(gap.MissingSkills, []string{"Kubernetes"}) {
		t.Errorf("Expected missing [Kubernetes], got %v", gap.MissingSkills)
	}
}

func TestAnalyzeSkillsLabelFollowsProbability(t *testing.T) {
	// 67% match alone reads "Good Potential", but a strong network pushes
	// the referral probability to 77 and the label follows it.
	gap := AnalyzeSkills([]string{"React", "SQL"}, []string{"React", "Python", "SQL"}, 15)
	if gap.ReferralProbability != 77 {
		t.Fatalf("Expected referral probability 77, got %d", gap.ReferralProbability)
	}
	if gap.Recommendation != "Strong Match" {
		t.Errorf("Expected 'Strong Match' at probability 77, got %q", gap.Recommendation)
	}
}

func TestAnalyzeSkillsDeterministic(t *testing.T) {
	first := AnalyzeSkills([]string{"Python", "React"}, []string{"python", "react", "aws"}, 3)
	second := AnalyzeSkills([]string{"Python", "React"}, []string{"python", "react", "aws"}, 3)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Same inputs produced different reports: %+v vs %+v", first, second)
	}
}

func TestAnalyzeSkillsEmptyRequirements(t *testing.T) {
	gap := AnalyzeSkills([]string{"Go"}, nil, 0)
	if gap.SkillMatchPercent != 50 {
		t.Errorf("Expected neutral 50%% for empty requirements, got %d", gap.SkillMatchPercent)
	}
}

func TestAnalyzeSkillsBounds(t *testing.T) {
	// Full match plus a huge network must still cap at 95.
	gap := AnalyzeSkills([]string{"Go", "SQL"}, []string{"Go", "SQL"}, 100)
	if gap.NetworkBonus != 30 {
		t.Errorf("Expected network bonus capped at 30, got %d", gap.NetworkBonus)
	}
	if gap.ReferralProbability != 95 {
		t.Errorf("Expected referral probability capped at 95, got %d", gap.ReferralProbability)
	}
	if gap.Recommendation != "Strong Match" {
		t.Errorf("Expected 'Strong Match', got %q", gap.Recommendation)
	}

	zero := AnalyzeSkills(nil, []string{"Go"}, 0)
	if zero.SkillMatchPercent != 0 || zero.ReferralProbability != 0 {
		t.Errorf("Expected zeros for no overlap and no network, got %+v", zero)
	}
}

func TestExtractRequirements(t *testing.T) {
	got := ExtractRequirements("Seeking a TypeScript developer comfortable with React, Docker and AWS.")
	want := []string{"TypeScript", "React", "AWS", "Docker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	if got := ExtractRequirements("No tooling named here."); got != nil {
		t.Errorf("Expected no keywords, got %v", got)
	}
}

func TestAnalyzeJobExtractsFromDescription(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "users/u1", map[string]any{"skills": []string{"Docker"}}, false)
	store.Set(ctx, "jobs/j1", map[string]any{
		"title":       "Platform Engineer",
		"company":     "Acme",
		"description": "We run everything on Docker and Kubernetes.",
	}, false)

	svc := NewSkillGapService(store)
	gap, err := svc.AnalyzeJob(ctx, "u1", "j1")
	if err != nil {
		t.Fatalf("AnalyzeJob failed: %v", err)
	}
	if gap.SkillMatchPercent != 50 {
		t.Errorf("Expected 50%% against extracted [Docker Kubernetes], got %d", gap.SkillMatchPercent)
	}
	if !reflect.DeepEqual(gap.MissingSkills, []string{"Kubernetes"}) {
		t.Errorf("Expected missing [Kubernetes], got %v", gap.MissingSkills)
	}
}

func TestAnalyzeAllJobs(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()

	store.Set(ctx, "users/u1", map[string]any{
		"displayName": "Dana",
		"skills":      []string{"Go", "SQL"},
	}, false)
	store.Add(ctx, "jobs", map[string]any{
		"title":        "Backend Engineer",
		"company":      "Acme",
		"requirements": []string{"Go", "Kubernetes"},
	})
	store.Add(ctx, "jobs", map[string]any{
		"title":        "Data Analyst",
		"company":      "Initech",
		"requirements": []string{"SQL", "Python"},
	})

	svc := NewSkillGapService(store)
	reports, err := svc.AnalyzeAllJobs(ctx, "u1")
	if err != nil {
		t.Fatalf("AnalyzeAllJobs failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("Expected 2 reports, got %d", len(reports))
	}
	for _, r := range reports {
		if r.SkillMatchPercent != 50 {
			t.Errorf("Job %s: expected 50%%, got %d", r.JobTitle, r.SkillMatchPercent)
		}
	}
}
