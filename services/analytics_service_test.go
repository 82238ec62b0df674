package services

import (
	"context"
	"testing"
	"time"

	"alumniConnectAPI/internal/docstore"
)

func newTestAnalytics(store *docstore.MemoryStore, cap int) *AnalyticsService {
	svc := NewAnalyticsService(store, cap)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestPlatformAnalyticsBuckets(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/a", map[string]any{
		"industry":   "Tech",
		"location":   "Sofia, Bulgaria",
		"lastActive": testNow.Add(-2 * 24 * time.Hour),
	}, false)
	store.Set(ctx, "users/b", map[string]any{
		"industry":   "Tech",
		"location":   "Sofia, Bulgaria",
		"lastActive": testNow.Add(-60 * 24 * time.Hour),
	}, false)
	store.Set(ctx, "users/c", map[string]any{
		"industry": "Finance",
	}, false)

	svc := newTestAnalytics(store, 0)
	analytics, err := svc.GetPlatformAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetPlatformAnalytics failed: %v", err)
	}

	if analytics.TotalAlumni != 3 {
		t.Errorf("Expected 3 alumni, got %d", analytics.TotalAlumni)
	}
	if analytics.ActiveUsers != 1 {
		t.Errorf("Expected 1 active user in the 30-day window, got %d", analytics.ActiveUsers)
	}
	if analytics.TopIndustries[0].Name != "Tech" || analytics.TopIndustries[0].Count != 2 {
		t.Errorf("Expected Tech x2 on top, got %+v", analytics.TopIndustries)
	}

	cities := map[string]int{}
	for _, c := range analytics.TopCities {
		cities[c.Name] = c.Count
	}
	if cities["Sofia"] != 2 {
		t.Errorf("Expected Sofia x2, got %+v", analytics.TopCities)
	}
	// A blank location lands in the Unknown bucket instead of vanishing.
	if cities["Unknown"] != 1 {
		t.Errorf("Expected Unknown x1, got %+v", analytics.TopCities)
	}

	// 3 alumni * 0.05 * 500 / 1000 = 0.1 (rounded to one decimal).
	if analytics.DonationsProjection != 0.1 {
		t.Errorf("Expected donations projection 0.1, got %v", analytics.DonationsProjection)
	}
}

func TestAnalyticsRespectsFetchCap(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		store.Add(ctx, "users", map[string]any{"industry": "Tech"})
	}

	svc := newTestAnalytics(store, 4)
	analytics, err := svc.GetPlatformAnalytics(ctx)
	if err != nil {
		t.Fatalf("GetPlatformAnalytics failed: %v", err)
	}
	if analytics.TotalAlumni != 4 {
		t.Errorf("Expected sample capped at 4, got %d", analytics.TotalAlumni)
	}
}

func TestLocationHeatmapRollup(t *testing.T) {
	store := docstore.NewMemoryStore()
	ctx := context.Background()
	store.Set(ctx, "users/a", map[string]any{
		"location":       "Sofia, Bulgaria",
		"industry":       "Tech",
		"points":         100,
		"totalDonations": 50.0,
	}, false)
	store.Set(ctx, "users/b", map[string]any{
		"location":       "Sofia, Bulgaria",
		"industry":       "Tech",
		"points":         300,
		"totalDonations": 25.0,
	}, false)
	store.Set(ctx, "users/c", map[string]any{
		"location": "Varna, Bulgaria",
		"industry": "Finance",
	}, false)

	svc := newTestAnalytics(store, 0)
	heat, err := svc.GetLocationHeatmap(ctx)
	if err != nil {
		t.Fatalf("GetLocationHeatmap failed: %v", err)
	}
	if len(heat) != 2 {
		t.Fatalf("Expected 2 locations, got %d", len(heat))
	}

	sofia := heat[0]
	if sofia.City != "Sofia" || sofia.AlumniCount != 2 {
		t.Fatalf("Expected Sofia first with 2 alumni, got %+v", sofia)
	}
	if sofia.Country != "Bulgaria" {
		t.Errorf("Expected country Bulgaria, got %q", sofia.Country)
	}
	if sofia.AvgEngagement != 200 {
		t.Errorf("Expected avg engagement 200, got %v", sofia.AvgEngagement)
	}
	if sofia.TotalDonations != 75 {
		t.Errorf("Expected total donations 75, got %v", sofia.TotalDonations)
	}
	if len(sofia.TopIndustries) != 1 || sofia.TopIndustries[0] != "Tech" {
		t.Errorf("Expected top industry Tech, got %v", sofia.TopIndustries)
	}
}
