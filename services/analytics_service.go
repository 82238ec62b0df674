package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"alumniConnectAPI/internal/docstore"
	"alumniConnectAPI/internal/types/heatmap"
	"alumniConnectAPI/internal/types/user"
	"alumniConnectAPI/utils"
)

// defaultAnalyticsFetchCap bounds how many user documents a single analytics
// request reads.
const defaultAnalyticsFetchCap = 50

type AnalyticsService struct {
	store    docstore.Store
	fetchCap int
	now      func() time.Time
}

func NewAnalyticsService(store docstore.Store, fetchCap int) *AnalyticsService {
	if fetchCap <= 0 {
		fetchCap = defaultAnalyticsFetchCap
	}
	return &AnalyticsService{store: store, fetchCap: fetchCap, now: time.Now}
}

// CountedItem is a labeled bucket in a distribution.
type CountedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PlatformAnalytics is the aggregate dashboard payload. Growth and weekly
// activity are static until a time-series source exists.
type PlatformAnalytics struct {
	TotalAlumni         int           `json:"totalAlumni"`
	ActiveUsers         int           `json:"activeUsers"`
	TopIndustries       []CountedItem `json:"topIndustries"`
	TopCities           []CountedItem `json:"topCities"`
	GraduationYears     []CountedItem `json:"graduationYears"`
	DonationsProjection float64       `json:"donationsProjectionMillions"`
	GrowthRatePercent   float64       `json:"growthRatePercent"`
	WeeklyActivity      []int         `json:"weeklyActivity"`
}

// GetPlatformAnalytics aggregates a bounded sample of the user base.
func (s *AnalyticsService) GetPlatformAnalytics(ctx context.Context) (*PlatformAnalytics, error) {
	profiles, err := s.sampleUsers(ctx)
	if err != nil {
		return nil, err
	}

	industries := map[string]int{}
	cities := map[string]int{}
	years := map[string]int{}
	active := 0
	cutoff := s.now().Add(-30 * 24 * time.Hour)

	for _, p := range profiles {
		if p.Industry != "" {
			industries[p.Industry]++
		}
		cities[cityOf(p.Location)]++
		if p.GraduationYear != 0 {
			years[fmt.Sprintf("%d", p.GraduationYear)]++
		}
		if p.LastActive.After(cutoff) {
			active++
		}
	}

	alumniCount := len(profiles)
	// Projection: 5% of alumni donating an average of 500, reported in millions.
	projection := round1(float64(alumniCount) * 0.05 * 500 / 1000)

	return &PlatformAnalytics{
		TotalAlumni:         alumniCount,
		ActiveUsers:         active,
		TopIndustries:       topCounted(industries, 10),
		TopCities:           topCounted(cities, 10),
		GraduationYears:     topCounted(years, 10),
		DonationsProjection: projection,
		GrowthRatePercent:   12.5,
		WeeklyActivity:      []int{65, 72, 68, 80, 85, 78, 90},
	}, nil
}

// GetLocationHeatmap rolls the sampled user base up by city.
func (s *AnalyticsService) GetLocationHeatmap(ctx context.Context) ([]*heatmap.LocationData, error) {
	profiles, err := s.sampleUsers(ctx)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		data       *heatmap.LocationData
		points     int
		completion int
		industries map[string]int
	}
	buckets := map[string]*bucket{}

	for _, p := range profiles {
		city := cityOf(p.Location)
		b, ok := buckets[city]
		if !ok {
			b = &bucket{
				data:       &heatmap.LocationData{City: city, Country: countryOf(p.Location)},
				industries: map[string]int{},
			}
			buckets[city] = b
		}
		b.data.AlumniCount++
		b.data.TotalDonations += p.TotalDonations
		b.points += p.Points
		b.completion += utils.ProfileCompletion(profileFields(p))
		if p.Industry != "" {
			b.industries[p.Industry]++
		}
	}

	out := make([]*heatmap.LocationData, 0, len(buckets))
	for _, b := range buckets {
		n := b.data.AlumniCount
		b.data.AvgEngagement = round1(float64(b.points) / float64(n))
		b.data.AvgSuccess = round1(float64(b.completion) / float64(n))
		for _, item := range topCounted(b.industries, 3) {
			b.data.TopIndustries = append(b.data.TopIndustries, item.Name)
		}
		out = append(out, b.data)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AlumniCount > out[j].AlumniCount
	})
	return out, nil
}

func (s *AnalyticsService) sampleUsers(ctx context.Context) ([]*user.Profile, error) {
	docs, err := s.store.Query(ctx, "users", nil, docstore.Limit(s.fetchCap))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users for analytics: %w", err)
	}
	profiles := make([]*user.Profile, 0, len(docs))
	for _, doc := range docs {
		profiles = append(profiles, user.FromDoc(doc.ID, doc.Data))
	}
	return profiles, nil
}

// cityOf extracts the city from a free-form location string. Blank locations
// land in the Unknown bucket instead of being dropped.
func cityOf(location string) string {
	city, _, _ := strings.Cut(location, ",")
	city = strings.TrimSpace(city)
	if city == "" {
		return "Unknown"
	}
	return city
}

func countryOf(location string) string {
	parts := strings.Split(location, ",")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}

func topCounted(counts map[string]int, limit int) []CountedItem {
	items := make([]CountedItem, 0, len(counts))
	for name, count := range counts {
		items = append(items, CountedItem{Name: name, Count: count})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// profileFields rebuilds the raw field map completion scoring expects.
func profileFields(p *user.Profile) map[string]any {
	return map[string]any{
		"displayName":    p.DisplayName,
		"email":          p.Email,
		"graduationYear": p.GraduationYear,
		"role":           string(p.Role),
		"company":        p.Company,
		"headline":       p.Headline,
		"location":       p.Location,
		"bio":            p.Bio,
		"photoURL":       p.PhotoURL,
	}
}
