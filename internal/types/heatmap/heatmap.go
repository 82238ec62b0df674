package heatmap

// LocationData is a per-location rollup recomputed from the user snapshot on
// every request; nothing is maintained incrementally.
type LocationData struct {
	City           string   `json:"city"`
	Country        string   `json:"country"`
	AlumniCount    int      `json:"alumniCount"`
	AvgEngagement  float64  `json:"avgEngagement"`
	AvgSuccess     float64  `json:"avgSuccessScore"`
	TopIndustries  []string `json:"topIndustries"`
	TotalDonations float64  `json:"totalDonations"`
}
