package user

import (
	"time"

	"alumniConnectAPI/internal/docstore"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleAlumni  Role = "alumni"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type MentorshipStatus string

const (
	MentorshipAvailable MentorshipStatus = "available"
	MentorshipSeeking   MentorshipStatus = "seeking"
	MentorshipNone      MentorshipStatus = "none"
)

// Gamification is the summary embedded in the user document. The
// authoritative ledger lives in the gamification/stats subdocument; these
// fields are the denormalized projection kept for querying.
type Gamification struct {
	Points      int      `json:"points"`
	Level       int      `json:"level"`
	CurrentTier string   `json:"currentTier"`
	Badges      []string `json:"badges"`
}

type Profile struct {
	UID              string           `json:"uid"`
	DisplayName      string           `json:"displayName"`
	Email            string           `json:"email"`
	PhotoURL         string           `json:"photoURL"`
	Role             Role             `json:"role"`
	Headline         string           `json:"headline"`
	Bio              string           `json:"bio"`
	Company          string           `json:"company"`
	Location         string           `json:"location"`
	Industry         string           `json:"industry"`
	GraduationYear   int              `json:"graduationYear"`
	Skills           []string         `json:"skills"`
	Interests        []string         `json:"interests"`
	MentorshipStatus MentorshipStatus `json:"mentorshipStatus"`
	Points           int              `json:"points"`
	TotalDonations   float64          `json:"totalDonations"`
	Gamification     Gamification     `json:"gamification"`
	LastActive       time.Time        `json:"lastActive"`
	CreatedAt        time.Time        `json:"createdAt"`
}

// FromDoc builds a Profile from a raw user document, defaulting every
// missing field rather than failing.
func FromDoc(uid string, data map[string]any) *Profile {
	p := &Profile{
		UID:              uid,
		DisplayName:      docstore.Str(data, "displayName"),
		Email:            docstore.Str(data, "email"),
		PhotoURL:         docstore.Str(data, "photoURL"),
		Role:             Role(docstore.Str(data, "role")),
		Headline:         docstore.Str(data, "headline"),
		Bio:              docstore.Str(data, "bio"),
		Company:          docstore.Str(data, "company"),
		Location:         docstore.Str(data, "location"),
		Industry:         docstore.Str(data, "industry"),
		GraduationYear:   docstore.Int(data, "graduationYear"),
		Skills:           docstore.Strings(data, "skills"),
		Interests:        docstore.Strings(data, "interests"),
		MentorshipStatus: MentorshipStatus(docstore.Str(data, "mentorshipStatus")),
		Points:           docstore.Int(data, "points"),
		TotalDonations:   docstore.Float(data, "totalDonations"),
		LastActive:       docstore.Time(data, "lastActive"),
		CreatedAt:        docstore.Time(data, "createdAt"),
	}
	if p.MentorshipStatus == "" {
		p.MentorshipStatus = MentorshipNone
	}
	if g := docstore.Map(data, "gamification"); g != nil {
		p.Gamification = Gamification{
			Points:      docstore.Int(g, "points"),
			Level:       docstore.Int(g, "level"),
			CurrentTier: docstore.Str(g, "currentTier"),
			Badges:      docstore.Strings(g, "badges"),
		}
	}
	return p
}
