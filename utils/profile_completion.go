package utils

import "math"

// profileFields is the fixed field set the completeness score is computed
// over. The quest system's narrower bio/skills/industry check is a separate
// computation and must stay separate.
var profileFields = []string{
	"displayName",
	"email",
	"graduationYear",
	"role",
	"company",
	"headline",
	"location",
	"bio",
	"photoURL",
}

// ProfileCompletion returns the 0-100 completeness percentage of a raw user
// document. A field counts when it is present and not an empty string;
// numeric fields count when non-zero.
func ProfileCompletion(userData map[string]any) int {
	if userData == nil {
		return 0
	}

	completed := 0
	for _, field := range profileFields {
		switch v := userData[field].(type) {
		case string:
			if v != "" {
				completed++
			}
		case int:
			if v != 0 {
				completed++
			}
		case int64:
			if v != 0 {
				completed++
			}
		case float64:
			if v != 0 {
				completed++
			}
		case nil:
		default:
			completed++
		}
	}

	return int(math.Round(float64(completed) / float64(len(profileFields)) * 100))
}
