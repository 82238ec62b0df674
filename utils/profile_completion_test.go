package utils

import "testing"

func TestProfileCompletionEmpty(t *testing.T) {
	if got := ProfileCompletion(map[string]any{}); got != 0 {
		t.Errorf("Expected 0 for an empty document, got %d", got)
	}
	if got := ProfileCompletion(nil); got != 0 {
		t.Errorf("Expected 0 for a nil document, got %d", got)
	}
}

func TestProfileCompletionFull(t *testing.T) {
	data := map[string]any{
		"displayName":    "Ana Petrova",
		"email":          "ana@example.com",
		"graduationYear": 2019,
		"role":           "alumni",
		"company":        "Acme",
		"headline":       "Software Engineer",
		"location":       "Sofia, Bulgaria",
		"bio":            "Building things.",
		"photoURL":       "https://example.com/ana.png",
	}
	if got := ProfileCompletion(data); got != 100 {
		t.Errorf("Expected 100 for a complete profile, got %d", got)
	}
}

func TestProfileCompletionPartialRounding(t *testing.T) {
	data := map[string]any{
		"displayName": "Ana",
		"email":       "ana@example.com",
	}
	// 2 of 9 fields rounds to 22.
	if got := ProfileCompletion(data); got != 22 {
		t.Errorf("Expected 22, got %d", got)
	}
}

func TestProfileCompletionIgnoresBlankAndZero(t *testing.T) {
	data := map[string]any{
		"displayName":    "",
		"graduationYear": 0,
		"bio":            "Something",
	}
	// 1 of 9 fields rounds to 11.
	if got := ProfileCompletion(data); got != 11 {
		t.Errorf("Expected 11, got %d", got)
	}
}
