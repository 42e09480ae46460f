package core

import (
	"strings"

	"carenova/pkg"
)

// Keyword tiers for severity classification.  Tiers are checked in strict
// precedence order: a text containing both severe and mild keywords is
// Severe.  Matching is case-insensitive substring search.
var (
	severeKeywords = []string{
		"breathing difficulty",
		"shortness of breath",
		"chest pain",
		"confusion",
		"seizure",
		"unconscious",
		"vomiting blood",
	}
	moderateKeywords = []string{
		"high fever",
		"persistent vomiting",
		"vomiting",
		"loose motions",
		"severe weakness",
	}
)

// Vocabulary of symptom-relevance keywords for confidence scoring.  Each
// keyword counts at most once regardless of repetition.
var confidenceKeywords = []string{
	"fever", "cough", "tired", "weak", "thirst", "urinate", "hunger", "weight",
}

const (
	confidenceBase        = 60
	confidencePerKeyword  = 5
	confidenceSevereBonus = 10
	confidenceCap         = 95
)

// ClassifySeverity assigns a severity tier to the symptom text.  The first
// matching tier wins.
func ClassifySeverity(text string) pkg.Severity {
	lower := strings.ToLower(text)
	for _, k := range severeKeywords {
		if strings.Contains(lower, k) {
			return pkg.SeveritySevere
		}
	}
	for _, k := range moderateKeywords {
		if strings.Contains(lower, k) {
			return pkg.SeverityModerate
		}
	}
	return pkg.SeverityMild
}

// ScoreConfidence derives a bounded confidence score from the symptom text
// and its severity.  Deterministic, no external calls.  The cap stays below
// 100 to signal inherent uncertainty.
func ScoreConfidence(text string, severity pkg.Severity) int {
	score := confidenceBase
	lower := strings.ToLower(text)
	for _, k := range confidenceKeywords {
		if strings.Contains(lower, k) {
			score += confidencePerKeyword
		}
	}
	if severity == pkg.SeveritySevere {
		score += confidenceSevereBonus
	}
	if score > confidenceCap {
		score = confidenceCap
	}
	return score
}
