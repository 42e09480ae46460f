package core

import (
	"strings"

	"carenova/pkg"
)

// metabolicKeywords decide which fallback report applies when the grounded
// generation path fails.  A generic "rest and hydrate" answer would be
// misleading for symptoms that strongly suggest a blood-sugar problem.
var metabolicKeywords = []string{
	"urinate", "thirst", "tired", "fatigue", "hunger", "appetite", "weight",
}

// Fallback kinds, used for instrumentation.
const (
	FallbackMetabolic = "metabolic"
	FallbackGeneric   = "generic"
)

// fallbackReport returns the keyword-aware safe report substituted whenever
// the model or retrieval path cannot produce a valid one, plus the kind of
// fallback chosen.
func fallbackReport(query string) (pkg.AnalysisReport, string) {
	lower := strings.ToLower(query)
	for _, k := range metabolicKeywords {
		if strings.Contains(lower, k) {
			return metabolicFallback(), FallbackMetabolic
		}
	}
	return genericFallback(), FallbackGeneric
}

func metabolicFallback() pkg.AnalysisReport {
	return pkg.AnalysisReport{
		PossibleConditions: []string{
			"Metabolic condition (possible blood sugar imbalance)",
		},
		Explanation: []string{
			"Frequent urination, increased thirst, fatigue, and appetite or weight changes may be associated with blood sugar regulation issues",
		},
		HomeCareTips: []string{
			"Maintain hydration",
			"Avoid excessive sugary foods",
			"Follow a balanced diet",
			"Monitor symptoms",
		},
		WhenToSeeDoctor: []string{
			"If symptoms persist beyond a few days",
			"For blood sugar testing or medical evaluation",
		},
		Disclaimer: Disclaimer,
	}
}

func genericFallback() pkg.AnalysisReport {
	return pkg.AnalysisReport{
		PossibleConditions: []string{
			"General health condition",
		},
		Explanation: []string{
			"Based on the symptoms, a specific condition could not be confidently identified",
		},
		HomeCareTips: []string{
			"Rest",
			"Stay hydrated",
			"Monitor symptoms closely",
		},
		WhenToSeeDoctor: []string{
			"If symptoms persist or worsen",
		},
		Disclaimer: Disclaimer,
	}
}
