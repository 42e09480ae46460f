package core

import (
	"errors"
	"testing"
)

func TestParseAnalysisRepair(t *testing.T) {
	// Truncated generations missing the final brace must parse after
	// brace-completion.
	raw := `{"possible_conditions": ["Common cold"], "explanation": ["viral"], "home_care_tips": ["rest"], "when_to_see_doctor": ["fever over 39C"], "disclaimer": "x"`
	out, err := parseAnalysis(raw)
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v, want repaired parse", err)
	}
	if len(out.PossibleConditions) != 1 || out.PossibleConditions[0] != "Common cold" {
		t.Errorf("PossibleConditions = %v", out.PossibleConditions)
	}
}

func TestParseAnalysisErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "   \n ", errEmptyOutput},
		{"empty conditions", `{"possible_conditions": [], "explanation": ["x"]}`, errEmptyConditions},
		{"missing conditions", `{"explanation": ["x"]}`, errEmptyConditions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseAnalysis(tt.raw)
			if !errors.Is(err, tt.want) {
				t.Errorf("parseAnalysis(%q) error = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}

	if _, err := parseAnalysis("the patient should rest {"); err == nil {
		t.Error("expected parse error for non-JSON output")
	}
}

func TestStringListNormalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"list stays list", `{"possible_conditions":["a","b"]}`, []string{"a", "b"}},
		{"bare string becomes list", `{"possible_conditions":"flu"}`, []string{"flu"}},
		{"number becomes empty", `{"possible_conditions":42}`, nil},
		{"object becomes empty", `{"possible_conditions":{"x":1}}`, nil},
		{"null becomes empty", `{"possible_conditions":null}`, nil},
		{"mixed list becomes empty", `{"possible_conditions":["a",1]}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := parseAnalysis(tt.raw)
			if len(out.PossibleConditions) != len(tt.want) {
				t.Fatalf("PossibleConditions = %v, want %v", out.PossibleConditions, tt.want)
			}
			for i := range tt.want {
				if out.PossibleConditions[i] != tt.want[i] {
					t.Errorf("element %d = %q, want %q", i, out.PossibleConditions[i], tt.want[i])
				}
			}
		})
	}
}

func TestReportDefaultsDisclaimer(t *testing.T) {
	out, err := parseAnalysis(`{"possible_conditions":["flu"]}`)
	if err != nil {
		t.Fatalf("parseAnalysis() error = %v", err)
	}
	report := out.report()
	if report.Disclaimer != Disclaimer {
		t.Errorf("Disclaimer = %q, want default", report.Disclaimer)
	}
	// Every list field must be a list, never nil.
	if report.Explanation == nil || report.HomeCareTips == nil || report.WhenToSeeDoctor == nil {
		t.Error("list fields must be non-nil")
	}
}
