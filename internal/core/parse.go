package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"carenova/pkg"
)

// Parse-stage errors.  The analyzer branches on these to select a fallback;
// they never reach a caller of Analyze.
var (
	errEmptyOutput     = errors.New("empty model output")
	errEmptyConditions = errors.New("model returned no possible conditions")
)

// stringList normalizes a JSON value into a list of strings: a list stays a
// list, a bare string becomes a one-element list, anything else becomes an
// empty list.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = []string{single}
		return nil
	}
	*l = nil
	return nil
}

// rawAnalysis is the model-facing shape of an analysis response.  Severity
// and confidence are intentionally absent: the heuristic is authoritative
// for those, whatever the model attempted to produce.
type rawAnalysis struct {
	PossibleConditions stringList `json:"possible_conditions"`
	Explanation        stringList `json:"explanation"`
	HomeCareTips       stringList `json:"home_care_tips"`
	WhenToSeeDoctor    stringList `json:"when_to_see_doctor"`
	Disclaimer         string     `json:"disclaimer"`
}

// parseAnalysis runs the repair-and-validate pipeline over raw model text:
// trim, complete a missing trailing brace (small models often truncate the
// final bracket), strict parse, then require non-empty conditions.
func parseAnalysis(raw string) (rawAnalysis, error) {
	var out rawAnalysis

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, errEmptyOutput
	}
	if !strings.HasSuffix(raw, "}") {
		raw += "}"
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("invalid analysis JSON: %w", err)
	}
	if len(out.PossibleConditions) == 0 {
		return out, errEmptyConditions
	}
	return out, nil
}

// report converts the parsed model output into an AnalysisReport with every
// list field non-nil and the disclaimer guaranteed present.
func (r rawAnalysis) report() pkg.AnalysisReport {
	disclaimer := strings.TrimSpace(r.Disclaimer)
	if disclaimer == "" {
		disclaimer = Disclaimer
	}
	return pkg.AnalysisReport{
		PossibleConditions: orEmpty(r.PossibleConditions),
		Explanation:        orEmpty(r.Explanation),
		HomeCareTips:       orEmpty(r.HomeCareTips),
		WhenToSeeDoctor:    orEmpty(r.WhenToSeeDoctor),
		Disclaimer:         disclaimer,
	}
}

func orEmpty(l stringList) []string {
	if l == nil {
		return []string{}
	}
	return l
}
