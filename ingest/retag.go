package ingest

import (
	"encoding/json"
	"strings"
)

// retagTrigger is one (section, rule) pair from the fixed set spec.md
// §4.12's retag decider checks.
type retagTrigger struct {
	section, rule string
}

// retagTriggerSet is the fixed set of rules whose "Failed" status alone
// recommends a full re-tag; a Tab-order failure alone does not appear
// here; see spec.md §4.12.
var retagTriggerSet = []retagTrigger{
	{"Document", "TaggedPDF"},
	{"PageContent", "TaggedContent"},
	{"PageContent", "TaggedAnnotations"},
	{"PageContent", "TaggedMultimedia"},
	{"Forms", "TaggedFormFields"},
	{"Headings", "AppropriateNesting"},
}

type checkerRule struct {
	Rule   string `json:"Rule"`
	Status string `json:"Status"`
}

type checkerReport struct {
	DetailedReport map[string][]checkerRule `json:"Detailed Report"`
}

func normalizeRuleKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// TryShouldRetag implements spec.md §4.12's retag decider: given a
// before-report JSON, it recommends a full re-tag if any "Failed" rule
// matches the fixed trigger set, case-insensitively and ignoring
// whitespace. triggers names each matched (section, rule) pair as
// "Section: Rule", in the fixed set's order, for diagnostics.
func TryShouldRetag(beforeReportJSON string) (shouldRetag bool, triggers []string) {
	var report checkerReport
	if err := json.Unmarshal([]byte(beforeReportJSON), &report); err != nil {
		return false, nil
	}

	failed := map[string]bool{} // normalized "section|rule" -> failed
	for section, rules := range report.DetailedReport {
		for _, r := range rules {
			if strings.EqualFold(strings.TrimSpace(r.Status), "Failed") {
				failed[normalizeRuleKey(section)+"|"+normalizeRuleKey(r.Rule)] = true
			}
		}
	}

	for _, t := range retagTriggerSet {
		key := normalizeRuleKey(t.section) + "|" + normalizeRuleKey(t.rule)
		if failed[key] {
			shouldRetag = true
			triggers = append(triggers, t.section+": "+t.rule)
		}
	}
	return shouldRetag, triggers
}
