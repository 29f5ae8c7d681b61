package nfe

import (
	"fmt"
	"strings"
)

// ValidationReport is the outcome of the cheap pre-parse structural check.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// requiredSections are the section names every usable invoice export
// carries. Checked as raw substrings, not by parsing.
var requiredSections = []string{"infNFe", "emit", "dest", "det"}

// Validate performs textual heuristic checks only, intended as a fast
// pre-check before the expensive Parse. It never fails; problems accumulate
// as error strings.
func Validate(xmlText string) ValidationReport {
	report := ValidationReport{Errors: []string{}}

	trimmed := strings.TrimSpace(xmlText)
	if trimmed == "" {
		report.Errors = append(report.Errors, "document is empty")
		return report
	}

	lower := strings.ToLower(trimmed)
	if !strings.Contains(lower, "nfe") {
		report.Errors = append(report.Errors, "no NFe invoice marker found")
	}
	for _, section := range requiredSections {
		if !strings.Contains(lower, strings.ToLower(section)) {
			report.Errors = append(report.Errors, fmt.Sprintf("missing required section %q", section))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
