package quality

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CheckKind discriminates between numeric-range and exact/enumerated
// characteristic checks.
type CheckKind string

const (
	KindRange CheckKind = "RANGE"
	KindExact CheckKind = "EXACT"
)

// Verdict statuses.
const (
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	ResultPass     = "PASS"
	ResultFail     = "FAIL"
)

// CharacteristicSpec is one acceptance criterion from the product
// definition. Names are controlled vocabulary, not free text.
type CharacteristicSpec struct {
	Name     string
	Unit     string
	Kind     CheckKind
	Min      decimal.Decimal
	Max      decimal.Decimal
	Expected string
}

// ReportedResult is one lab-reported characteristic value from a submitted
// certificate.
type ReportedResult struct {
	Name  string
	Value string
}

// CharacteristicResult is the computed verdict for a single characteristic.
type CharacteristicResult struct {
	Name          string `json:"name"`
	ReportedValue string `json:"reported_value"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
}

// Verdict is the overall outcome of validating a certificate's results
// against a product specification.
type Verdict struct {
	Overall string                 `json:"overall"`
	Details []CharacteristicResult `json:"details"`
}

// ValidateCertificate compares reported results against the product
// specification. Business-rule failures are normal FAIL results, never
// errors; the only error is the programmer-error case of nil inputs.
//
// Matching is by exact case-sensitive name. Reported results with no
// corresponding spec entry are ignored. Overall is APPROVED only when the
// detail list is non-empty and every entry passed; a product with no
// defined acceptance criteria cannot be auto-approved.
func ValidateCertificate(specs []CharacteristicSpec, results []ReportedResult) (Verdict, error) {
	if specs == nil {
		return Verdict{}, errors.New("quality: specs list is nil")
	}
	if results == nil {
		return Verdict{}, errors.New("quality: results list is nil")
	}

	if len(specs) == 0 {
		return Verdict{
			Overall: StatusRejected,
			Details: []CharacteristicResult{{
				Status: ResultFail,
				Reason: "no characteristics defined",
			}},
		}, nil
	}

	reported := make(map[string]ReportedResult, len(results))
	for _, r := range results {
		if _, ok := reported[r.Name]; !ok {
			reported[r.Name] = r
		}
	}

	details := make([]CharacteristicResult, 0, len(specs))
	overall := StatusApproved
	for _, spec := range specs {
		detail := checkCharacteristic(spec, reported)
		if detail.Status != ResultPass {
			overall = StatusRejected
		}
		details = append(details, detail)
	}

	return Verdict{Overall: overall, Details: details}, nil
}

func checkCharacteristic(spec CharacteristicSpec, reported map[string]ReportedResult) CharacteristicResult {
	detail := CharacteristicResult{Name: spec.Name, Status: ResultFail}

	result, ok := reported[spec.Name]
	if !ok {
		detail.Reason = "not reported"
		return detail
	}
	detail.ReportedValue = result.Value

	switch spec.Kind {
	case KindRange:
		value, err := decimal.NewFromString(strings.TrimSpace(result.Value))
		if err != nil {
			detail.Reason = "non-numeric value"
			return detail
		}
		if value.LessThan(spec.Min) {
			detail.Reason = fmt.Sprintf("value %s below minimum %s", value, spec.Min)
			return detail
		}
		if value.GreaterThan(spec.Max) {
			detail.Reason = fmt.Sprintf("value %s above maximum %s", value, spec.Max)
			return detail
		}
		detail.Status = ResultPass
	default:
		if strings.EqualFold(strings.TrimSpace(result.Value), strings.TrimSpace(spec.Expected)) {
			detail.Status = ResultPass
		} else {
			detail.Reason = fmt.Sprintf("expected %q, got %q", spec.Expected, result.Value)
		}
	}

	return detail
}
