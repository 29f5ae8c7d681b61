package quality

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func puritySpec() []CharacteristicSpec {
	return []CharacteristicSpec{{
		Name: "purity",
		Unit: "%",
		Kind: KindRange,
		Min:  decimal.RequireFromString("98"),
		Max:  decimal.RequireFromString("100"),
	}}
}

func TestValidateCertificate_RangePass(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "purity", Value: "99.5"}})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, verdict.Overall)
	require.Len(t, verdict.Details, 1)
	assert.Equal(t, ResultPass, verdict.Details[0].Status)
	assert.Equal(t, "99.5", verdict.Details[0].ReportedValue)
	assert.Empty(t, verdict.Details[0].Reason)
}

func TestValidateCertificate_RangeBoundsInclusive(t *testing.T) {
	for _, value := range []string{"98", "100", "98.0000", "100.00"} {
		verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "purity", Value: value}})
		require.NoError(t, err)
		assert.Equal(t, StatusApproved, verdict.Overall, "value %s", value)
	}
}

func TestValidateCertificate_BelowMinimum(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "purity", Value: "97.9"}})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, verdict.Overall)
	require.Len(t, verdict.Details, 1)
	assert.Equal(t, ResultFail, verdict.Details[0].Status)
	assert.Contains(t, verdict.Details[0].Reason, "below minimum 98")
}

func TestValidateCertificate_AboveMaximum(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "purity", Value: "100.1"}})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, verdict.Overall)
	assert.Contains(t, verdict.Details[0].Reason, "above maximum 100")
}

func TestValidateCertificate_NonNumericValue(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "purity", Value: "abc"}})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, verdict.Overall)
	assert.Equal(t, "non-numeric value", verdict.Details[0].Reason)
}

func TestValidateCertificate_NotReported(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "density", Value: "1.2"}})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, verdict.Overall)
	require.Len(t, verdict.Details, 1)
	assert.Equal(t, "not reported", verdict.Details[0].Reason)
}

func TestValidateCertificate_NameMatchIsCaseSensitive(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{{Name: "Purity", Value: "99"}})
	require.NoError(t, err)
	assert.Equal(t, "not reported", verdict.Details[0].Reason)
}

func TestValidateCertificate_ExactMatch(t *testing.T) {
	specs := []CharacteristicSpec{{Name: "appearance", Kind: KindExact, Expected: "clear liquid"}}

	verdict, err := ValidateCertificate(specs, []ReportedResult{{Name: "appearance", Value: "  Clear Liquid "}})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, verdict.Overall)

	verdict, err = ValidateCertificate(specs, []ReportedResult{{Name: "appearance", Value: "yellow solid"}})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, verdict.Overall)
	assert.Contains(t, verdict.Details[0].Reason, `expected "clear liquid"`)
}

func TestValidateCertificate_ExtraReportedResultsIgnored(t *testing.T) {
	verdict, err := ValidateCertificate(puritySpec(), []ReportedResult{
		{Name: "purity", Value: "99"},
		{Name: "color", Value: "white"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, verdict.Overall)
	assert.Len(t, verdict.Details, 1)
}

func TestValidateCertificate_MixedResultsReject(t *testing.T) {
	specs := append(puritySpec(), CharacteristicSpec{Name: "appearance", Kind: KindExact, Expected: "white powder"})

	verdict, err := ValidateCertificate(specs, []ReportedResult{
		{Name: "purity", Value: "99"},
		{Name: "appearance", Value: "grey powder"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, verdict.Overall)
	require.Len(t, verdict.Details, 2)
	assert.Equal(t, ResultPass, verdict.Details[0].Status)
	assert.Equal(t, ResultFail, verdict.Details[1].Status)
}

func TestValidateCertificate_EmptySpecList(t *testing.T) {
	verdict, err := ValidateCertificate([]CharacteristicSpec{}, []ReportedResult{})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, verdict.Overall)
	require.Len(t, verdict.Details, 1)
	assert.Equal(t, ResultFail, verdict.Details[0].Status)
	assert.Equal(t, "no characteristics defined", verdict.Details[0].Reason)
}

func TestValidateCertificate_NilInputs(t *testing.T) {
	_, err := ValidateCertificate(nil, []ReportedResult{})
	require.Error(t, err)

	_, err = ValidateCertificate([]CharacteristicSpec{}, nil)
	require.Error(t, err)
}
