package service

import (
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/quality"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func purityProduct(t *testing.T) *model.Product {
	return &model.Product{
		Name: "Caustic Soda",
		Unit: "kg",
		Characteristics: []model.ProductCharacteristic{
			{
				Name:      "Purity",
				Unit:      "%",
				CheckKind: model.CheckKindRange,
				MinValue:  dec(t, "98"),
				MaxValue:  dec(t, "100"),
			},
			{
				Name:          "Appearance",
				CheckKind:     model.CheckKindExact,
				ExpectedValue: "white flakes",
			},
		},
	}
}

func TestEvaluateMapsSpecificationToVerdict(t *testing.T) {
	s := &certificateService{}

	verdict, err := s.evaluate(purityProduct(t), []ReportedResultRequest{
		{Name: "Purity", Value: "99.2", Unit: "%"},
		{Name: "Appearance", Value: "  WHITE FLAKES "},
	})
	require.NoError(t, err)

	assert.Equal(t, quality.StatusApproved, verdict.Overall)
	require.Len(t, verdict.Details, 2)
	assert.Equal(t, quality.ResultPass, verdict.Details[0].Status)
	assert.Equal(t, quality.ResultPass, verdict.Details[1].Status)
}

func TestEvaluateRejectsOutOfRangeValue(t *testing.T) {
	s := &certificateService{}

	verdict, err := s.evaluate(purityProduct(t), []ReportedResultRequest{
		{Name: "Purity", Value: "97.5"},
		{Name: "Appearance", Value: "white flakes"},
	})
	require.NoError(t, err)

	assert.Equal(t, quality.StatusRejected, verdict.Overall)
	assert.Equal(t, quality.ResultFail, verdict.Details[0].Status)
	assert.Contains(t, verdict.Details[0].Reason, "below minimum")
}

func TestEvaluateProductWithoutSpecificationRejects(t *testing.T) {
	s := &certificateService{}

	verdict, err := s.evaluate(&model.Product{Name: "Unspecified"}, []ReportedResultRequest{
		{Name: "Purity", Value: "99"},
	})
	require.NoError(t, err)

	assert.Equal(t, quality.StatusRejected, verdict.Overall)
	require.Len(t, verdict.Details, 1)
	assert.Equal(t, "no characteristics defined", verdict.Details[0].Reason)
}

func TestToResultModelsCarriesUnitsAndReasons(t *testing.T) {
	verdict := quality.Verdict{
		Overall: quality.StatusRejected,
		Details: []quality.CharacteristicResult{
			{Name: "Purity", ReportedValue: "97", Status: quality.ResultFail, Reason: "value 97 below minimum 98"},
			{Name: "Appearance", ReportedValue: "white flakes", Status: quality.ResultPass},
		},
	}

	models := toResultModels(verdict, []ReportedResultRequest{
		{Name: "Purity", Value: "97", Unit: "%"},
		{Name: "Appearance", Value: "white flakes"},
	})

	require.Len(t, models, 2)
	assert.Equal(t, "%", models[0].Unit)
	assert.Equal(t, model.ResultFail, models[0].Status)
	assert.Equal(t, "value 97 below minimum 98", models[0].Reason)
	assert.Equal(t, model.ResultPass, models[1].Status)
	assert.Empty(t, models[1].Unit)
}

func TestResolveExpirationPrefersExplicitDate(t *testing.T) {
	explicit := time.Date(2027, 3, 15, 0, 0, 0, 0, time.UTC)
	manufacture := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := resolveExpiration(CreateEntryCertificateRequest{
		ExpirationDate:  &explicit,
		ManufactureDate: &manufacture,
	}, &model.Product{ShelfLifeDays: 365})
	require.NoError(t, err)
	assert.Equal(t, explicit, got)
}

func TestResolveExpirationDerivesFromShelfLife(t *testing.T) {
	manufacture := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	got, err := resolveExpiration(CreateEntryCertificateRequest{
		ManufactureDate: &manufacture,
	}, &model.Product{ShelfLifeDays: 180})
	require.NoError(t, err)
	assert.Equal(t, manufacture.AddDate(0, 0, 180), got)
}

func TestResolveExpirationRequiresSomeSource(t *testing.T) {
	_, err := resolveExpiration(CreateEntryCertificateRequest{}, &model.Product{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expiration_date is required")
}
