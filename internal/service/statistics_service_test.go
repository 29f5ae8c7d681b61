package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCertificateRepo struct {
	repository.CertificateRepository

	lots     []model.EntryCertificate
	byStatus map[string]int64
}

func (s *stubCertificateRepo) ListActiveLots(_ context.Context, _ uuid.UUID) ([]model.EntryCertificate, error) {
	return s.lots, nil
}

func (s *stubCertificateRepo) CountByStatus(_ context.Context, _ uuid.UUID, status string) (int64, error) {
	return s.byStatus[status], nil
}

func lotExpiring(no string, expiration time.Time) model.EntryCertificate {
	return model.EntryCertificate{
		ID:             uuid.New(),
		CertificateNo:  no,
		LotNumber:      "L-" + no,
		ExpirationDate: expiration,
		Product:        &model.Product{Name: "Sodium Hypochlorite"},
	}
}

func TestExpirationSummaryBucketsLotsByRisk(t *testing.T) {
	asOf := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	repo := &stubCertificateRepo{
		lots: []model.EntryCertificate{
			lotExpiring("CERT-1", asOf.AddDate(0, 0, -2)),
			lotExpiring("CERT-2", asOf.AddDate(0, 0, 10)),
			lotExpiring("CERT-3", asOf.AddDate(0, 0, 45)),
			lotExpiring("CERT-4", asOf.AddDate(0, 0, 200)),
		},
	}
	svc := &statisticsService{certRepo: repo, now: func() time.Time { return asOf }}

	summary, err := svc.ExpirationSummary(context.Background(), uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalLots)
	assert.Equal(t, 1, summary.Expired)
	assert.Equal(t, 1, summary.Critical)
	assert.Equal(t, 1, summary.Warning)
	assert.Equal(t, 1, summary.Safe)

	// Safe lots stay out of the at-risk list.
	require.Len(t, summary.AtRiskLots, 3)
	assert.Equal(t, "CERT-1", summary.AtRiskLots[0].CertificateNo)
	assert.Equal(t, "EXPIRED", summary.AtRiskLots[0].Category)
	assert.Equal(t, -2, summary.AtRiskLots[0].DaysUntil)
	assert.Equal(t, "CRITICAL", summary.AtRiskLots[1].Category)
	assert.Equal(t, "WARNING", summary.AtRiskLots[2].Category)
	assert.Equal(t, "Sodium Hypochlorite", summary.AtRiskLots[1].ProductName)
}

func TestExpirationSummaryRejectsInvalidCompanyID(t *testing.T) {
	svc := &statisticsService{certRepo: &stubCertificateRepo{}, now: time.Now}

	_, err := svc.ExpirationSummary(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid company id")
}

func TestStatusSummaryTotalsAllBuckets(t *testing.T) {
	repo := &stubCertificateRepo{byStatus: map[string]int64{
		model.CertificatePending:  3,
		model.CertificateApproved: 10,
		model.CertificateRejected: 2,
	}}
	svc := &statisticsService{certRepo: repo, now: time.Now}

	summary, err := svc.StatusSummary(context.Background(), uuid.NewString())
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Pending)
	assert.Equal(t, int64(10), summary.Approved)
	assert.Equal(t, int64(2), summary.Rejected)
	assert.Equal(t, int64(15), summary.Total)
}
