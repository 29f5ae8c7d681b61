package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/quality"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type StatisticsService interface {
	// ExpirationSummary classifies every active lot by expiration risk.
	ExpirationSummary(ctx context.Context, companyID string) (*model.ExpirationSummaryResponse, error)

	// StatusSummary counts entry certificates per stored status.
	StatusSummary(ctx context.Context, companyID string) (*model.CertificateStatusSummary, error)
}

type statisticsService struct {
	certRepo repository.CertificateRepository
	now      func() time.Time
}

func NewStatisticsService(certRepo repository.CertificateRepository) StatisticsService {
	return &statisticsService{certRepo: certRepo, now: time.Now}
}

func (s *statisticsService) ExpirationSummary(ctx context.Context, companyID string) (*model.ExpirationSummaryResponse, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	lots, err := s.certRepo.ListActiveLots(ctx, company)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}

	asOf := s.now()
	summary := &model.ExpirationSummaryResponse{
		TotalLots:   len(lots),
		AtRiskLots:  []model.LotRisk{},
		GeneratedAt: asOf,
	}

	for _, lot := range lots {
		risk := quality.ClassifyExpiration(lot.ExpirationDate, asOf)

		switch risk.Category {
		case quality.RiskExpired:
			summary.Expired++
		case quality.RiskCritical:
			summary.Critical++
		case quality.RiskWarning:
			summary.Warning++
		default:
			summary.Safe++
			continue
		}

		productName := ""
		if lot.Product != nil {
			productName = lot.Product.Name
		}
		summary.AtRiskLots = append(summary.AtRiskLots, model.LotRisk{
			CertificateID:  lot.ID.String(),
			CertificateNo:  lot.CertificateNo,
			ProductName:    productName,
			LotNumber:      lot.LotNumber,
			ExpirationDate: lot.ExpirationDate,
			DaysUntil:      risk.DaysUntil,
			Category:       string(risk.Category),
		})
	}

	return summary, nil
}

func (s *statisticsService) StatusSummary(ctx context.Context, companyID string) (*model.CertificateStatusSummary, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	pending, err := s.certRepo.CountByStatus(ctx, company, model.CertificatePending)
	if err != nil {
		return nil, err
	}
	approved, err := s.certRepo.CountByStatus(ctx, company, model.CertificateApproved)
	if err != nil {
		return nil, err
	}
	rejected, err := s.certRepo.CountByStatus(ctx, company, model.CertificateRejected)
	if err != nil {
		return nil, err
	}

	return &model.CertificateStatusSummary{
		Pending:  pending,
		Approved: approved,
		Rejected: rejected,
		Total:    pending + approved + rejected,
	}, nil
}
