package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificateListFilter struct {
	CompanyID uuid.UUID
	Status    string // PENDING, APPROVED, REJECTED or empty for all
	ProductID *uuid.UUID
	LotNumber string // partial match
	Page      int
	Limit     int
}

type CertificateRepository interface {
	Create(ctx context.Context, cert *model.EntryCertificate) error
	Update(ctx context.Context, cert *model.EntryCertificate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.EntryCertificate, error)
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.EntryCertificate, error)
	List(ctx context.Context, filter CertificateListFilter) ([]model.EntryCertificate, int64, error)
	ListActiveLots(ctx context.Context, companyID uuid.UUID) ([]model.EntryCertificate, error)
	CountByStatus(ctx context.Context, companyID uuid.UUID, status string) (int64, error)
	ReplaceResults(ctx context.Context, certID uuid.UUID, results []model.CertificateResult) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)

	CreateIssued(ctx context.Context, issued *model.IssuedCertificate) error
	FindIssuedByID(ctx context.Context, id uuid.UUID) (*model.IssuedCertificate, error)
	ListIssued(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.IssuedCertificate, int64, error)
	SumIssuedQuantity(ctx context.Context, entryCertID uuid.UUID) (string, error)
	CountIssuedByPrefix(ctx context.Context, prefix string) (int64, error)
}

type certificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) CertificateRepository {
	return &certificateRepository{db: db}
}

func (r *certificateRepository) Create(ctx context.Context, cert *model.EntryCertificate) error {
	return GetDB(ctx, r.db).Create(cert).Error
}

func (r *certificateRepository) Update(ctx context.Context, cert *model.EntryCertificate) error {
	return GetDB(ctx, r.db).Save(cert).Error
}

func (r *certificateRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.EntryCertificate, error) {
	var cert model.EntryCertificate
	if err := GetDB(ctx, r.db).First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.EntryCertificate, error) {
	var cert model.EntryCertificate
	if err := GetDB(ctx, r.db).
		Preload("Product.Characteristics").
		Preload("Supplier").
		Preload("Results").
		First(&cert, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepository) List(ctx context.Context, filter CertificateListFilter) ([]model.EntryCertificate, int64, error) {
	var certs []model.EntryCertificate
	var total int64

	db := GetDB(ctx, r.db).Model(&model.EntryCertificate{}).Where("company_id = ?", filter.CompanyID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ProductID != nil {
		db = db.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LotNumber != "" {
		db = db.Where("lot_number ILIKE ?", "%"+filter.LotNumber+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Preload("Product").Preload("Supplier").Preload("Results").
		Order("created_at desc").Offset(offset).Limit(filter.Limit).Find(&certs).Error; err != nil {
		return nil, 0, err
	}

	return certs, total, nil
}

// ListActiveLots returns every non-deleted entry certificate with its
// product preloaded, for expiration-risk classification.
func (r *certificateRepository) ListActiveLots(ctx context.Context, companyID uuid.UUID) ([]model.EntryCertificate, error) {
	var certs []model.EntryCertificate
	if err := GetDB(ctx, r.db).
		Preload("Product").
		Where("company_id = ?", companyID).
		Order("expiration_date asc").
		Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

func (r *certificateRepository) CountByStatus(ctx context.Context, companyID uuid.UUID, status string) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.EntryCertificate{}).Where("company_id = ?", companyID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *certificateRepository) ReplaceResults(ctx context.Context, certID uuid.UUID, results []model.CertificateResult) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("certificate_id = ?", certID).Delete(&model.CertificateResult{}).Error; err != nil {
		return err
	}
	if len(results) == 0 {
		return nil
	}
	for i := range results {
		results[i].CertificateID = certID
	}
	return db.Create(&results).Error
}

func (r *certificateRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.EntryCertificate{}).
		Where("certificate_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *certificateRepository) CreateIssued(ctx context.Context, issued *model.IssuedCertificate) error {
	return GetDB(ctx, r.db).Create(issued).Error
}

func (r *certificateRepository) FindIssuedByID(ctx context.Context, id uuid.UUID) (*model.IssuedCertificate, error) {
	var issued model.IssuedCertificate
	if err := GetDB(ctx, r.db).
		Preload("EntryCertificate.Product").
		Preload("Client").
		First(&issued, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &issued, nil
}

func (r *certificateRepository) ListIssued(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.IssuedCertificate, int64, error) {
	var issued []model.IssuedCertificate
	var total int64

	db := GetDB(ctx, r.db).Model(&model.IssuedCertificate{}).Where("company_id = ?", companyID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("EntryCertificate.Product").Preload("Client").
		Order("issued_at desc").Offset(offset).Limit(limit).Find(&issued).Error; err != nil {
		return nil, 0, err
	}

	return issued, total, nil
}

// SumIssuedQuantity returns the total quantity already issued against an
// entry certificate's lot, as a decimal string.
func (r *certificateRepository) SumIssuedQuantity(ctx context.Context, entryCertID uuid.UUID) (string, error) {
	var sum *string
	if err := GetDB(ctx, r.db).Model(&model.IssuedCertificate{}).
		Where("entry_certificate_id = ?", entryCertID).
		Select("SUM(quantity)::text").Scan(&sum).Error; err != nil {
		return "0", err
	}
	if sum == nil {
		return "0", nil
	}
	return *sum, nil
}

func (r *certificateRepository) CountIssuedByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.IssuedCertificate{}).
		Where("certificate_no LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
