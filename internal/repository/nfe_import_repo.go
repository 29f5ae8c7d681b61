package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NfeImportRepository interface {
	Create(ctx context.Context, imp *model.NfeImport) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NfeImport, error)
	FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.NfeImport, error)
	FindByAccessKey(ctx context.Context, companyID uuid.UUID, accessKey string) (*model.NfeImport, error)
	List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.NfeImport, int64, error)
}

type nfeImportRepository struct {
	db *gorm.DB
}

func NewNfeImportRepository(db *gorm.DB) NfeImportRepository {
	return &nfeImportRepository{db: db}
}

func (r *nfeImportRepository) Create(ctx context.Context, imp *model.NfeImport) error {
	return GetDB(ctx, r.db).Create(imp).Error
}

func (r *nfeImportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.NfeImport, error) {
	var imp model.NfeImport
	if err := GetDB(ctx, r.db).First(&imp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *nfeImportRepository) FindByIDWithItems(ctx context.Context, id uuid.UUID) (*model.NfeImport, error) {
	var imp model.NfeImport
	if err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&imp, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *nfeImportRepository) FindByAccessKey(ctx context.Context, companyID uuid.UUID, accessKey string) (*model.NfeImport, error) {
	var imp model.NfeImport
	if err := GetDB(ctx, r.db).
		Where("company_id = ? AND access_key = ?", companyID, accessKey).
		First(&imp).Error; err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *nfeImportRepository) List(ctx context.Context, companyID uuid.UUID, page, limit int) ([]model.NfeImport, int64, error) {
	var imports []model.NfeImport
	var total int64

	db := GetDB(ctx, r.db).Model(&model.NfeImport{}).Where("company_id = ?", companyID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Preload("Items").Order("created_at desc").Offset(offset).Limit(limit).Find(&imports).Error; err != nil {
		return nil, 0, err
	}

	return imports, total, nil
}
