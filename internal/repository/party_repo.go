package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartyListFilter struct {
	CompanyID uuid.UUID
	Type      string // SUPPLIER, CLIENT, BOTH or empty for all
	Search    string // partial match on legal/trade name
	Page      int
	Limit     int
}

type PartyRepository interface {
	Create(ctx context.Context, party *model.Party) error
	Update(ctx context.Context, party *model.Party) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Party, error)
	FindByTaxID(ctx context.Context, companyID uuid.UUID, taxID string) (*model.Party, error)
	List(ctx context.Context, filter PartyListFilter) ([]model.Party, int64, error)
}

type partyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) Create(ctx context.Context, party *model.Party) error {
	return GetDB(ctx, r.db).Create(party).Error
}

func (r *partyRepository) Update(ctx context.Context, party *model.Party) error {
	return GetDB(ctx, r.db).Save(party).Error
}

func (r *partyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Party{}).Error
}

func (r *partyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Party, error) {
	var party model.Party
	if err := GetDB(ctx, r.db).First(&party, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

// FindByTaxID matches either the CNPJ or CPF column, used to dedupe parties
// pre-filled from imported invoices.
func (r *partyRepository) FindByTaxID(ctx context.Context, companyID uuid.UUID, taxID string) (*model.Party, error) {
	var party model.Party
	if err := GetDB(ctx, r.db).
		Where("company_id = ? AND (tax_id_cnpj = ? OR tax_id_cpf = ?)", companyID, taxID, taxID).
		First(&party).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) List(ctx context.Context, filter PartyListFilter) ([]model.Party, int64, error) {
	var parties []model.Party
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Party{}).Where("company_id = ?", filter.CompanyID)
	if filter.Type != "" {
		db = db.Where("type = ? OR type = ?", filter.Type, model.PartyTypeBoth)
	}
	if filter.Search != "" {
		db = db.Where("legal_name ILIKE ? OR trade_name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := db.Order("legal_name asc").Offset(offset).Limit(filter.Limit).Find(&parties).Error; err != nil {
		return nil, 0, err
	}

	return parties, total, nil
}
