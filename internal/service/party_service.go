package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreatePartyRequest struct {
	Type       string `json:"type" binding:"required,oneof=SUPPLIER CLIENT BOTH"`
	TaxIDCNPJ  string `json:"tax_id_cnpj"`
	TaxIDCPF   string `json:"tax_id_cpf"`
	LegalName  string `json:"legal_name" binding:"required"`
	TradeName  string `json:"trade_name"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

type UpdatePartyRequest struct {
	Type       *string `json:"type"`
	LegalName  *string `json:"legal_name"`
	TradeName  *string `json:"trade_name"`
	Street     *string `json:"street"`
	Number     *string `json:"number"`
	Complement *string `json:"complement"`
	District   *string `json:"district"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	ZipCode    *string `json:"zip_code"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	IsActive   *bool   `json:"is_active"`
}

// --- Interface ---

type PartyService interface {
	CreateParty(ctx context.Context, companyID string, req CreatePartyRequest) (*model.Party, error)
	GetParty(ctx context.Context, companyID, id string) (*model.Party, error)
	ListParties(ctx context.Context, companyID string, partyType, search string, page, limit int) ([]model.Party, int64, error)
	UpdateParty(ctx context.Context, companyID, id string, req UpdatePartyRequest) (*model.Party, error)
	DeleteParty(ctx context.Context, companyID, id string) error
}

type partyService struct {
	partyRepo repository.PartyRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
}

func NewPartyService(
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PartyService {
	return &partyService{
		partyRepo: partyRepo,
		auditRepo: auditRepo,
		txManager: txManager,
	}
}

// --- Implementation ---

func (s *partyService) CreateParty(ctx context.Context, companyID string, req CreatePartyRequest) (*model.Party, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	if req.TaxIDCNPJ != "" {
		if _, err := s.partyRepo.FindByTaxID(ctx, company, req.TaxIDCNPJ); err == nil {
			return nil, fmt.Errorf("a party with CNPJ %s already exists", req.TaxIDCNPJ)
		}
	}

	party := &model.Party{
		CompanyID:  company,
		Type:       req.Type,
		TaxIDCNPJ:  req.TaxIDCNPJ,
		TaxIDCPF:   req.TaxIDCPF,
		LegalName:  req.LegalName,
		TradeName:  req.TradeName,
		Street:     req.Street,
		Number:     req.Number,
		Complement: req.Complement,
		District:   req.District,
		City:       req.City,
		State:      req.State,
		ZipCode:    req.ZipCode,
		Email:      req.Email,
		Phone:      req.Phone,
		IsActive:   true,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.partyRepo.Create(txCtx, party); err != nil {
			return fmt.Errorf("failed to create party: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionCreateParty,
			EntityID:   party.ID.String(),
			EntityName: party.LegalName,
		})
	})
	if err != nil {
		return nil, err
	}

	return party, nil
}

func (s *partyService) GetParty(ctx context.Context, companyID, id string) (*model.Party, error) {
	return s.findOwned(ctx, companyID, id)
}

func (s *partyService) ListParties(ctx context.Context, companyID string, partyType, search string, page, limit int) ([]model.Party, int64, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid company id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.partyRepo.List(ctx, repository.PartyListFilter{
		CompanyID: company,
		Type:      partyType,
		Search:    search,
		Page:      page,
		Limit:     limit,
	})
}

func (s *partyService) UpdateParty(ctx context.Context, companyID, id string, req UpdatePartyRequest) (*model.Party, error) {
	party, err := s.findOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		switch *req.Type {
		case model.PartyTypeSupplier, model.PartyTypeClient, model.PartyTypeBoth:
			party.Type = *req.Type
		default:
			return nil, fmt.Errorf("invalid party type %q", *req.Type)
		}
	}
	if req.LegalName != nil {
		party.LegalName = *req.LegalName
	}
	if req.TradeName != nil {
		party.TradeName = *req.TradeName
	}
	if req.Street != nil {
		party.Street = *req.Street
	}
	if req.Number != nil {
		party.Number = *req.Number
	}
	if req.Complement != nil {
		party.Complement = *req.Complement
	}
	if req.District != nil {
		party.District = *req.District
	}
	if req.City != nil {
		party.City = *req.City
	}
	if req.State != nil {
		party.State = *req.State
	}
	if req.ZipCode != nil {
		party.ZipCode = *req.ZipCode
	}
	if req.Email != nil {
		party.Email = *req.Email
	}
	if req.Phone != nil {
		party.Phone = *req.Phone
	}
	if req.IsActive != nil {
		party.IsActive = *req.IsActive
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.partyRepo.Update(txCtx, party); err != nil {
			return fmt.Errorf("failed to update party: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionUpdateParty,
			EntityID:   party.ID.String(),
			EntityName: party.LegalName,
		})
	})
	if err != nil {
		return nil, err
	}

	return party, nil
}

func (s *partyService) DeleteParty(ctx context.Context, companyID, id string) error {
	party, err := s.findOwned(ctx, companyID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.partyRepo.Delete(txCtx, party.ID); err != nil {
			return fmt.Errorf("failed to delete party: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionDeleteParty,
			EntityID:   party.ID.String(),
			EntityName: party.LegalName,
		})
	})
}

func (s *partyService) findOwned(ctx context.Context, companyID, id string) (*model.Party, error) {
	partyID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid party id: %w", err)
	}
	party, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("party not found: %w", err)
	}
	if party.CompanyID.String() != companyID {
		return nil, fmt.Errorf("party not found")
	}
	return party, nil
}
