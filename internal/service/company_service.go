package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// --- DTOs ---

type RegisterCompanyRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	TaxIDCNPJ   string `json:"tax_id_cnpj" binding:"required"`
	Plan        string `json:"plan"` // Defaults to "basic"
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TaxIDCNPJ string `json:"tax_id_cnpj"`
	Plan      string `json:"plan"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type CompanyService interface {
	// RegisterCompany onboards a new tenant with its first admin user.
	RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (*CompanyResponse, error)
	GetCompany(ctx context.Context, id string) (*CompanyResponse, error)
	ChangePlan(ctx context.Context, companyID, planName string) (*CompanyResponse, error)
}

type companyService struct {
	db *gorm.DB
}

func NewCompanyService(db *gorm.DB) CompanyService {
	return &companyService{db: db}
}

// --- Implementation ---

func (s *companyService) RegisterCompany(ctx context.Context, req RegisterCompanyRequest) (*CompanyResponse, error) {
	planName := req.Plan
	if planName == "" {
		planName = "basic"
	}

	var plan model.Plan
	if err := s.db.WithContext(ctx).Where("name = ?", planName).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("unknown plan %q", planName)
	}

	var existing model.Company
	if err := s.db.WithContext(ctx).Where("tax_id_cnpj = ?", req.TaxIDCNPJ).First(&existing).Error; err == nil {
		return nil, errors.New("a company with this CNPJ is already registered")
	}

	var taken model.User
	if err := s.db.WithContext(ctx).Where("email = ? OR username = ?", req.Email, req.Username).First(&taken).Error; err == nil {
		return nil, errors.New("username or email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	company := model.Company{
		Name:      req.CompanyName,
		TaxIDCNPJ: req.TaxIDCNPJ,
		PlanID:    &plan.ID,
		IsActive:  true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("failed to create company: %w", err)
		}
		admin := model.User{
			CompanyID: company.ID,
			Username:  req.Username,
			Email:     req.Email,
			Password:  string(hashedPassword),
			Role:      model.RoleAdmin,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	company.Plan = &plan
	res := toCompanyResponse(company)
	return &res, nil
}

func (s *companyService) GetCompany(ctx context.Context, id string) (*CompanyResponse, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).Preload("Plan").First(&company, "id = ?", id).Error; err != nil {
		return nil, errors.New("company not found")
	}
	res := toCompanyResponse(company)
	return &res, nil
}

// ChangePlan moves a company to another subscription plan. Takes effect on
// the next login since plan claims are embedded in the JWT.
func (s *companyService) ChangePlan(ctx context.Context, companyID, planName string) (*CompanyResponse, error) {
	var company model.Company
	if err := s.db.WithContext(ctx).First(&company, "id = ?", companyID).Error; err != nil {
		return nil, errors.New("company not found")
	}

	var plan model.Plan
	if err := s.db.WithContext(ctx).Where("name = ?", planName).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("unknown plan %q", planName)
	}

	company.PlanID = &plan.ID
	if err := s.db.WithContext(ctx).Save(&company).Error; err != nil {
		return nil, fmt.Errorf("failed to change plan: %w", err)
	}

	company.Plan = &plan
	res := toCompanyResponse(company)
	return &res, nil
}

// --- Helpers ---

func toCompanyResponse(c model.Company) CompanyResponse {
	planName := ""
	if c.Plan != nil {
		planName = c.Plan.Name
	}
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		TaxIDCNPJ: c.TaxIDCNPJ,
		Plan:      planName,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
