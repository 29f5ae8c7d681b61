package service

import (
	"context"
	"fmt"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CharacteristicSpecRequest struct {
	Name          string `json:"name" binding:"required"`
	Unit          string `json:"unit"`
	CheckKind     string `json:"check_kind" binding:"required,oneof=RANGE EXACT"`
	MinValue      string `json:"min_value"`      // Required when check_kind is RANGE
	MaxValue      string `json:"max_value"`      // Required when check_kind is RANGE
	ExpectedValue string `json:"expected_value"` // Required when check_kind is EXACT
}

type CreateProductRequest struct {
	Code            string                      `json:"code" binding:"required"`
	Name            string                      `json:"name" binding:"required"`
	Unit            string                      `json:"unit"`
	NCMCode         string                      `json:"ncm_code"`
	Description     string                      `json:"description"`
	ShelfLifeDays   int                         `json:"shelf_life_days"`
	Characteristics []CharacteristicSpecRequest `json:"characteristics"`
}

type UpdateProductRequest struct {
	Name            *string                      `json:"name"`
	Unit            *string                      `json:"unit"`
	NCMCode         *string                      `json:"ncm_code"`
	Description     *string                      `json:"description"`
	ShelfLifeDays   *int                         `json:"shelf_life_days"`
	Characteristics *[]CharacteristicSpecRequest `json:"characteristics"` // Full replacement when present
}

// --- Interface ---

type ProductService interface {
	CreateProduct(ctx context.Context, companyID string, req CreateProductRequest) (*model.Product, error)
	GetProduct(ctx context.Context, companyID, id string) (*model.Product, error)
	ListProducts(ctx context.Context, companyID string, page, limit int, search string) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, companyID, id string, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, companyID, id string) error
}

type productService struct {
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *productService) CreateProduct(ctx context.Context, companyID string, req CreateProductRequest) (*model.Product, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	if _, err := s.productRepo.FindByCode(ctx, company, req.Code); err == nil {
		return nil, fmt.Errorf("product code %q already exists", req.Code)
	}

	specs, err := buildCharacteristics(req.Characteristics)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		CompanyID:       company,
		Code:            req.Code,
		Name:            req.Name,
		Unit:            req.Unit,
		NCMCode:         req.NCMCode,
		Description:     req.Description,
		ShelfLifeDays:   req.ShelfLifeDays,
		Characteristics: specs,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionCreateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) GetProduct(ctx context.Context, companyID, id string) (*model.Product, error) {
	product, err := s.findOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, companyID string, page, limit int, search string) ([]model.Product, int64, error) {
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
	return s.productRepo.List(ctx, company, page, limit, search)
}

func (s *productService) UpdateProduct(ctx context.Context, companyID, id string, req UpdateProductRequest) (*model.Product, error) {
	product, err := s.findOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.NCMCode != nil {
		product.NCMCode = *req.NCMCode
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.ShelfLifeDays != nil {
		product.ShelfLifeDays = *req.ShelfLifeDays
	}

	var specs []model.ProductCharacteristic
	if req.Characteristics != nil {
		specs, err = buildCharacteristics(*req.Characteristics)
		if err != nil {
			return nil, err
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product.Characteristics = nil
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}
		if req.Characteristics != nil {
			if err := s.productRepo.ReplaceCharacteristics(txCtx, product.ID, specs); err != nil {
				return fmt.Errorf("failed to replace characteristics: %w", err)
			}
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionUpdateProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.productRepo.FindByIDWithCharacteristics(ctx, product.ID)
}

func (s *productService) DeleteProduct(ctx context.Context, companyID, id string) error {
	product, err := s.findOwned(ctx, companyID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.productRepo.Delete(txCtx, product.ID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionDeleteProduct,
			EntityID:   product.ID.String(),
			EntityName: product.Name,
		})
	})
}

// --- Helpers ---

func (s *productService) findOwned(ctx context.Context, companyID, id string) (*model.Product, error) {
	productID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	product, err := s.productRepo.FindByIDWithCharacteristics(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if product.CompanyID.String() != companyID {
		return nil, fmt.Errorf("product not found")
	}
	return product, nil
}

func buildCharacteristics(reqs []CharacteristicSpecRequest) ([]model.ProductCharacteristic, error) {
	specs := make([]model.ProductCharacteristic, 0, len(reqs))
	for _, req := range reqs {
		spec := model.ProductCharacteristic{
			Name:      req.Name,
			Unit:      req.Unit,
			CheckKind: req.CheckKind,
		}

		switch req.CheckKind {
		case model.CheckKindRange:
			min, err := decimal.NewFromString(req.MinValue)
			if err != nil {
				return nil, fmt.Errorf("characteristic %q: invalid min_value: %w", req.Name, err)
			}
			max, err := decimal.NewFromString(req.MaxValue)
			if err != nil {
				return nil, fmt.Errorf("characteristic %q: invalid max_value: %w", req.Name, err)
			}
			if min.GreaterThan(max) {
				return nil, fmt.Errorf("characteristic %q: min_value exceeds max_value", req.Name)
			}
			spec.MinValue = &min
			spec.MaxValue = &max
		case model.CheckKindExact:
			if req.ExpectedValue == "" {
				return nil, fmt.Errorf("characteristic %q: expected_value is required for EXACT checks", req.Name)
			}
			spec.ExpectedValue = req.ExpectedValue
		}

		specs = append(specs, spec)
	}
	return specs, nil
}
