package service

import (
	"context"
	"fmt"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreatePlanRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Features    []string `json:"features"` // Feature UUIDs
}

type UpdatePlanFeaturesRequest struct {
	FeatureIDs []string `json:"feature_ids" binding:"required"`
}

type PlanResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	IsSystem    bool              `json:"is_system"`
	Features    []FeatureResponse `json:"features"`
	CreatedAt   string            `json:"created_at"`
}

type FeatureResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// --- Interface ---

type PlanService interface {
	ListPlans(ctx context.Context) ([]PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*PlanResponse, error)
	CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error)
	DeletePlan(ctx context.Context, id string) error
	ListFeatures(ctx context.Context) ([]FeatureResponse, error)
	UpdatePlanFeatures(ctx context.Context, planID string, req UpdatePlanFeaturesRequest) (*PlanResponse, error)
	GetFeaturesByPlanName(ctx context.Context, planName string) ([]string, error)
	SeedDefaultPlansAndFeatures(ctx context.Context) error
}

type planService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) PlanService {
	return &planService{db: db}
}

// --- Implementation ---

func (s *planService) ListPlans(ctx context.Context) ([]PlanResponse, error) {
	var plans []model.Plan
	if err := s.db.WithContext(ctx).Preload("Features").Order("name ASC").Find(&plans).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch plans: %w", err)
	}

	res := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, toPlanResponse(p))
	}
	return res, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*PlanResponse, error) {
	planID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id: %w", err)
	}

	var plan model.Plan
	if err := s.db.WithContext(ctx).Preload("Features").First(&plan, "id = ?", planID).Error; err != nil {
		return nil, fmt.Errorf("plan not found: %w", err)
	}

	res := toPlanResponse(plan)
	return &res, nil
}

func (s *planService) CreatePlan(ctx context.Context, req CreatePlanRequest) (*PlanResponse, error) {
	var existing model.Plan
	if err := s.db.WithContext(ctx).Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("plan %q already exists", req.Name)
	}

	plan := model.Plan{
		Name:        req.Name,
		Description: req.Description,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&plan).Error; err != nil {
			return fmt.Errorf("failed to create plan: %w", err)
		}
		if len(req.Features) > 0 {
			var features []model.Feature
			if err := tx.Where("id IN ?", req.Features).Find(&features).Error; err != nil {
				return fmt.Errorf("failed to resolve features: %w", err)
			}
			if err := tx.Model(&plan).Association("Features").Replace(features); err != nil {
				return fmt.Errorf("failed to assign features: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetPlan(ctx, plan.ID.String())
}

func (s *planService) DeletePlan(ctx context.Context, id string) error {
	planID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid plan id: %w", err)
	}

	var plan model.Plan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error; err != nil {
		return fmt.Errorf("plan not found: %w", err)
	}
	if plan.IsSystem {
		return fmt.Errorf("cannot delete built-in plan %q", plan.Name)
	}

	var subscribed int64
	if err := s.db.WithContext(ctx).Model(&model.Company{}).Where("plan_id = ?", planID).Count(&subscribed).Error; err != nil {
		return fmt.Errorf("failed to count subscribers: %w", err)
	}
	if subscribed > 0 {
		return fmt.Errorf("plan %q still has %d subscribed companies", plan.Name, subscribed)
	}

	return s.db.WithContext(ctx).Delete(&plan).Error
}

func (s *planService) ListFeatures(ctx context.Context) ([]FeatureResponse, error) {
	var features []model.Feature
	if err := s.db.WithContext(ctx).Order(`"group" ASC, code ASC`).Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch features: %w", err)
	}

	res := make([]FeatureResponse, 0, len(features))
	for _, f := range features {
		res = append(res, toFeatureResponse(f))
	}
	return res, nil
}

func (s *planService) UpdatePlanFeatures(ctx context.Context, planID string, req UpdatePlanFeaturesRequest) (*PlanResponse, error) {
	id, err := uuid.Parse(planID)
	if err != nil {
		return nil, fmt.Errorf("invalid plan id: %w", err)
	}

	var plan model.Plan
	if err := s.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("plan not found: %w", err)
	}

	var features []model.Feature
	if err := s.db.WithContext(ctx).Where("id IN ?", req.FeatureIDs).Find(&features).Error; err != nil {
		return nil, fmt.Errorf("failed to resolve features: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&plan).Association("Features").Replace(features); err != nil {
		return nil, fmt.Errorf("failed to update plan features: %w", err)
	}

	return s.GetPlan(ctx, plan.ID.String())
}

func (s *planService) GetFeaturesByPlanName(ctx context.Context, planName string) ([]string, error) {
	var plan model.Plan
	if err := s.db.WithContext(ctx).Preload("Features").Where("name = ?", planName).First(&plan).Error; err != nil {
		return nil, fmt.Errorf("plan not found: %w", err)
	}

	codes := make([]string, 0, len(plan.Features))
	for _, f := range plan.Features {
		codes = append(codes, f.Code)
	}
	return codes, nil
}

// SeedDefaultPlansAndFeatures creates the default features and plans if not already present
func (s *planService) SeedDefaultPlansAndFeatures(ctx context.Context) error {
	defaultFeatures := []model.Feature{
		{Code: "products.manage", Name: "Manage products and specifications", Group: "products"},
		{Code: "parties.manage", Name: "Manage suppliers and clients", Group: "parties"},
		{Code: "certificates.entry", Name: "Register entry certificates", Group: "certificates"},
		{Code: "certificates.issue", Name: "Issue certificates to clients", Group: "certificates"},
		{Code: "nfe.import", Name: "Import electronic invoices", Group: "imports"},
		{Code: "dashboard.expiration", Name: "Expiration risk dashboard", Group: "dashboard"},
		{Code: "audit.read", Name: "View audit history", Group: "audit"},
	}

	// Upsert features
	for i := range defaultFeatures {
		f := &defaultFeatures[i]
		var existing model.Feature
		result := s.db.WithContext(ctx).Where("code = ?", f.Code).First(&existing)
		if result.Error != nil {
			if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
				return fmt.Errorf("failed to seed feature '%s': %w", f.Code, err)
			}
		} else {
			f.ID = existing.ID
			s.db.WithContext(ctx).Exec(
				`UPDATE features SET name = ?, "group" = ? WHERE id = ?`,
				f.Name, f.Group, existing.ID,
			)
		}
	}

	featureByCode := make(map[string]model.Feature)
	for _, f := range defaultFeatures {
		featureByCode[f.Code] = f
	}

	planDefinitions := map[string]struct {
		Description  string
		FeatureCodes []string
	}{
		"basic": {
			Description: "Entry certificates and registrations only",
			FeatureCodes: []string{
				"products.manage", "parties.manage", "certificates.entry",
			},
		},
		"professional": {
			Description: "Adds invoice import and certificate issuing",
			FeatureCodes: []string{
				"products.manage", "parties.manage",
				"certificates.entry", "certificates.issue",
				"nfe.import",
			},
		},
		"enterprise": {
			Description: "All features including dashboards and audit history",
			FeatureCodes: []string{
				"products.manage", "parties.manage",
				"certificates.entry", "certificates.issue",
				"nfe.import",
				"dashboard.expiration", "audit.read",
			},
		},
	}

	for planName, def := range planDefinitions {
		var plan model.Plan
		result := s.db.WithContext(ctx).Where("name = ?", planName).First(&plan)
		if result.Error != nil {
			plan = model.Plan{
				Name:        planName,
				Description: def.Description,
				IsSystem:    true,
			}
			if err := s.db.WithContext(ctx).Create(&plan).Error; err != nil {
				return fmt.Errorf("failed to seed plan '%s': %w", planName, err)
			}
		}

		features := make([]model.Feature, 0, len(def.FeatureCodes))
		for _, code := range def.FeatureCodes {
			if f, ok := featureByCode[code]; ok {
				features = append(features, f)
			}
		}
		if err := s.db.WithContext(ctx).Model(&plan).Association("Features").Replace(features); err != nil {
			return fmt.Errorf("failed to assign features to plan '%s': %w", planName, err)
		}
	}

	return nil
}

// --- Helpers ---

func toPlanResponse(p model.Plan) PlanResponse {
	features := make([]FeatureResponse, 0, len(p.Features))
	for _, f := range p.Features {
		features = append(features, toFeatureResponse(f))
	}
	return PlanResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		IsSystem:    p.IsSystem,
		Features:    features,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func toFeatureResponse(f model.Feature) FeatureResponse {
	return FeatureResponse{
		ID:    f.ID.String(),
		Code:  f.Code,
		Name:  f.Name,
		Group: f.Group,
	}
}
