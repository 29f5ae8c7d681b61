package service

import (
	"context"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuditService interface {
	// ListLogs pages through audit entries, optionally filtered by action code.
	ListLogs(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
}

func NewAuditService(auditRepo repository.AuditRepository) AuditService {
	return &auditService{auditRepo: auditRepo}
}

func (s *auditService) ListLogs(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.auditRepo.List(ctx, action, page, limit)
}

// actorFrom returns the authenticated user's id for audit stamping, or nil
// when the context carries no identity (migrations, seeds, tests).
func actorFrom(ctx context.Context) *uuid.UUID {
	identity, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return nil
	}
	id := identity.UserID
	return &id
}
