package service

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/model"
	"backend/internal/nfe"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrDuplicateImport is returned when an invoice with the same access key was
// already imported by the company.
var ErrDuplicateImport = errors.New("invoice already imported")

// --- Interface ---

type ImportService interface {
	// ImportInvoice normalizes an uploaded invoice XML and persists it.
	// The emitter is registered as a supplier party when unknown.
	ImportInvoice(ctx context.Context, companyID, xmlText string) (*model.NfeImport, error)

	// ParseInvoice normalizes without persisting, for client-side preview.
	ParseInvoice(xmlText string) (*nfe.Document, error)

	// PrecheckInvoice runs the cheap structural heuristic before a full parse.
	PrecheckInvoice(xmlText string) nfe.ValidationReport

	// SummarizeInvoice produces the preview-card projection.
	SummarizeInvoice(xmlText string) (*nfe.Summary, error)

	GetImport(ctx context.Context, companyID, id string) (*model.NfeImport, error)
	ListImports(ctx context.Context, companyID string, page, limit int) ([]model.NfeImport, int64, error)
}

type importService struct {
	importRepo repository.NfeImportRepository
	partyRepo  repository.PartyRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
	hub        *websocket.Hub
	logger     *zap.Logger
}

func NewImportService(
	importRepo repository.NfeImportRepository,
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
	logger *zap.Logger,
) ImportService {
	return &importService{
		importRepo: importRepo,
		partyRepo:  partyRepo,
		auditRepo:  auditRepo,
		txManager:  txManager,
		hub:        hub,
		logger:     logger,
	}
}

// --- Implementation ---

func (s *importService) ImportInvoice(ctx context.Context, companyID, xmlText string) (*model.NfeImport, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	doc, err := nfe.Parse(xmlText)
	if err != nil {
		return nil, err
	}

	if existing, err := s.importRepo.FindByAccessKey(ctx, company, doc.Invoice.AccessKey); err == nil {
		return existing, ErrDuplicateImport
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for duplicate import: %w", err)
	}

	for _, w := range doc.Warnings {
		s.logger.Warn("invoice field defaulted during normalization",
			zap.String("access_key", doc.Invoice.AccessKey),
			zap.String("field", w.Field),
			zap.String("reason", w.Reason),
		)
	}

	imp := toImportModel(company, doc)
	imp.ImportedBy = actorFrom(ctx)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if doc.Invoice.OperationType == nfe.OperationInbound {
			if err := s.registerSupplier(txCtx, company, doc.Emitter); err != nil {
				return err
			}
		}

		if err := s.importRepo.Create(txCtx, imp); err != nil {
			return fmt.Errorf("failed to persist import: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionImportNfe,
			EntityID:   imp.ID.String(),
			EntityName: imp.AccessKey,
			Details:    fmt.Sprintf(`{"number":%q,"items":%d,"warnings":%d}`, imp.Number, len(imp.Items), imp.WarningCount),
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.NotifyEvent(companyID, websocket.EventNfeImported, map[string]string{
		"access_key": imp.AccessKey,
		"number":     imp.Number,
		"emitter":    imp.EmitterName,
	})

	return s.importRepo.FindByIDWithItems(ctx, imp.ID)
}

func (s *importService) ParseInvoice(xmlText string) (*nfe.Document, error) {
	return nfe.Parse(xmlText)
}

func (s *importService) PrecheckInvoice(xmlText string) nfe.ValidationReport {
	return nfe.Validate(xmlText)
}

func (s *importService) SummarizeInvoice(xmlText string) (*nfe.Summary, error) {
	return nfe.Summarize(xmlText)
}

func (s *importService) GetImport(ctx context.Context, companyID, id string) (*model.NfeImport, error) {
	importID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid import id: %w", err)
	}
	imp, err := s.importRepo.FindByIDWithItems(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("import not found: %w", err)
	}
	if imp.CompanyID.String() != companyID {
		return nil, fmt.Errorf("import not found")
	}
	return imp, nil
}

func (s *importService) ListImports(ctx context.Context, companyID string, page, limit int) ([]model.NfeImport, int64, error) {
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
	return s.importRepo.List(ctx, company, page, limit)
}

// --- Helpers ---

// registerSupplier creates a supplier party from the invoice emitter unless
// one with the same tax id already exists.
func (s *importService) registerSupplier(ctx context.Context, company uuid.UUID, emitter nfe.Party) error {
	taxID := emitter.CNPJ
	if taxID == "" {
		taxID = emitter.CPF
	}
	if taxID == "" {
		return nil
	}

	_, err := s.partyRepo.FindByTaxID(ctx, company, taxID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to look up supplier: %w", err)
	}

	party := &model.Party{
		CompanyID:  company,
		Type:       model.PartyTypeSupplier,
		TaxIDCNPJ:  emitter.CNPJ,
		TaxIDCPF:   emitter.CPF,
		LegalName:  emitter.LegalName,
		TradeName:  emitter.TradeName,
		Street:     emitter.Address.Street,
		Number:     emitter.Address.Number,
		Complement: emitter.Address.Complement,
		District:   emitter.Address.District,
		City:       emitter.Address.City,
		State:      emitter.Address.State,
		ZipCode:    emitter.Address.ZipCode,
		Email:      emitter.Email,
		Phone:      emitter.Phone,
		IsActive:   true,
	}
	if err := s.partyRepo.Create(ctx, party); err != nil {
		return fmt.Errorf("failed to register supplier: %w", err)
	}

	s.logger.Info("registered supplier from imported invoice",
		zap.String("tax_id", taxID),
		zap.String("legal_name", emitter.LegalName),
	)
	return nil
}

func toImportModel(company uuid.UUID, doc *nfe.Document) *model.NfeImport {
	emitterTaxID := doc.Emitter.CNPJ
	if emitterTaxID == "" {
		emitterTaxID = doc.Emitter.CPF
	}
	recipientTaxID := doc.Recipient.CNPJ
	if recipientTaxID == "" {
		recipientTaxID = doc.Recipient.CPF
	}

	items := make([]model.NfeImportItem, 0, len(doc.Items))
	for i, item := range doc.Items {
		items = append(items, model.NfeImportItem{
			Position:     i + 1,
			ExternalCode: item.ExternalCode,
			Description:  item.Description,
			Quantity:     item.Quantity,
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice,
			TotalValue:   item.TotalValue,
			NCMCode:      item.NCMCode,
			CFOPCode:     item.CFOPCode,
			Note:         item.Note,
		})
	}

	return &model.NfeImport{
		CompanyID:       company,
		AccessKey:       doc.Invoice.AccessKey,
		Number:          doc.Invoice.Number,
		Series:          doc.Invoice.Series,
		IssueDate:       doc.Invoice.IssueDate,
		DueDate:         doc.Invoice.DueDate,
		OperationType:   string(doc.Invoice.OperationType),
		OperationNature: doc.Invoice.OperationNature,
		ProtocolNumber:  doc.Invoice.ProtocolNumber,
		ProtocolDate:    doc.Invoice.ProtocolDate,
		EmitterName:     doc.Emitter.LegalName,
		EmitterTaxID:    emitterTaxID,
		RecipientName:   doc.Recipient.LegalName,
		RecipientTaxID:  recipientTaxID,
		Notes:           doc.Invoice.Notes,
		WarningCount:    len(doc.Warnings),
		Items:           items,
	}
}
