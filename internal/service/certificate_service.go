package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/quality"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type ReportedResultRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value" binding:"required"`
	Unit  string `json:"unit"`
}

type CreateEntryCertificateRequest struct {
	ProductID       string                  `json:"product_id" binding:"required,uuid"`
	SupplierID      string                  `json:"supplier_id" binding:"omitempty,uuid"`
	NfeImportID     string                  `json:"nfe_import_id" binding:"omitempty,uuid"`
	LotNumber       string                  `json:"lot_number" binding:"required"`
	ManufactureDate *time.Time              `json:"manufacture_date"`
	ExpirationDate  *time.Time              `json:"expiration_date"`
	Quantity        string                  `json:"quantity" binding:"required"`
	Unit            string                  `json:"unit"`
	Note            string                  `json:"note"`
	Results         []ReportedResultRequest `json:"results"`
}

type UpdateResultsRequest struct {
	Results []ReportedResultRequest `json:"results" binding:"required"`
}

type IssueCertificateRequest struct {
	EntryCertificateID string `json:"entry_certificate_id" binding:"required,uuid"`
	ClientID           string `json:"client_id" binding:"required,uuid"`
	Quantity           string `json:"quantity" binding:"required"`
	InvoiceNumber      string `json:"invoice_number"`
	Note               string `json:"note"`
}

type ListCertificatesQuery struct {
	Status    string
	ProductID string
	LotNumber string
	Page      int
	Limit     int
}

// --- Interface ---

type CertificateService interface {
	CreateEntryCertificate(ctx context.Context, companyID string, req CreateEntryCertificateRequest) (*model.EntryCertificate, error)
	GetEntryCertificate(ctx context.Context, companyID, id string) (*model.EntryCertificate, error)
	ListEntryCertificates(ctx context.Context, companyID string, query ListCertificatesQuery) ([]model.EntryCertificate, int64, error)
	UpdateResults(ctx context.Context, companyID, id string, req UpdateResultsRequest) (*model.EntryCertificate, error)

	IssueCertificate(ctx context.Context, companyID string, req IssueCertificateRequest) (*model.IssuedCertificate, error)
	GetIssuedCertificate(ctx context.Context, companyID, id string) (*model.IssuedCertificate, error)
	ListIssuedCertificates(ctx context.Context, companyID string, page, limit int) ([]model.IssuedCertificate, int64, error)
}

type certificateService struct {
	certRepo    repository.CertificateRepository
	productRepo repository.ProductRepository
	partyRepo   repository.PartyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewCertificateService(
	certRepo repository.CertificateRepository,
	productRepo repository.ProductRepository,
	partyRepo repository.PartyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) CertificateService {
	return &certificateService{
		certRepo:    certRepo,
		productRepo: productRepo,
		partyRepo:   partyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Entry certificates ---

func (s *certificateService) CreateEntryCertificate(ctx context.Context, companyID string, req CreateEntryCertificateRequest) (*model.EntryCertificate, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("invalid product id: %w", err)
	}
	product, err := s.productRepo.FindByIDWithCharacteristics(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}
	if product.CompanyID != company {
		return nil, fmt.Errorf("product not found")
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	expiration, err := resolveExpiration(req, product)
	if err != nil {
		return nil, err
	}

	cert := &model.EntryCertificate{
		CompanyID:       company,
		ProductID:       product.ID,
		LotNumber:       req.LotNumber,
		ManufactureDate: req.ManufactureDate,
		ExpirationDate:  expiration,
		Quantity:        quantity,
		Unit:            req.Unit,
		Note:            req.Note,
	}
	if cert.Unit == "" {
		cert.Unit = product.Unit
	}

	if req.SupplierID != "" {
		supplierID, err := uuid.Parse(req.SupplierID)
		if err != nil {
			return nil, fmt.Errorf("invalid supplier id: %w", err)
		}
		supplier, err := s.partyRepo.FindByID(ctx, supplierID)
		if err != nil {
			return nil, fmt.Errorf("supplier not found: %w", err)
		}
		if supplier.CompanyID != company {
			return nil, fmt.Errorf("supplier not found")
		}
		cert.SupplierID = &supplier.ID
	}
	if req.NfeImportID != "" {
		importID, err := uuid.Parse(req.NfeImportID)
		if err != nil {
			return nil, fmt.Errorf("invalid nfe import id: %w", err)
		}
		cert.NfeImportID = &importID
	}

	verdict, err := s.evaluate(product, req.Results)
	if err != nil {
		return nil, err
	}
	cert.Status = verdict.Overall
	cert.Results = toResultModels(verdict, req.Results)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, err := s.nextCertificateNo(txCtx, "CERT")
		if err != nil {
			return err
		}
		cert.CertificateNo = number

		if err := s.certRepo.Create(txCtx, cert); err != nil {
			return fmt.Errorf("failed to create certificate: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionCreateEntryCertificate,
			EntityID:   cert.ID.String(),
			EntityName: cert.CertificateNo,
			Details:    fmt.Sprintf(`{"status":%q,"lot_number":%q}`, cert.Status, cert.LotNumber),
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.NotifyEvent(companyID, websocket.EventCertificateValidated, map[string]string{
		"certificate_no": cert.CertificateNo,
		"status":         cert.Status,
	})

	return s.certRepo.FindByIDWithDetails(ctx, cert.ID)
}

func (s *certificateService) GetEntryCertificate(ctx context.Context, companyID, id string) (*model.EntryCertificate, error) {
	return s.findOwnedEntry(ctx, companyID, id)
}

func (s *certificateService) ListEntryCertificates(ctx context.Context, companyID string, query ListCertificatesQuery) ([]model.EntryCertificate, int64, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid company id: %w", err)
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	filter := repository.CertificateListFilter{
		CompanyID: company,
		Status:    query.Status,
		LotNumber: query.LotNumber,
		Page:      query.Page,
		Limit:     query.Limit,
	}
	if query.ProductID != "" {
		productID, err := uuid.Parse(query.ProductID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid product id: %w", err)
		}
		filter.ProductID = &productID
	}

	return s.certRepo.List(ctx, filter)
}

// UpdateResults replaces the reported results of an entry certificate and
// recomputes its status against the current product specification.
func (s *certificateService) UpdateResults(ctx context.Context, companyID, id string, req UpdateResultsRequest) (*model.EntryCertificate, error) {
	cert, err := s.findOwnedEntry(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByIDWithCharacteristics(ctx, cert.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}

	verdict, err := s.evaluate(product, req.Results)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.certRepo.ReplaceResults(txCtx, cert.ID, toResultModels(verdict, req.Results)); err != nil {
			return fmt.Errorf("failed to replace results: %w", err)
		}
		cert.Status = verdict.Overall
		cert.Results = nil
		if err := s.certRepo.Update(txCtx, cert); err != nil {
			return fmt.Errorf("failed to update certificate: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionRevalidateCertificate,
			EntityID:   cert.ID.String(),
			EntityName: cert.CertificateNo,
			Details:    fmt.Sprintf(`{"status":%q}`, cert.Status),
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.NotifyEvent(companyID, websocket.EventCertificateValidated, map[string]string{
		"certificate_no": cert.CertificateNo,
		"status":         cert.Status,
	})

	return s.certRepo.FindByIDWithDetails(ctx, cert.ID)
}

// --- Issued certificates ---

func (s *certificateService) IssueCertificate(ctx context.Context, companyID string, req IssueCertificateRequest) (*model.IssuedCertificate, error) {
	company, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}

	entry, err := s.findOwnedEntry(ctx, companyID, req.EntryCertificateID)
	if err != nil {
		return nil, err
	}
	if entry.Status != model.CertificateApproved {
		return nil, fmt.Errorf("entry certificate %s is not approved", entry.CertificateNo)
	}
	if risk := quality.ClassifyExpiration(entry.ExpirationDate, time.Now()); risk.Category == quality.RiskExpired {
		return nil, fmt.Errorf("lot %s expired %d day(s) ago", entry.LotNumber, -risk.DaysUntil)
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return nil, fmt.Errorf("invalid client id: %w", err)
	}
	client, err := s.partyRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("client not found: %w", err)
	}
	if client.CompanyID != company {
		return nil, fmt.Errorf("client not found")
	}
	if client.Type == model.PartyTypeSupplier {
		return nil, fmt.Errorf("party %s is not a client", client.LegalName)
	}

	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity: %w", err)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("quantity must be positive")
	}

	issued := &model.IssuedCertificate{
		CompanyID:          company,
		EntryCertificateID: entry.ID,
		ClientID:           client.ID,
		Quantity:           quantity,
		Unit:               entry.Unit,
		InvoiceNumber:      req.InvoiceNumber,
		IssuedBy:           actorFrom(ctx),
		IssuedAt:           time.Now(),
		Note:               req.Note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		alreadyIssued, err := s.issuedQuantity(txCtx, entry.ID)
		if err != nil {
			return err
		}
		remaining := entry.Quantity.Sub(alreadyIssued)
		if quantity.GreaterThan(remaining) {
			return fmt.Errorf("insufficient lot quantity: requested %s, remaining %s", quantity, remaining)
		}

		number, err := s.nextIssuedNo(txCtx, "ICERT")
		if err != nil {
			return err
		}
		issued.CertificateNo = number

		if err := s.certRepo.CreateIssued(txCtx, issued); err != nil {
			return fmt.Errorf("failed to issue certificate: %w", err)
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			UserID:     actorFrom(txCtx),
			Action:     model.ActionIssueCertificate,
			EntityID:   issued.ID.String(),
			EntityName: issued.CertificateNo,
			Details:    fmt.Sprintf(`{"entry_certificate":%q,"client":%q}`, entry.CertificateNo, client.LegalName),
		})
	})
	if err != nil {
		return nil, err
	}

	s.hub.NotifyEvent(companyID, websocket.EventCertificateIssued, map[string]string{
		"certificate_no": issued.CertificateNo,
		"client":         client.LegalName,
	})

	return s.certRepo.FindIssuedByID(ctx, issued.ID)
}

func (s *certificateService) GetIssuedCertificate(ctx context.Context, companyID, id string) (*model.IssuedCertificate, error) {
	issuedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid certificate id: %w", err)
	}
	issued, err := s.certRepo.FindIssuedByID(ctx, issuedID)
	if err != nil {
		return nil, fmt.Errorf("certificate not found: %w", err)
	}
	if issued.CompanyID.String() != companyID {
		return nil, fmt.Errorf("certificate not found")
	}
	return issued, nil
}

func (s *certificateService) ListIssuedCertificates(ctx context.Context, companyID string, page, limit int) ([]model.IssuedCertificate, int64, error) {
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
	return s.certRepo.ListIssued(ctx, company, page, limit)
}

// --- Helpers ---

// evaluate runs the validation engine against the product's specification.
func (s *certificateService) evaluate(product *model.Product, results []ReportedResultRequest) (quality.Verdict, error) {
	specs := make([]quality.CharacteristicSpec, 0, len(product.Characteristics))
	for _, c := range product.Characteristics {
		spec := quality.CharacteristicSpec{
			Name:     c.Name,
			Unit:     c.Unit,
			Kind:     quality.CheckKind(c.CheckKind),
			Expected: c.ExpectedValue,
		}
		if c.MinValue != nil {
			spec.Min = *c.MinValue
		}
		if c.MaxValue != nil {
			spec.Max = *c.MaxValue
		}
		specs = append(specs, spec)
	}

	reported := make([]quality.ReportedResult, 0, len(results))
	for _, r := range results {
		reported = append(reported, quality.ReportedResult{Name: r.Name, Value: r.Value})
	}

	return quality.ValidateCertificate(specs, reported)
}

// toResultModels zips engine verdict details with the submitted units for
// persistence. Detail order follows the specification order.
func toResultModels(verdict quality.Verdict, results []ReportedResultRequest) []model.CertificateResult {
	units := make(map[string]string, len(results))
	for _, r := range results {
		if _, ok := units[r.Name]; !ok {
			units[r.Name] = r.Unit
		}
	}

	models := make([]model.CertificateResult, 0, len(verdict.Details))
	for _, d := range verdict.Details {
		models = append(models, model.CertificateResult{
			Name:          d.Name,
			ReportedValue: d.ReportedValue,
			Unit:          units[d.Name],
			Status:        d.Status,
			Reason:        d.Reason,
		})
	}
	return models
}

// resolveExpiration prefers the explicit expiration date, falling back to
// manufacture date plus the product's shelf life.
func resolveExpiration(req CreateEntryCertificateRequest, product *model.Product) (time.Time, error) {
	if req.ExpirationDate != nil {
		return *req.ExpirationDate, nil
	}
	if req.ManufactureDate != nil && product.ShelfLifeDays > 0 {
		return req.ManufactureDate.AddDate(0, 0, product.ShelfLifeDays), nil
	}
	return time.Time{}, fmt.Errorf("expiration_date is required when the product has no shelf life")
}

func (s *certificateService) issuedQuantity(ctx context.Context, entryCertID uuid.UUID) (decimal.Decimal, error) {
	raw, err := s.certRepo.SumIssuedQuantity(ctx, entryCertID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum issued quantity: %w", err)
	}
	sum, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid issued quantity sum %q: %w", raw, err)
	}
	return sum, nil
}

// nextCertificateNo generates a sequential number like CERT-20260831-00001.
func (s *certificateService) nextCertificateNo(ctx context.Context, kind string) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", kind, time.Now().Format("20060102"))
	count, err := s.certRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count certificates: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *certificateService) nextIssuedNo(ctx context.Context, kind string) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", kind, time.Now().Format("20060102"))
	count, err := s.certRepo.CountIssuedByPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to count issued certificates: %w", err)
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *certificateService) findOwnedEntry(ctx context.Context, companyID, id string) (*model.EntryCertificate, error) {
	certID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid certificate id: %w", err)
	}
	cert, err := s.certRepo.FindByIDWithDetails(ctx, certID)
	if err != nil {
		return nil, fmt.Errorf("certificate not found: %w", err)
	}
	if cert.CompanyID.String() != companyID {
		return nil, fmt.Errorf("certificate not found")
	}
	return cert, nil
}
