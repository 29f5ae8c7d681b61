package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/model"
	"backend/internal/nfe"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubImportRepo struct {
	existing *model.NfeImport
	created  *model.NfeImport
}

func (s *stubImportRepo) Create(_ context.Context, imp *model.NfeImport) error {
	imp.ID = uuid.New()
	s.created = imp
	return nil
}

func (s *stubImportRepo) FindByID(_ context.Context, _ uuid.UUID) (*model.NfeImport, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubImportRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.NfeImport, error) {
	if s.created != nil && s.created.ID == id {
		return s.created, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubImportRepo) FindByAccessKey(_ context.Context, companyID uuid.UUID, accessKey string) (*model.NfeImport, error) {
	if s.existing != nil && s.existing.CompanyID == companyID && s.existing.AccessKey == accessKey {
		return s.existing, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubImportRepo) List(_ context.Context, _ uuid.UUID, _, _ int) ([]model.NfeImport, int64, error) {
	return nil, 0, nil
}

type stubAuditRepo struct {
	entries []*model.AuditLog
}

func (s *stubAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubAuditRepo) List(_ context.Context, _ string, _, _ int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// Outbound invoice so no supplier registration is attempted.
const outboundInvoiceXML = `<NFe>
  <infNFe Id="NFe35200714200166000187550010000000046550010846">
    <ide>
      <nNF>46</nNF>
      <serie>1</serie>
      <tpNF>1</tpNF>
      <dhEmi>2026-07-01T09:00:00</dhEmi>
      <natOp>Venda</natOp>
    </ide>
    <emit>
      <CNPJ>14200166000187</CNPJ>
      <xNome>Quimica Alfa Ltda</xNome>
      <enderEmit><xLgr>Rua A</xLgr><nro>10</nro></enderEmit>
    </emit>
    <dest>
      <CNPJ>12345678000190</CNPJ>
      <xNome>Beta Distribuidora</xNome>
      <enderDest><xLgr>Rua B</xLgr><nro>20</nro></enderDest>
    </dest>
    <det>
      <prod>
        <cProd>P001</cProd>
        <xProd>Soda Caustica</xProd>
        <uCom>KG</uCom>
        <qCom>100</qCom>
        <vUnCom>5</vUnCom>
        <vProd>500.00</vProd>
      </prod>
    </det>
  </infNFe>
</NFe>`

func newImportServiceForTest(importRepo repository.NfeImportRepository) ImportService {
	return NewImportService(importRepo, nil, &stubAuditRepo{}, passthroughTxManager{}, websocket.NewHub(), zap.NewNop())
}

func TestImportInvoiceDuplicateSameCompany(t *testing.T) {
	company := uuid.New()
	existing := &model.NfeImport{
		ID:        uuid.New(),
		CompanyID: company,
		AccessKey: "35200714200166000187550010000000046550010846",
	}
	repo := &stubImportRepo{existing: existing}
	svc := newImportServiceForTest(repo)

	imp, err := svc.ImportInvoice(context.Background(), company.String(), outboundInvoiceXML)
	require.ErrorIs(t, err, ErrDuplicateImport)
	require.NotNil(t, imp)
	assert.Equal(t, existing.ID, imp.ID)
	assert.Nil(t, repo.created, "duplicate must not reach Create")
}

func TestImportInvoiceSameAccessKeyOtherCompanyProceeds(t *testing.T) {
	otherCompany := uuid.New()
	existing := &model.NfeImport{
		ID:        uuid.New(),
		CompanyID: otherCompany,
		AccessKey: "35200714200166000187550010000000046550010846",
	}
	repo := &stubImportRepo{existing: existing}
	svc := newImportServiceForTest(repo)

	// The recipient's tenant imports the same document the emitter's tenant
	// already holds; deduplication is per company.
	company := uuid.New()
	imp, err := svc.ImportInvoice(context.Background(), company.String(), outboundInvoiceXML)
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.Equal(t, company, imp.CompanyID)
	assert.Equal(t, existing.AccessKey, imp.AccessKey)
}

func TestToImportModelMapsDocument(t *testing.T) {
	company := uuid.New()
	issued := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	doc := &nfe.Document{
		Invoice: nfe.Invoice{
			Number:          "12345",
			Series:          "1",
			IssueDate:       issued,
			OperationType:   nfe.OperationInbound,
			OperationNature: "Compra para industrializacao",
			AccessKey:       "35260712345678000190550010000123451000123456",
		},
		Emitter:   nfe.Party{CNPJ: "12345678000190", LegalName: "Quimica Alfa Ltda"},
		Recipient: nfe.Party{CPF: "12345678901", LegalName: "Beta Distribuidora"},
		Items: []nfe.LineItem{
			{ExternalCode: "SKU-1", Description: "Soda caustica", Quantity: decimal.NewFromInt(100), Unit: "KG"},
			{ExternalCode: "SKU-2", Description: "Acido sulfurico", Quantity: decimal.NewFromInt(50), Unit: "L"},
		},
		Warnings: []nfe.Warning{{Field: "vUnCom", Reason: "invalid decimal"}},
	}

	imp := toImportModel(company, doc)

	assert.Equal(t, company, imp.CompanyID)
	assert.Equal(t, doc.Invoice.AccessKey, imp.AccessKey)
	assert.Equal(t, "INBOUND", imp.OperationType)
	assert.Equal(t, "12345678000190", imp.EmitterTaxID)
	assert.Equal(t, "12345678901", imp.RecipientTaxID)
	assert.Equal(t, 1, imp.WarningCount)

	require.Len(t, imp.Items, 2)
	assert.Equal(t, 1, imp.Items[0].Position)
	assert.Equal(t, 2, imp.Items[1].Position)
	assert.Equal(t, "SKU-2", imp.Items[1].ExternalCode)
}
