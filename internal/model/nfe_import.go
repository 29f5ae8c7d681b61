package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationType enum constants mirrored from the ingestion normalizer
const (
	OperationInbound  = "INBOUND"
	OperationOutbound = "OUTBOUND"
)

// NfeImport is a normalized electronic invoice persisted after ingestion.
// AccessKey is the issuing authority's unique identifier; it deduplicates
// repeated uploads per company, since the emitter's and the recipient's
// tenants may each legitimately import the same document.
type NfeImport struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_company_access_key" json:"company_id"`
	AccessKey        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_company_access_key" json:"access_key"`
	Number           string          `gorm:"type:varchar(20);not null" json:"number"`
	Series           string          `gorm:"type:varchar(10)" json:"series"`
	IssueDate        time.Time       `gorm:"not null" json:"issue_date"`
	DueDate          *time.Time      `json:"due_date"`
	OperationType    string          `gorm:"type:varchar(10);not null" json:"operation_type"` // INBOUND, OUTBOUND
	OperationNature  string          `gorm:"type:varchar(255)" json:"operation_nature"`
	ProtocolNumber   string          `gorm:"type:varchar(30)" json:"protocol_number"`
	ProtocolDate     *time.Time      `json:"protocol_date"`
	EmitterName      string          `gorm:"type:varchar(255)" json:"emitter_name"`
	EmitterTaxID     string          `gorm:"type:varchar(20);index" json:"emitter_tax_id"`
	RecipientName    string          `gorm:"type:varchar(255)" json:"recipient_name"`
	RecipientTaxID   string          `gorm:"type:varchar(20);index" json:"recipient_tax_id"`
	Notes            string          `gorm:"type:text" json:"notes"`
	WarningCount     int             `gorm:"type:int;default:0" json:"warning_count"` // Fields defaulted during permissive parsing
	ImportedBy       *uuid.UUID      `gorm:"type:uuid" json:"imported_by"`
	Items            []NfeImportItem `gorm:"foreignKey:NfeImportID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NfeImportItem is one normalized invoice line item, kept in document order.
type NfeImportItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NfeImportID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"nfe_import_id"`
	Position     int             `gorm:"type:int;not null" json:"position"`
	ExternalCode string          `gorm:"type:varchar(100)" json:"external_code"`
	Description  string          `gorm:"type:varchar(255)" json:"description"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"quantity"`
	Unit         string          `gorm:"type:varchar(20)" json:"unit"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"unit_price"`
	TotalValue   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_value"`
	NCMCode      string          `gorm:"type:varchar(20)" json:"ncm_code"`
	CFOPCode     string          `gorm:"type:varchar(10)" json:"cfop_code"`
	Note         string          `gorm:"type:text" json:"note"`
	CreatedAt    time.Time       `json:"created_at"`
}
