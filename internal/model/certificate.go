package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CertificateStatus enum constants
const (
	CertificatePending  = "PENDING"
	CertificateApproved = "APPROVED"
	CertificateRejected = "REJECTED"
)

// ResultStatus enum constants for individual characteristic results
const (
	ResultPass = "PASS"
	ResultFail = "FAIL"
)

// EntryCertificate records a supplier's lab-analysis results for a received
// product lot. Its Status is recomputed by the validation engine whenever
// results are created or edited.
type EntryCertificate struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"company_id"`
	CertificateNo   string              `gorm:"type:varchar(30);uniqueIndex;not null" json:"certificate_no"`
	ProductID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product            `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SupplierID      *uuid.UUID          `gorm:"type:uuid;index" json:"supplier_id"`
	Supplier        *Party              `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	NfeImportID     *uuid.UUID          `gorm:"type:uuid;index" json:"nfe_import_id"` // Source invoice when pre-filled from an import
	LotNumber       string              `gorm:"type:varchar(100);not null;index" json:"lot_number"`
	ManufactureDate *time.Time          `json:"manufacture_date"`
	ExpirationDate  time.Time           `gorm:"not null;index" json:"expiration_date"`
	Quantity        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"quantity"`
	Unit            string              `gorm:"type:varchar(20)" json:"unit"`
	Status          string              `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Results         []CertificateResult `gorm:"foreignKey:CertificateID;constraint:OnDelete:CASCADE" json:"results"`
	Note            string              `gorm:"type:text" json:"note"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`
}

// CertificateResult is one lab-reported characteristic value with the
// verdict computed against the product specification. Persisted for audit
// display.
type CertificateResult struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CertificateID uuid.UUID `gorm:"type:uuid;not null;index" json:"certificate_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	ReportedValue string    `gorm:"type:varchar(255)" json:"reported_value"`
	Unit          string    `gorm:"type:varchar(20)" json:"unit"`
	Status        string    `gorm:"type:varchar(10);not null" json:"status"` // PASS, FAIL
	Reason        string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IssuedCertificate is an outbound certificate issued to a client,
// referencing a sold quantity from an entry certificate's lot.
type IssuedCertificate struct {
	ID                 uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"company_id"`
	CertificateNo      string            `gorm:"type:varchar(30);uniqueIndex;not null" json:"certificate_no"`
	EntryCertificateID uuid.UUID         `gorm:"type:uuid;not null;index" json:"entry_certificate_id"`
	EntryCertificate   *EntryCertificate `gorm:"foreignKey:EntryCertificateID" json:"entry_certificate,omitempty"`
	ClientID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	Client             *Party            `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Quantity           decimal.Decimal   `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit               string            `gorm:"type:varchar(20)" json:"unit"`
	InvoiceNumber      string            `gorm:"type:varchar(30)" json:"invoice_number"` // Outbound invoice the sale shipped under
	IssuedBy           *uuid.UUID        `gorm:"type:uuid" json:"issued_by"`
	Issuer             *User             `gorm:"foreignKey:IssuedBy" json:"issuer,omitempty"`
	IssuedAt           time.Time         `gorm:"not null" json:"issued_at"`
	Note               string            `gorm:"type:text" json:"note"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
	DeletedAt          gorm.DeletedAt    `gorm:"index" json:"-"`
}
