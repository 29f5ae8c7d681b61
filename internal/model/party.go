package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartyType enum constants
const (
	PartyTypeSupplier = "SUPPLIER"
	PartyTypeClient   = "CLIENT"
	PartyTypeBoth     = "BOTH"
)

// Party represents a supplier, a client, or both. Parties are frequently
// pre-filled from an imported invoice's emitter or recipient record.
type Party struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Type       string         `gorm:"type:varchar(20);not null;index" json:"type"` // SUPPLIER, CLIENT, BOTH
	TaxIDCNPJ  string         `gorm:"type:varchar(20);index" json:"tax_id_cnpj"`
	TaxIDCPF   string         `gorm:"type:varchar(20)" json:"tax_id_cpf"`
	LegalName  string         `gorm:"type:varchar(255);not null" json:"legal_name"`
	TradeName  string         `gorm:"type:varchar(255)" json:"trade_name"`
	Street     string         `gorm:"type:varchar(255)" json:"street"`
	Number     string         `gorm:"type:varchar(20)" json:"number"`
	Complement string         `gorm:"type:varchar(100)" json:"complement"`
	District   string         `gorm:"type:varchar(100)" json:"district"`
	City       string         `gorm:"type:varchar(100)" json:"city"`
	State      string         `gorm:"type:varchar(2)" json:"state"`
	ZipCode    string         `gorm:"type:varchar(10)" json:"zip_code"`
	Email      string         `gorm:"type:varchar(255)" json:"email"`
	Phone      string         `gorm:"type:varchar(50)" json:"phone"`
	IsActive   bool           `gorm:"default:true" json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
