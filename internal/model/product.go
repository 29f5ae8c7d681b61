package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckKind enum constants for characteristic specifications
const (
	CheckKindRange = "RANGE"
	CheckKindExact = "EXACT"
)

// Product represents a chemical product with its quality specification
type Product struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID       uuid.UUID               `gorm:"type:uuid;not null;index" json:"company_id"`
	Code            string                  `gorm:"type:varchar(100);not null;index" json:"code"`
	Name            string                  `gorm:"type:varchar(255);not null" json:"name"`
	Unit            string                  `gorm:"type:varchar(20)" json:"unit"`
	NCMCode         string                  `gorm:"type:varchar(20)" json:"ncm_code"`
	Description     string                  `gorm:"type:text" json:"description"`
	ShelfLifeDays   int                     `gorm:"type:int;default:0" json:"shelf_life_days"`
	Characteristics []ProductCharacteristic `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"characteristics"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	DeletedAt       gorm.DeletedAt          `gorm:"index" json:"-"`
}

// ProductCharacteristic is one acceptance criterion of a product: either a
// numeric [min,max] range or an exact/enumerated expected value.
type ProductCharacteristic struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProductID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_id"`
	Name          string           `gorm:"type:varchar(100);not null" json:"name"`
	Unit          string           `gorm:"type:varchar(20)" json:"unit"`
	CheckKind     string           `gorm:"type:varchar(10);not null" json:"check_kind"` // RANGE, EXACT
	MinValue      *decimal.Decimal `gorm:"type:decimal(18,6)" json:"min_value"`
	MaxValue      *decimal.Decimal `gorm:"type:decimal(18,6)" json:"max_value"`
	ExpectedValue string           `gorm:"type:varchar(255)" json:"expected_value"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
