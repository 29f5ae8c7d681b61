package nfe

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType classifies the fiscal direction of the invoice.
type OperationType string

const (
	OperationInbound  OperationType = "INBOUND"
	OperationOutbound OperationType = "OUTBOUND"
)

// Document is the sole output of Parse: one invoice, its two parties and the
// ordered line items, plus the warnings accumulated by permissive field
// parsing. It is immutable once produced and owned by the caller.
type Document struct {
	Invoice   Invoice    `json:"invoice"`
	Emitter   Party      `json:"emitter"`
	Recipient Party      `json:"recipient"`
	Items     []LineItem `json:"items"`
	Warnings  []Warning  `json:"warnings"`
}

// Invoice holds the invoice-level metadata.
type Invoice struct {
	Number          string        `json:"number"`
	Series          string        `json:"series"`
	IssueDate       time.Time     `json:"issue_date"`
	DueDate         *time.Time    `json:"due_date,omitempty"`
	OperationType   OperationType `json:"operation_type"`
	OperationNature string        `json:"operation_nature"`
	AccessKey       string        `json:"access_key"`
	ProtocolNumber  string        `json:"protocol_number,omitempty"`
	ProtocolDate    *time.Time    `json:"protocol_date,omitempty"`
	Notes           string        `json:"notes,omitempty"`
}

// Party is a business entity referenced as emitter or recipient. CNPJ and
// CPF are carried through unvalidated; at most one is expected populated.
type Party struct {
	CNPJ      string  `json:"cnpj,omitempty"`
	CPF       string  `json:"cpf,omitempty"`
	LegalName string  `json:"legal_name"`
	TradeName string  `json:"trade_name,omitempty"`
	Address   Address `json:"address"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
}

// Address is the party address sub-record. Complement is the only optional
// field.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zip_code"`
}

// LineItem is one product line on the invoice.
type LineItem struct {
	ExternalCode string          `json:"external_code"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalValue   decimal.Decimal `json:"total_value"`
	NCMCode      string          `json:"ncm_code,omitempty"`
	CFOPCode     string          `json:"cfop_code,omitempty"`
	Note         string          `json:"note,omitempty"`
}

// Warning records a field that was substituted with a permissive default
// during extraction. Warnings never abort ingestion; downstream review is
// expected to correct the values.
type Warning struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}
