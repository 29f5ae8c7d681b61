package model

import "time"

// ExpirationSummaryResponse aggregates lot expiration-risk classifications
// for dashboard display
type ExpirationSummaryResponse struct {
	Expired     int       `json:"expired"`
	Critical    int       `json:"critical"`
	Warning     int       `json:"warning"`
	Safe        int       `json:"safe"`
	TotalLots   int       `json:"total_lots"`
	AtRiskLots  []LotRisk `json:"at_risk_lots"`
	GeneratedAt time.Time `json:"generated_at"`
}

// LotRisk is one at-risk lot entry in the expiration summary
type LotRisk struct {
	CertificateID  string    `json:"certificate_id"`
	CertificateNo  string    `json:"certificate_no"`
	ProductName    string    `json:"product_name"`
	LotNumber      string    `json:"lot_number"`
	ExpirationDate time.Time `json:"expiration_date"`
	DaysUntil      int       `json:"days_until"`
	Category       string    `json:"category"`
}

// CertificateStatusSummary aggregates certificate counts per stored status
type CertificateStatusSummary struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Total    int64 `json:"total"`
}
