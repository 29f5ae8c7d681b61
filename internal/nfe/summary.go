package nfe

import "github.com/shopspring/decimal"

// Summary is a display-ready projection of a parsed invoice for a preview
// card. Derived on demand, never stored.
type Summary struct {
	Number         string          `json:"number"`
	Series         string          `json:"series"`
	IssueDate      string          `json:"issue_date"`
	RecipientName  string          `json:"recipient_name"`
	RecipientTaxID string          `json:"recipient_tax_id"`
	ItemCount      int             `json:"item_count"`
	TotalValue     decimal.Decimal `json:"total_value"`
}

// Summarize runs full normalization and reduces the item list into a preview
// projection.
func Summarize(xmlText string) (*Summary, error) {
	doc, err := Parse(xmlText)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, item := range doc.Items {
		total = total.Add(item.TotalValue)
	}

	taxID := doc.Recipient.CNPJ
	if taxID == "" {
		taxID = doc.Recipient.CPF
	}

	return &Summary{
		Number:         doc.Invoice.Number,
		Series:         doc.Invoice.Series,
		IssueDate:      doc.Invoice.IssueDate.Format("02/01/2006"),
		RecipientName:  doc.Recipient.LegalName,
		RecipientTaxID: taxID,
		ItemCount:      len(doc.Items),
		TotalValue:     total,
	}, nil
}
