package nfe

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_EmptyInput(t *testing.T) {
	report := Validate("   \n\t ")
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "document is empty", report.Errors[0])
}

func TestValidate_NotAnInvoice(t *testing.T) {
	report := Validate(`<order><item>x</item></order>`)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "no NFe invoice marker found")
}

func TestValidate_MissingSections(t *testing.T) {
	report := Validate(`<NFe><infNFe><emit/></infNFe></NFe>`)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, `missing required section "dest"`)
	assert.Contains(t, report.Errors, `missing required section "det"`)
	assert.NotContains(t, report.Errors, `missing required section "emit"`)
}

func TestValidate_CompleteDocument(t *testing.T) {
	report := Validate(procEnvelope(infNFeBody))
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
}

func TestValidate_NeverPanicsOnGarbage(t *testing.T) {
	for _, input := range []string{"<<<>>>", "\x00\x01", strings.Repeat("x", 1024)} {
		assert.NotPanics(t, func() { Validate(input) })
	}
}

func TestSummarize(t *testing.T) {
	secondDet := `
  <det nItem="2">
    <prod>
      <cProd>P002</cProd>
      <xProd>Acido Sulfurico</xProd>
      <uCom>L</uCom>
      <qCom>50</qCom>
      <vUnCom>10</vUnCom>
      <vProd>500.00</vProd>
    </prod>
  </det>`

	summary, err := Summarize(procEnvelope(infNFeBody + secondDet))
	require.NoError(t, err)

	assert.Equal(t, "4", summary.Number)
	assert.Equal(t, "1", summary.Series)
	assert.Equal(t, "10/07/2020", summary.IssueDate)
	assert.Equal(t, "Distribuidora XYZ SA", summary.RecipientName)
	assert.Equal(t, "05570714000159", summary.RecipientTaxID)
	assert.Equal(t, 2, summary.ItemCount)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("3000")))
}

func TestSummarize_RecipientTaxIDFallsBackToCPF(t *testing.T) {
	body := strings.Replace(infNFeBody, "<CNPJ>05570714000159</CNPJ>", "<CPF>12345678909</CPF>", 1)

	summary, err := Summarize(procEnvelope(body))
	require.NoError(t, err)
	assert.Equal(t, "12345678909", summary.RecipientTaxID)
}

func TestSummarize_PropagatesParseErrors(t *testing.T) {
	_, err := Summarize(`<order/>`)
	var malformed *MalformedDocumentError
	require.ErrorAs(t, err, &malformed)
}
