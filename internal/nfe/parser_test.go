package nfe

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const infNFeBody = `
  <ide>
    <nNF>4</nNF>
    <serie>1</serie>
    <dhEmi>2020-07-10T10:30:00-03:00</dhEmi>
    <tpNF>1</tpNF>
    <natOp>VENDA DE PRODUCAO</natOp>
  </ide>
  <emit>
    <CNPJ>14200166000187</CNPJ>
    <xNome>Quimica Industrial Ltda</xNome>
    <xFant>QuimInd</xFant>
    <enderEmit>
      <xLgr>Rua das Industrias</xLgr>
      <nro>100</nro>
      <xBairro>Distrito Industrial</xBairro>
      <xMun>Sao Paulo</xMun>
      <UF>SP</UF>
      <CEP>01000000</CEP>
      <fone>1133334444</fone>
    </enderEmit>
  </emit>
  <dest>
    <CNPJ>05570714000159</CNPJ>
    <xNome>Distribuidora XYZ SA</xNome>
    <enderDest>
      <xLgr>Avenida Central</xLgr>
      <nro>200</nro>
      <xCpl>Galpao 3</xCpl>
      <xBairro>Centro</xBairro>
      <xMun>Campinas</xMun>
      <UF>SP</UF>
      <CEP>13000000</CEP>
    </enderDest>
  </dest>
  <det nItem="1">
    <prod>
      <cProd>P001</cProd>
      <xProd>Soda Caustica 50%</xProd>
      <NCM>28151100</NCM>
      <CFOP>5101</CFOP>
      <uCom>KG</uCom>
      <qCom>1000.0000</qCom>
      <vUnCom>2.5000</vUnCom>
      <vProd>2500.00</vProd>
    </prod>
    <infAdProd>Lote L-2020-07</infAdProd>
  </det>`

const infNFeOpen = `<infNFe Id="NFe35200714200166000187550010000000046550010846" versao="4.00">`

func procEnvelope(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>` + infNFeOpen + body + `</infNFe></NFe>
</nfeProc>`
}

func bareInvoice(body string) string {
	return `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">` + infNFeOpen + body + `</infNFe></NFe>`
}

func markerVariant(body string) string {
	return `<ns2:consultaNFe xmlns:ns2="http://erp.example/schema">` + infNFeOpen + body + `</infNFe></ns2:consultaNFe>`
}

func TestParse_ProcEnvelope(t *testing.T) {
	doc, err := Parse(procEnvelope(infNFeBody))
	require.NoError(t, err)

	assert.Equal(t, "4", doc.Invoice.Number)
	assert.Equal(t, "1", doc.Invoice.Series)
	assert.Equal(t, OperationOutbound, doc.Invoice.OperationType)
	assert.Equal(t, "VENDA DE PRODUCAO", doc.Invoice.OperationNature)
	assert.Equal(t, "35200714200166000187550010000000046550010846", doc.Invoice.AccessKey)

	wantIssue, _ := time.Parse(time.RFC3339, "2020-07-10T10:30:00-03:00")
	assert.True(t, doc.Invoice.IssueDate.Equal(wantIssue))

	assert.Equal(t, "14200166000187", doc.Emitter.CNPJ)
	assert.Equal(t, "Quimica Industrial Ltda", doc.Emitter.LegalName)
	assert.Equal(t, "QuimInd", doc.Emitter.TradeName)
	assert.Equal(t, "Rua das Industrias", doc.Emitter.Address.Street)
	assert.Equal(t, "1133334444", doc.Emitter.Phone)

	assert.Equal(t, "05570714000159", doc.Recipient.CNPJ)
	assert.Equal(t, "Distribuidora XYZ SA", doc.Recipient.LegalName)
	assert.Equal(t, "Galpao 3", doc.Recipient.Address.Complement)

	require.Len(t, doc.Items, 1)
	item := doc.Items[0]
	assert.Equal(t, "P001", item.ExternalCode)
	assert.Equal(t, "Soda Caustica 50%", item.Description)
	assert.True(t, item.Quantity.Equal(decimal.RequireFromString("1000")))
	assert.Equal(t, "KG", item.Unit)
	assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, item.TotalValue.Equal(decimal.RequireFromString("2500")))
	assert.Equal(t, "28151100", item.NCMCode)
	assert.Equal(t, "5101", item.CFOPCode)
	assert.Equal(t, "Lote L-2020-07", item.Note)

	assert.Empty(t, doc.Warnings)
}

func TestParse_RootShapeCoverage(t *testing.T) {
	variants := map[string]string{
		"proc-envelope":  procEnvelope(infNFeBody),
		"bare-invoice":   bareInvoice(infNFeBody),
		"marker-variant": markerVariant(infNFeBody),
	}

	reference, err := Parse(variants["proc-envelope"])
	require.NoError(t, err)

	for name, xmlText := range variants {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(xmlText)
			require.NoError(t, err)
			assert.Equal(t, reference, doc)
		})
	}
}

func TestParse_MarkerVariantAsInfoContainer(t *testing.T) {
	// The matched element itself is the info container: no nested infNFe,
	// but the identification sections sit directly under the root.
	xmlText := `<erpNFeExport>` + infNFeBody +
		`<chNFe>35200714200166000187550010000000046550010846</chNFe></erpNFeExport>`

	doc, err := Parse(xmlText)
	require.NoError(t, err)
	assert.Equal(t, "4", doc.Invoice.Number)
	assert.Equal(t, "35200714200166000187550010000000046550010846", doc.Invoice.AccessKey)
	require.Len(t, doc.Items, 1)
}

func TestParse_ItemListNormalization(t *testing.T) {
	single, err := Parse(procEnvelope(infNFeBody))
	require.NoError(t, err)
	require.Len(t, single.Items, 1)

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

	multi, err := Parse(procEnvelope(infNFeBody + secondDet))
	require.NoError(t, err)
	require.Len(t, multi.Items, 2)

	// The singular shape normalizes identically to the list shape.
	assert.Equal(t, single.Items[0], multi.Items[0])
	assert.Equal(t, "P002", multi.Items[1].ExternalCode)
}

func TestParse_NonNumericQuantityIsLenient(t *testing.T) {
	body := strings.Replace(infNFeBody, "<qCom>1000.0000</qCom>", "<qCom>abc</qCom>", 1)

	doc, err := Parse(procEnvelope(body))
	require.NoError(t, err)

	require.Len(t, doc.Items, 1)
	assert.True(t, doc.Items[0].Quantity.IsZero())
	assert.Equal(t, "Soda Caustica 50%", doc.Items[0].Description)

	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, "det[0].qCom", doc.Warnings[0].Field)
	assert.Contains(t, doc.Warnings[0].Reason, "abc")
}

func TestParse_UnparseableIssueDateDefaultsToNow(t *testing.T) {
	body := strings.Replace(infNFeBody, "<dhEmi>2020-07-10T10:30:00-03:00</dhEmi>", "<dhEmi>10/07/2020</dhEmi>", 1)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	doc, err := parseAt(procEnvelope(body), func() time.Time { return fixed })
	require.NoError(t, err)

	assert.True(t, doc.Invoice.IssueDate.Equal(fixed))
	require.NotEmpty(t, doc.Warnings)
	assert.Equal(t, "ide.dhEmi", doc.Warnings[0].Field)
}

func TestParse_IssueDateFallsBackToDEmi(t *testing.T) {
	body := strings.Replace(infNFeBody, "<dhEmi>2020-07-10T10:30:00-03:00</dhEmi>", "<dEmi>2020-07-10</dEmi>", 1)

	doc, err := Parse(procEnvelope(body))
	require.NoError(t, err)

	want := time.Date(2020, 7, 10, 0, 0, 0, 0, time.UTC)
	assert.True(t, doc.Invoice.IssueDate.Equal(want))
	assert.Empty(t, doc.Warnings)
}

func TestParse_OperationTypeFromCode(t *testing.T) {
	doc, err := Parse(procEnvelope(infNFeBody))
	require.NoError(t, err)
	assert.Equal(t, OperationOutbound, doc.Invoice.OperationType)

	body := strings.Replace(infNFeBody, "<tpNF>1</tpNF>", "<tpNF>0</tpNF>", 1)
	doc, err = Parse(procEnvelope(body))
	require.NoError(t, err)
	assert.Equal(t, OperationInbound, doc.Invoice.OperationType)
}

func TestParse_TotalValuePrefersTaxInclusive(t *testing.T) {
	body := strings.Replace(infNFeBody,
		"<vProd>2500.00</vProd>",
		"<vProd>2500.00</vProd><vTotTrib>2950.00</vTotTrib>", 1)

	doc, err := Parse(procEnvelope(body))
	require.NoError(t, err)
	require.Len(t, doc.Items, 1)
	assert.True(t, doc.Items[0].TotalValue.Equal(decimal.RequireFromString("2950")))
}

func TestParse_LegalNameFallsBackToTradeName(t *testing.T) {
	body := strings.Replace(infNFeBody, "<xNome>Quimica Industrial Ltda</xNome>", "", 1)

	doc, err := Parse(procEnvelope(body))
	require.NoError(t, err)
	assert.Equal(t, "QuimInd", doc.Emitter.LegalName)
}

func TestParse_AttributeAndElementAreInterchangeable(t *testing.T) {
	body := strings.Replace(infNFeBody,
		"<ide>\n    <nNF>4</nNF>",
		`<ide nNF="4">`, 1)

	doc, err := Parse(procEnvelope(body))
	require.NoError(t, err)
	assert.Equal(t, "4", doc.Invoice.Number)
}

func TestParse_AccessKeyFallsBackToProtocol(t *testing.T) {
	noID := strings.Replace(procEnvelope(infNFeBody),
		`Id="NFe35200714200166000187550010000000046550010846" `, "", 1)
	withProt := strings.Replace(noID, "</nfeProc>",
		`<protNFe><infProt><chNFe>35200714200166000187550010000000046550010846</chNFe><nProt>135200001234567</nProt><dhRecbto>2020-07-10T10:31:00-03:00</dhRecbto></infProt></protNFe></nfeProc>`, 1)

	doc, err := Parse(withProt)
	require.NoError(t, err)
	assert.Equal(t, "35200714200166000187550010000000046550010846", doc.Invoice.AccessKey)
	assert.Equal(t, "135200001234567", doc.Invoice.ProtocolNumber)
	require.NotNil(t, doc.Invoice.ProtocolDate)
}

func TestParse_MissingAccessKeyFails(t *testing.T) {
	noID := strings.Replace(procEnvelope(infNFeBody),
		`Id="NFe35200714200166000187550010000000046550010846" `, "", 1)

	_, err := Parse(noID)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Field, "accessKey")
}

func TestParse_MissingRecipientAddressFails(t *testing.T) {
	body := strings.Replace(infNFeBody, "<enderDest>", "<removed>", 1)
	body = strings.Replace(body, "</enderDest>", "</removed>", 1)

	_, err := Parse(procEnvelope(body))
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Field, "dest")
}

func TestParse_MissingProductBlockFails(t *testing.T) {
	body := strings.Replace(infNFeBody, "<prod>", "<goods>", 1)
	body = strings.Replace(body, "</prod>", "</goods>", 1)

	_, err := Parse(procEnvelope(body))
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Field, "prod")
}

func TestParse_NotWellFormedMarkup(t *testing.T) {
	for _, input := range []string{"", "plain text, no markup", "<NFe><infNFe>"} {
		_, err := Parse(input)
		var parseErr *ParseError
		assert.ErrorAs(t, err, &parseErr, "input %q", input)
	}
}

func TestParse_UnrecognizedRootShape(t *testing.T) {
	_, err := Parse(`<order><item><sku>A</sku></item></order>`)
	var malformed *MalformedDocumentError
	require.ErrorAs(t, err, &malformed)
}

func TestParse_EnvelopeWithoutInfoBlockFails(t *testing.T) {
	_, err := Parse(`<nfeProc><NFe><signature>x</signature></NFe></nfeProc>`)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "infNFe", missing.Field)
}

func TestParse_Latin1Charset(t *testing.T) {
	body := strings.Replace(infNFeBody,
		"<xNome>Quimica Industrial Ltda</xNome>",
		"<xNome>Qu\xedmica Industrial Ltda</xNome>", 1)
	xmlText := `<?xml version="1.0" encoding="ISO-8859-1"?>
<NFe>` + infNFeOpen + body + `</infNFe></NFe>`

	doc, err := Parse(xmlText)
	require.NoError(t, err)
	assert.Equal(t, "Química Industrial Ltda", doc.Emitter.LegalName)
}
