package nfe

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// accessKeyPrefix is the literal prefix the infNFe Id attribute carries in
// front of the 44-digit access key.
const accessKeyPrefix = "NFe"

// shapeMatcher recognizes one known outer envelope and resolves the core
// info container inside it. Matchers are tried in fixed priority order so new
// vendor variants can be appended without restructuring control flow.
type shapeMatcher struct {
	name    string
	match   func(root *node) bool
	resolve func(root *node) *node
}

var shapeMatchers = []shapeMatcher{
	{
		// <nfeProc><NFe><infNFe>: the processed envelope returned by the
		// issuing authority after authorization.
		name:  "proc-envelope",
		match: func(root *node) bool { return root.child("NFe") != nil },
		resolve: func(root *node) *node {
			return root.child("NFe").child("infNFe")
		},
	},
	{
		// <NFe><infNFe>: the bare invoice element.
		name:  "bare-invoice",
		match: func(root *node) bool { return strings.EqualFold(root.name, "NFe") },
		resolve: func(root *node) *node {
			return root.child("infNFe")
		},
	},
	{
		// Namespaced or ERP-specific variants: any root whose name contains
		// the marker, holding either a nested info block or being the info
		// container itself.
		name: "marker-variant",
		match: func(root *node) bool {
			return strings.Contains(strings.ToLower(root.name), "nfe")
		},
		resolve: func(root *node) *node {
			if inf := root.child("infNFe"); inf != nil {
				return inf
			}
			if root.child("ide") != nil || root.child("emit") != nil {
				return root
			}
			return nil
		},
	},
}

// Parse normalizes raw invoice XML into a Document.
//
// It fails with *ParseError when the input is not well-formed markup, with
// *MalformedDocumentError when no recognizable invoice root is found, and
// with *MissingFieldError when a structurally required element (the core
// info block, a party address, a line item's product block, or the access
// key) is absent. Dirty field-level data never aborts ingestion: numeric
// fields default to zero and the issue date to the current time, each
// recorded as a Warning on the returned document.
func Parse(xmlText string) (*Document, error) {
	return parseAt(xmlText, time.Now)
}

// parseAt is Parse with an injectable clock for the issue-date fallback.
func parseAt(xmlText string, now func() time.Time) (*Document, error) {
	root, err := buildTree(strings.NewReader(xmlText))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	info, err := findInfoBlock(root)
	if err != nil {
		return nil, err
	}

	ex := &extractor{now: now}

	doc := &Document{}
	if doc.Invoice, err = ex.extractInvoice(root, info); err != nil {
		return nil, err
	}
	if doc.Emitter, err = ex.extractParty(info, "emit"); err != nil {
		return nil, err
	}
	if doc.Recipient, err = ex.extractParty(info, "dest"); err != nil {
		return nil, err
	}
	if doc.Items, err = ex.extractItems(info); err != nil {
		return nil, err
	}
	doc.Warnings = ex.warnings

	return doc, nil
}

// findInfoBlock locates the core info container using the ordered shape
// matchers.
func findInfoBlock(root *node) (*node, error) {
	for _, m := range shapeMatchers {
		if !m.match(root) {
			continue
		}
		info := m.resolve(root)
		if info == nil {
			return nil, &MissingFieldError{Field: "infNFe"}
		}
		return info, nil
	}
	return nil, &MalformedDocumentError{}
}

// extractor threads the warning list through the whole extraction pass.
type extractor struct {
	warnings []Warning
	now      func() time.Time
}

func (e *extractor) warn(field, reason string) {
	e.warnings = append(e.warnings, Warning{Field: field, Reason: reason})
}

// decimalField parses a numeric field permissively: missing text is zero,
// unparseable text is zero plus a warning.
func (e *extractor) decimalField(n *node, name, label string) decimal.Decimal {
	raw := n.getField(name)
	if raw == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		e.warn(label, fmt.Sprintf("unparseable numeric value %q, defaulted to 0", raw))
		return decimal.Zero
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// requiredDate substitutes the current time when the value is missing or
// unparseable. A downstream reviewer is expected to correct it.
func (e *extractor) requiredDate(raw, label string) time.Time {
	if t, ok := parseDate(raw); ok {
		return t
	}
	e.warn(label, fmt.Sprintf("unparseable date %q, defaulted to current time", raw))
	return e.now()
}

func (e *extractor) optionalDate(raw, label string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, ok := parseDate(raw); ok {
		return &t
	}
	e.warn(label, fmt.Sprintf("unparseable date %q, dropped", raw))
	return nil
}

func (e *extractor) extractInvoice(root, info *node) (Invoice, error) {
	var inv Invoice

	// Some flattened variants keep the identification fields directly on the
	// info container instead of a nested ide block.
	ide := info.child("ide")
	if ide == nil {
		ide = info
	}

	inv.Number = ide.getField("nNF")
	inv.Series = ide.getField("serie")
	inv.OperationNature = ide.getField("natOp")

	// dhEmi first, dEmi second. The priority order reflects real-world
	// format quirks; do not reorder.
	rawIssue := ide.getField("dhEmi")
	if rawIssue == "" {
		rawIssue = ide.getField("dEmi")
	}
	inv.IssueDate = e.requiredDate(rawIssue, "ide.dhEmi")

	if ide.getField("tpNF") == "1" {
		inv.OperationType = OperationOutbound
	} else {
		inv.OperationType = OperationInbound
	}

	key := strings.TrimSpace(strings.TrimPrefix(info.getField("Id"), accessKeyPrefix))
	if key == "" {
		if ch := root.find("chNFe"); ch != nil {
			key = strings.TrimSpace(ch.text.String())
		}
	}
	if key == "" {
		// The access key is the document's natural external identifier and
		// cannot be synthesized.
		return Invoice{}, &MissingFieldError{Field: "accessKey"}
	}
	inv.AccessKey = key

	if prot := root.find("infProt"); prot != nil {
		inv.ProtocolNumber = prot.getField("nProt")
		inv.ProtocolDate = e.optionalDate(prot.getField("dhRecbto"), "infProt.dhRecbto")
	}

	if cobr := info.child("cobr"); cobr != nil {
		if dup := cobr.child("dup"); dup != nil {
			inv.DueDate = e.optionalDate(dup.getField("dVenc"), "cobr.dup.dVenc")
		}
	}

	if adic := info.child("infAdic"); adic != nil {
		inv.Notes = adic.getField("infCpl")
	}

	return inv, nil
}

// extractParty applies identical logic to the emit and dest sub-blocks.
func (e *extractor) extractParty(info *node, tag string) (Party, error) {
	block := info.child(tag)
	if block == nil {
		return Party{}, &MissingFieldError{Field: tag}
	}

	var p Party
	p.CNPJ = block.getField("CNPJ")
	p.CPF = block.getField("CPF")
	p.LegalName = block.getField("xNome")
	p.TradeName = block.getField("xFant")
	if p.LegalName == "" {
		// Tolerated fallback; both absent leaves the name empty.
		p.LegalName = p.TradeName
	}
	p.Email = block.getField("email")

	addr := block.childContaining("ender")
	if addr == nil {
		return Party{}, &MissingFieldError{Field: tag + " address"}
	}
	p.Address = Address{
		Street:     addr.getField("xLgr"),
		Number:     addr.getField("nro"),
		Complement: addr.getField("xCpl"),
		District:   addr.getField("xBairro"),
		City:       addr.getField("xMun"),
		State:      addr.getField("UF"),
		ZipCode:    addr.getField("CEP"),
	}
	p.Phone = addr.getField("fone")

	return p, nil
}

func (e *extractor) extractItems(info *node) ([]LineItem, error) {
	dets := info.childAll("det")
	items := make([]LineItem, 0, len(dets))

	for i, det := range dets {
		prod := det.child("prod")
		if prod == nil {
			return nil, &MissingFieldError{Field: fmt.Sprintf("det[%d].prod", i)}
		}

		label := fmt.Sprintf("det[%d]", i)
		item := LineItem{
			ExternalCode: prod.getField("cProd"),
			Description:  prod.getField("xProd"),
			Quantity:     e.decimalField(prod, "qCom", label+".qCom"),
			Unit:         prod.getField("uCom"),
			UnitPrice:    e.decimalField(prod, "vUnCom", label+".vUnCom"),
			NCMCode:      prod.getField("NCM"),
			CFOPCode:     prod.getField("CFOP"),
			Note:         det.getField("infAdProd"),
		}

		// Tax-inclusive total first, plain product total second. The
		// priority order reflects real-world format quirks; do not reorder.
		if raw := prod.getField("vTotTrib"); raw != "" {
			item.TotalValue = e.decimalField(prod, "vTotTrib", label+".vTotTrib")
		} else {
			item.TotalValue = e.decimalField(prod, "vProd", label+".vProd")
		}

		items = append(items, item)
	}

	return items, nil
}
