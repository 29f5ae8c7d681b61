package nfe

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// node is a minimal element tree built from the token stream. Attributes are
// merged into the same lookup namespace as child elements, and all lookups
// are case-insensitive, so a field expressed either way resolves through the
// same accessor.
type node struct {
	name     string
	attrs    map[string]string
	text     strings.Builder
	children []*node
}

// buildTree parses the reader into a node tree. Vendor exports are not
// always UTF-8 (ISO-8859-1 is common in older emitters), so the decoder gets
// a charset reader.
func buildTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		enc, err := htmlindex.Get(charset)
		if err != nil {
			return nil, err
		}
		return enc.NewDecoder().Reader(input), nil
	}

	var root *node
	var stack []*node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name.Local, attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.attrs[strings.ToLower(a.Name.Local)] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			} else if root == nil {
				root = n
			}
			stack = append(stack, n)
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].text.Write(t)
			}
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

// child returns the first direct child with the given local name,
// case-insensitively.
func (n *node) child(name string) *node {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
	}
	return nil
}

// childAll returns every direct child with the given local name, in document
// order.
func (n *node) childAll(name string) []*node {
	var out []*node
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			out = append(out, c)
		}
	}
	return out
}

// childContaining returns the first direct child whose name contains the
// marker, case-insensitively. Used for tag families like enderEmit/enderDest.
func (n *node) childContaining(marker string) *node {
	marker = strings.ToLower(marker)
	for _, c := range n.children {
		if strings.Contains(strings.ToLower(c.name), marker) {
			return c
		}
	}
	return nil
}

// find returns the first descendant with the given local name, depth-first.
func (n *node) find(name string) *node {
	for _, c := range n.children {
		if strings.EqualFold(c.name, name) {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// getField resolves a field as either an attribute or a child element text,
// attributes taking precedence. Returns "" when absent.
func (n *node) getField(name string) string {
	if v, ok := n.attrs[strings.ToLower(name)]; ok {
		return strings.TrimSpace(v)
	}
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.text.String())
	}
	return ""
}
