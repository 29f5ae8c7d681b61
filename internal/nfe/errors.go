package nfe

import "fmt"

// ParseError means the input is not well-formed markup. It wraps the
// underlying XML syntax error so callers can surface the parser message.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nfe: malformed XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MalformedDocumentError means the markup is well formed but none of the
// known invoice shapes was recognized.
type MalformedDocumentError struct{}

func (e *MalformedDocumentError) Error() string {
	return "nfe: document is not a recognized invoice format"
}

// MissingFieldError means the invoice shape was recognized but a
// structurally required element is absent. Field names the missing element
// to aid debugging malformed vendor exports.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("nfe: required field %q is missing", e.Field)
}
