package commission

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Kind is the declared kind of an inbound document.
type Kind int

const (
	// UnknownKind is a document the feed could not classify. It is never parsed.
	UnknownKind Kind = iota
	// PaymentStatement is a commission statement listing payments per case.
	PaymentStatement
	// CaseReport is an introducer report listing cases and their status.
	CaseReport
)

func (k Kind) String() string {
	switch k {
	case PaymentStatement:
		return "payment_statement"
	case CaseReport:
		return "case_report"
	default:
		return "unknown"
	}
}

// ParseKind parses a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "payment_statement", "statement":
		return PaymentStatement, nil
	case "case_report", "report":
		return CaseReport, nil
	default:
		return UnknownKind, fmt.Errorf("unknown document kind: %q", s)
	}
}

// Document is a raw, already classified, inbound document.
type Document struct {
	Name     string    // file name, used to pick the decoder from its extension
	Kind     Kind      // declared kind
	Data     []byte    // raw bytes
	Received time.Time // when the feed received it
	Source   string    // free form origin (sender, folder, ...)
}

// Format returns the lower case extension of the document name, without the dot.
func (d Document) Format() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(d.Name)), ".")
}

// Fingerprint returns the content identity of the document.
// Two documents with the same bytes share the same fingerprint whatever their names.
func (d Document) Fingerprint() string {
	sum := sha256.Sum256(d.Data)
	return hex.EncodeToString(sum[:])
}
