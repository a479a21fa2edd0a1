package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/commission"
	"gopkg.in/yaml.v3"
)

// Mapping tells which document columns hold which record fields.
// Column names are matched case and blank insensitive.
type Mapping struct {
	Statement StatementMapping `yaml:"statement"`
	Report    ReportMapping    `yaml:"report"`
}

// StatementMapping lists the accepted headers of payment statement columns.
type StatementMapping struct {
	CaseID      []string `yaml:"case_id"`
	PaymentType []string `yaml:"payment_type"`
	Amount      []string `yaml:"amount"`
	Date        []string `yaml:"date"`
}

// ReportMapping lists the accepted headers of case report columns.
type ReportMapping struct {
	CaseID []string `yaml:"case_id"`
	// Fields maps a ledger field header (like "Full Names") to its accepted headers.
	Fields map[string][]string `yaml:"fields"`
	// JSONPath selects the array of case objects in JSON reports.
	JSONPath string `yaml:"json_path"`
}

// DefaultMapping returns the headers used by the lenders and introducers we know of.
func DefaultMapping() Mapping {
	return Mapping{
		Statement: StatementMapping{
			CaseID:      []string{"Case ID", "Case Ref", "Case Reference"},
			PaymentType: []string{"Payment Type", "Fee Type"},
			Amount:      []string{"Paid", "Amount Paid", "Amount"},
			Date:        []string{"Date", "Payment Date"},
		},
		Report: ReportMapping{
			CaseID: []string{"CaseID", "Case ID", "Case Ref"},
			Fields: map[string][]string{
				"Priority":    {"Priority"},
				"Created":     {"Created", "Created Date", "Date Created"},
				"Report Name": {"Report Name", "Report"},
				"Full Names":  {"Full Names", "Full Name", "Customer", "Client"},
				"Status":      {"Status", "Case Status"},
				"Advisor":     {"Advisor", "Adviser", "Broker"},
			},
			JSONPath: "$[*]",
		},
	}
}

// LoadMapping reads a YAML mapping. Entries it defines replace the default ones,
// entries it omits keep their default.
func LoadMapping(r io.Reader) (Mapping, error) {
	var m Mapping
	if err := yaml.NewDecoder(r).Decode(&m); err != nil && err != io.EOF {
		return Mapping{}, fmt.Errorf("invalid column mapping: %w", err)
	}
	def := DefaultMapping()
	orDefault := func(v, d []string) []string {
		if len(v) == 0 {
			return d
		}
		return v
	}
	m.Statement.CaseID = orDefault(m.Statement.CaseID, def.Statement.CaseID)
	m.Statement.PaymentType = orDefault(m.Statement.PaymentType, def.Statement.PaymentType)
	m.Statement.Amount = orDefault(m.Statement.Amount, def.Statement.Amount)
	m.Statement.Date = orDefault(m.Statement.Date, def.Statement.Date)
	m.Report.CaseID = orDefault(m.Report.CaseID, def.Report.CaseID)
	if m.Report.JSONPath == "" {
		m.Report.JSONPath = def.Report.JSONPath
	}
	for header, aliases := range def.Report.Fields {
		if _, ok := m.Report.Fields[header]; !ok {
			if m.Report.Fields == nil {
				m.Report.Fields = make(map[string][]string)
			}
			m.Report.Fields[header] = aliases
		}
	}
	for header := range m.Report.Fields {
		if _, ok := commission.FieldByHeader(header); !ok {
			return Mapping{}, fmt.Errorf("invalid column mapping: %q is not a ledger field", header)
		}
	}
	return m, nil
}

// normalize folds case and removes blanks: "Case ID" and "CaseID" are the same header.
func normalize(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), ""))
}

// matches reports whether header is one of aliases.
func matches(header string, aliases []string) bool {
	h := normalize(header)
	if h == "" {
		return false
	}
	for _, a := range aliases {
		if normalize(a) == h {
			return true
		}
	}
	return false
}
