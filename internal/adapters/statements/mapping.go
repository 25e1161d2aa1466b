package statements

import "strings"

// Mapping holds the jsonpath expressions that locate statement fields.
// Entry expressions are evaluated against each element of Entries.
type Mapping struct {
	StartDate string
	EndDate   string
	Beginning string
	Ending    string
	Entries   string

	EntryDate    string
	EntryAuxDate string
	EntryPayee   string
	EntryAmount  string
	EntrySection string
	EntryCode    string

	// SectionTotals optionally points at an object of per-section totals
	// that the entries of each section must add up to.
	SectionTotals string

	// NegativeSections lists sections whose amounts are withdrawals and
	// are booked as negative regardless of the sign on the statement.
	NegativeSections []string
}

// DefaultMapping returns the layout used when a field is not configured.
func DefaultMapping() Mapping {
	return Mapping{
		StartDate:     "$.period.start",
		EndDate:       "$.period.end",
		Beginning:     "$.summary.beginning_balance",
		Ending:        "$.summary.ending_balance",
		Entries:       "$.entries",
		EntryDate:     "$.date",
		EntryAuxDate:  "$.purchase_date",
		EntryPayee:    "$.description",
		EntryAmount:   "$.amount",
		EntrySection:  "$.section",
		EntryCode:     "$.check_number",
		SectionTotals: "$.summary.sections",
		NegativeSections: []string{
			"checks paid",
			"atm & debit card withdrawals",
			"electronic withdrawals",
			"fees and other withdrawals",
			"other withdrawals",
		},
	}
}

// WithDefaults fills empty fields from DefaultMapping.
func (m Mapping) WithDefaults() Mapping {
	d := DefaultMapping()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&m.StartDate, d.StartDate)
	fill(&m.EndDate, d.EndDate)
	fill(&m.Beginning, d.Beginning)
	fill(&m.Ending, d.Ending)
	fill(&m.Entries, d.Entries)
	fill(&m.EntryDate, d.EntryDate)
	fill(&m.EntryAuxDate, d.EntryAuxDate)
	fill(&m.EntryPayee, d.EntryPayee)
	fill(&m.EntryAmount, d.EntryAmount)
	fill(&m.EntrySection, d.EntrySection)
	fill(&m.EntryCode, d.EntryCode)
	fill(&m.SectionTotals, d.SectionTotals)
	if m.NegativeSections == nil {
		m.NegativeSections = d.NegativeSections
	}
	return m
}

func (m Mapping) isNegative(section string) bool {
	for _, s := range m.NegativeSections {
		if strings.EqualFold(s, section) {
			return true
		}
	}
	return false
}
