package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawEntry is one parsed ledger line before validation.
type RawEntry struct {
	Line   int
	Action string
	Fields map[string]string
	// Order keeps field names in the order they appeared on the line.
	Order []string
}

// Entry is a validated and enriched ledger entry. It is never modified
// after validation.
type Entry struct {
	Line     int
	Action   Action
	Date     time.Time
	Fields   map[string]string
	Items    []ItemQuantity
	Quantity int
	CostEach decimal.Decimal
	Value    decimal.Decimal
}

// Type returns the TYPE field.
func (e Entry) Type() string { return e.Fields[FieldType] }

// Project returns the PROJECT field.
func (e Entry) Project() string { return e.Fields[FieldProject] }

// Remarks returns the REMARKS field.
func (e Entry) Remarks() string { return e.Fields[FieldRemarks] }

// Ref returns the reference key the entry is attributed to.
func (e Entry) Ref() string { return StripRefSuffix(e.Fields[FieldRef]) }

// Raw returns the entry as a RawEntry for error reporting.
func (e Entry) Raw() RawEntry {
	return RawEntry{Line: e.Line, Action: string(e.Action), Fields: e.Fields}
}
