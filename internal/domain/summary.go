package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

// ReferenceValue is one line of the per-reference profit breakdown.
type ReferenceValue struct {
	Ref   string          `json:"ref"`
	Value decimal.Decimal `json:"value"`
}

// InventoryLine is the remaining stock of one item.
type InventoryLine struct {
	Item     string           `json:"item"`
	Units    int              `json:"units"`
	NextCost *decimal.Decimal `json:"next_unit_cost,omitempty"`
}

// ReservationLine is an outstanding reservation.
type ReservationLine struct {
	Ref     string         `json:"ref"`
	Items   []ItemQuantity `json:"items"`
	Remarks string         `json:"remarks"`
}

// Summary is the data consumed by report renderers.
type Summary struct {
	References   []ReferenceValue  `json:"references"`
	Profit       decimal.Decimal   `json:"profit"`
	CashFlow     decimal.Decimal   `json:"cash_flow"`
	Inventory    []InventoryLine   `json:"inventory"`
	Reservations []ReservationLine `json:"reservations"`
}

// Summary builds the sorted report view of the state. Reservations that
// have been fully released are omitted.
func (s State) Summary() Summary {
	out := Summary{
		Profit:       s.Profit,
		CashFlow:     s.CashFlow,
		References:   make([]ReferenceValue, 0, len(s.References)),
		Inventory:    make([]InventoryLine, 0, len(s.Inventory)),
		Reservations: make([]ReservationLine, 0),
	}

	for _, ref := range sortedKeys(s.References) {
		out.References = append(out.References, ReferenceValue{Ref: ref, Value: s.References[ref]})
	}

	for _, item := range sortedKeys(s.Inventory) {
		q := s.Inventory[item]
		line := InventoryLine{Item: item, Units: q.Len()}
		if next, ok := q.Next(); ok {
			line.NextCost = &next
		}
		out.Inventory = append(out.Inventory, line)
	}

	for _, ref := range sortedKeys(s.Reservations) {
		r := s.Reservations[ref]
		if len(r.Items) == 0 {
			continue
		}
		out.Reservations = append(out.Reservations, ReservationLine{
			Ref:     ref,
			Items:   r.Outstanding(),
			Remarks: r.Remarks,
		})
	}
	return out
}

// Reference returns the accumulated value of a reference key.
func (s Summary) Reference(ref string) (decimal.Decimal, bool) {
	for _, r := range s.References {
		if r.Ref == ref {
			return r.Value, true
		}
	}
	return decimal.Zero, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
