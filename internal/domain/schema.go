package domain

// Action is the tag of a ledger entry.
type Action string

const (
	ActionObtain  Action = "OBTAIN"
	ActionReserve Action = "RESERVE"
	ActionRelease Action = "RELEASE"
	ActionIncome  Action = "INCOME"
	ActionExpense Action = "EXPENSE"
)

// Field names used by ledger entries.
const (
	FieldDate     = "DATE"
	FieldType     = "TYPE"
	FieldProject  = "PROJECT"
	FieldQuantity = "QUANTITY"
	FieldCostEach = "COSTEACH"
	FieldBatch    = "BATCH"
	FieldRemarks  = "REMARKS"
	FieldRef      = "REF"
	FieldItems    = "ITEMS"
	FieldAmount   = "AMOUNT"
	FieldFee      = "FEE"
	FieldSupplier = "SUPPLIER"
)

// TypeMaterial marks an EXPENSE whose cost is deferred until inventory is consumed.
const TypeMaterial = "material"

// ActionSchema lists the fields an action accepts and the TYPE values it allows.
type ActionSchema struct {
	Required []string
	Optional []string
	Types    []string
}

// Schemas is the fixed field table for every known action.
var Schemas = map[Action]ActionSchema{
	ActionObtain: {
		Required: []string{FieldDate, FieldType, FieldProject, FieldQuantity, FieldCostEach},
		Optional: []string{FieldBatch, FieldRemarks},
		Types:    []string{"assembled", "returned", "repaired"},
	},
	ActionReserve: {
		Required: []string{FieldDate, FieldRef, FieldItems},
		Optional: []string{FieldRemarks},
	},
	ActionRelease: {
		Required: []string{FieldDate, FieldType, FieldRef, FieldItems},
		Optional: []string{FieldRemarks},
		Types:    []string{"sales", "gift", "replacement", "giveaway", "scrap"},
	},
	ActionIncome: {
		Required: []string{FieldDate, FieldType, FieldAmount, FieldFee},
		Optional: []string{FieldRef, FieldRemarks},
		Types:    []string{"sales", "donation"},
	},
	ActionExpense: {
		Required: []string{FieldDate, FieldType, FieldAmount, FieldFee},
		Optional: []string{FieldProject, FieldBatch, FieldSupplier, FieldRef, FieldRemarks},
		Types:    []string{"R&D", TypeMaterial, "shipping", "replacement", "reimbursement", "refund"},
	},
}

// LookupSchema returns the schema of a raw action tag.
func LookupSchema(action string) (ActionSchema, bool) {
	s, ok := Schemas[Action(action)]
	return s, ok
}

// AllowsType reports whether t is a valid TYPE for the action.
func (s ActionSchema) AllowsType(t string) bool {
	for _, allowed := range s.Types {
		if allowed == t {
			return true
		}
	}
	return false
}

// Accepts reports whether field belongs to the required or optional set.
func (s ActionSchema) Accepts(field string) bool {
	for _, f := range s.Required {
		if f == field {
			return true
		}
	}
	for _, f := range s.Optional {
		if f == field {
			return true
		}
	}
	return false
}
