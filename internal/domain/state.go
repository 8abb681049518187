package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CostQueue holds the USD cost of each physical unit of an item, oldest first.
type CostQueue []decimal.Decimal

// Len returns the number of units in stock.
func (q CostQueue) Len() int { return len(q) }

// Next returns the cost of the unit that would be consumed next.
func (q CostQueue) Next() (decimal.Decimal, bool) {
	if len(q) == 0 {
		return decimal.Zero, false
	}
	return q[0], true
}

// Reservation tracks quantities committed to a reference but not yet released.
type Reservation struct {
	Order   []string
	Items   map[string]int
	Remarks string
}

// Outstanding returns the remaining reserved items in reservation order.
func (r *Reservation) Outstanding() []ItemQuantity {
	out := make([]ItemQuantity, 0, len(r.Items))
	for _, name := range r.Order {
		if qty, ok := r.Items[name]; ok {
			out = append(out, ItemQuantity{Name: name, Quantity: qty})
		}
	}
	return out
}

// State is the reconciliation state threaded through the ordered entry sequence.
type State struct {
	Inventory    map[string]CostQueue
	Reservations map[string]*Reservation
	// References maps a suffix-stripped reference to its net contribution to
	// profit. The empty key collects entries without a reference.
	References map[string]decimal.Decimal
	CashFlow   decimal.Decimal
	Profit     decimal.Decimal
}

// NewState returns the initial state for a catalog.
func NewState(catalog *Catalog) State {
	s := State{
		Inventory:    make(map[string]CostQueue),
		Reservations: make(map[string]*Reservation),
		References:   map[string]decimal.Decimal{"": decimal.Zero},
	}
	for _, name := range catalog.Names() {
		s.Inventory[name] = CostQueue{}
	}
	return s
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{
		Inventory:    make(map[string]CostQueue, len(s.Inventory)),
		Reservations: make(map[string]*Reservation, len(s.Reservations)),
		References:   make(map[string]decimal.Decimal, len(s.References)),
		CashFlow:     s.CashFlow,
		Profit:       s.Profit,
	}
	for k, q := range s.Inventory {
		out.Inventory[k] = append(CostQueue{}, q...)
	}
	for k, r := range s.Reservations {
		items := make(map[string]int, len(r.Items))
		for n, q := range r.Items {
			items[n] = q
		}
		out.Reservations[k] = &Reservation{
			Order:   append([]string(nil), r.Order...),
			Items:   items,
			Remarks: r.Remarks,
		}
	}
	for k, v := range s.References {
		out.References[k] = v
	}
	return out
}

// Reconcile folds entries, in order, over a copy of the initial state.
// The first failing entry aborts the fold and no state is returned.
func Reconcile(initial State, entries []Entry) (State, error) {
	s := initial.Clone()
	for _, e := range entries {
		if err := s.Apply(e); err != nil {
			return State{}, err
		}
	}
	return s, nil
}

// Apply performs the transition for one validated entry.
func (s *State) Apply(e Entry) error {
	switch e.Action {
	case ActionObtain:
		s.obtain(e)
		return nil
	case ActionIncome:
		s.CashFlow = s.CashFlow.Add(e.Value)
		s.Profit = s.Profit.Add(e.Value)
		s.References[e.Ref()] = s.References[e.Ref()].Add(e.Value)
		return nil
	case ActionExpense:
		s.CashFlow = s.CashFlow.Sub(e.Value)
		if e.Type() != TypeMaterial {
			// material cost is realized when RESERVE/RELEASE consumes the stock
			s.Profit = s.Profit.Sub(e.Value)
			s.References[e.Ref()] = s.References[e.Ref()].Sub(e.Value)
		}
		return nil
	case ActionReserve:
		return s.reserve(e)
	case ActionRelease:
		return s.release(e)
	default:
		return NewEntryError(ErrSchema, e.Raw(), fmt.Sprintf("unknown action %q", e.Action), nil)
	}
}

func (s *State) obtain(e Entry) {
	q := s.Inventory[e.Project()]
	for i := 0; i < e.Quantity; i++ {
		q = append(q, e.CostEach)
	}
	s.Inventory[e.Project()] = q
}

func (s *State) reserve(e Entry) error {
	ref := e.Ref()
	if _, exists := s.References[ref]; exists {
		return NewEntryError(ErrOrder, e.Raw(), fmt.Sprintf("duplicated RESERVE reference %q", ref), nil)
	}

	cost, err := s.consume(e)
	if err != nil {
		return err
	}

	r := &Reservation{Items: make(map[string]int, len(e.Items)), Remarks: e.Remarks()}
	for _, it := range e.Items {
		r.Order = append(r.Order, it.Name)
		r.Items[it.Name] = it.Quantity
	}
	s.Reservations[ref] = r
	s.References[ref] = cost.Neg()
	s.Profit = s.Profit.Sub(cost)
	return nil
}

func (s *State) release(e Entry) error {
	ref := e.Ref()
	r, reserved := s.Reservations[ref]
	if !reserved {
		cost, err := s.consume(e)
		if err != nil {
			return err
		}
		s.References[ref] = s.References[ref].Sub(cost)
		s.Profit = s.Profit.Sub(cost)
		return nil
	}

	for _, it := range e.Items {
		left, ok := r.Items[it.Name]
		if !ok || left < it.Quantity {
			return NewEntryError(ErrOrder, e.Raw(),
				fmt.Sprintf("releasing %d %s but only %d reserved under %q", it.Quantity, it.Name, left, ref), nil)
		}
	}
	for _, it := range e.Items {
		r.Items[it.Name] -= it.Quantity
		if r.Items[it.Name] == 0 {
			delete(r.Items, it.Name)
		}
	}
	return nil
}

// consume pops the oldest units for every requested item and returns their total cost.
func (s *State) consume(e Entry) (decimal.Decimal, error) {
	for _, it := range e.Items {
		if have := s.Inventory[it.Name].Len(); have < it.Quantity {
			return decimal.Zero, NewEntryError(ErrOrder, e.Raw(),
				fmt.Sprintf("consuming %d %s but only %d in stock", it.Quantity, it.Name, have), nil)
		}
	}

	total := decimal.Zero
	for _, it := range e.Items {
		q := s.Inventory[it.Name]
		for _, c := range q[:it.Quantity] {
			total = total.Add(c)
		}
		s.Inventory[it.Name] = q[it.Quantity:]
	}
	return total, nil
}
