package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/iho/stockrecon/internal/domain"
)

var dateRegex = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})-([0-9]{2})$`)

// ValidationUseCase checks raw entries against the action schemas and
// enriches them with USD values.
type ValidationUseCase struct {
	catalog   *domain.Catalog
	converter *Converter
}

// NewValidationUseCase creates a new ValidationUseCase.
func NewValidationUseCase(catalog *domain.Catalog, converter *Converter) *ValidationUseCase {
	return &ValidationUseCase{
		catalog:   catalog,
		converter: converter,
	}
}

// Validate checks the whole sequence and returns the enriched entries. It
// stops at the first violation.
func (uc *ValidationUseCase) Validate(ctx context.Context, raws []domain.RawEntry) ([]domain.Entry, error) {
	entries := make([]domain.Entry, 0, len(raws))
	var last time.Time
	for _, raw := range raws {
		entry, err := uc.validateEntry(ctx, raw, last)
		if err != nil {
			return nil, err
		}
		last = entry.Date
		entries = append(entries, entry)
	}
	return entries, nil
}

func (uc *ValidationUseCase) validateEntry(ctx context.Context, raw domain.RawEntry, last time.Time) (domain.Entry, error) {
	fail := func(kind error, msg string, err error) (domain.Entry, error) {
		return domain.Entry{}, domain.NewEntryError(kind, raw, msg, err)
	}

	schema, ok := domain.LookupSchema(raw.Action)
	if !ok {
		return fail(domain.ErrSchema, fmt.Sprintf("invalid action %q", raw.Action), nil)
	}

	for _, f := range schema.Required {
		if _, ok := raw.Fields[f]; !ok {
			return fail(domain.ErrSchema, fmt.Sprintf("missing field %s", f), nil)
		}
	}

	date, err := parseDate(raw.Fields[domain.FieldDate])
	if err != nil {
		return fail(domain.ErrFormat, "wrong DATE", err)
	}
	if date.Before(last) {
		return fail(domain.ErrOrder, fmt.Sprintf("non-chronological date, previous entry is %s", domain.DayKey(last)), nil)
	}

	if t, ok := raw.Fields[domain.FieldType]; ok && !schema.AllowsType(t) {
		return fail(domain.ErrSchema, fmt.Sprintf("invalid TYPE %q", t), nil)
	}

	if p, ok := raw.Fields[domain.FieldProject]; ok && !uc.catalog.Has(p) {
		return fail(domain.ErrSchema, fmt.Sprintf("invalid PROJECT %q", p), nil)
	}

	var items []domain.ItemQuantity
	if v, ok := raw.Fields[domain.FieldItems]; ok {
		items, err = domain.ParseItems(v)
		if err != nil {
			return fail(kindOf(err), "invalid ITEMS", err)
		}
		for _, it := range items {
			if !uc.catalog.Has(it.Name) {
				return fail(domain.ErrSchema, fmt.Sprintf("invalid ITEMS name %q", it.Name), nil)
			}
		}
	}

	fields := make(map[string]string, len(schema.Required)+len(schema.Optional))
	for k, v := range raw.Fields {
		fields[k] = v
	}
	for _, f := range schema.Optional {
		if _, ok := fields[f]; !ok {
			fields[f] = ""
		}
	}
	for _, name := range fieldNames(raw) {
		if !schema.Accepts(name) {
			return fail(domain.ErrSchema, fmt.Sprintf("unrecognized field %s", name), nil)
		}
	}

	entry := domain.Entry{
		Line:   raw.Line,
		Action: domain.Action(raw.Action),
		Date:   date,
		Fields: fields,
		Items:  items,
	}

	if v, ok := fields[domain.FieldCostEach]; ok {
		entry.CostEach, err = uc.converter.ToUSD(ctx, date, v)
		if err != nil {
			return fail(kindOf(err), "invalid currency in COSTEACH", err)
		}
	}
	if v, ok := fields[domain.FieldQuantity]; ok {
		entry.Quantity, err = strconv.Atoi(v)
		if err != nil || entry.Quantity < 0 {
			return fail(domain.ErrFormat, fmt.Sprintf("invalid QUANTITY %q", v), nil)
		}
	}

	switch entry.Action {
	case domain.ActionIncome, domain.ActionExpense:
		entry.Value, err = uc.converter.ComputeValue(ctx, date, fields[domain.FieldAmount], fields[domain.FieldFee], entry.Action == domain.ActionIncome)
		if err != nil {
			return fail(kindOf(err), "cannot compute VALUE", err)
		}
	}

	if entry.Action == domain.ActionExpense && entry.Type() == domain.TypeMaterial &&
		(fields[domain.FieldProject] == "" || fields[domain.FieldBatch] == "" || fields[domain.FieldSupplier] == "") {
		return fail(domain.ErrSchema, "material EXPENSE must have PROJECT, BATCH and SUPPLIER", nil)
	}

	return entry, nil
}

func parseDate(s string) (time.Time, error) {
	if !dateRegex.MatchString(s) {
		return time.Time{}, fmt.Errorf("%q is not YYYY-MM-DD", s)
	}
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a calendar date", s)
	}
	return d, nil
}

// fieldNames returns the raw field names in line order.
func fieldNames(raw domain.RawEntry) []string {
	if len(raw.Order) == len(raw.Fields) {
		return raw.Order
	}
	names := make([]string, 0, len(raw.Fields))
	for k := range raw.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// kindOf picks the error kind carried by a wrapped domain error.
func kindOf(err error) error {
	for _, kind := range []error{domain.ErrExternal, domain.ErrFormat, domain.ErrSchema, domain.ErrOrder, domain.ErrParse} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return domain.ErrFormat
}
