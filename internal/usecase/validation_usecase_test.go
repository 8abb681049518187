package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/stockrecon/internal/domain"
	"github.com/iho/stockrecon/internal/usecase"
)

// fixedRates serves the same table for every date.
type fixedRates domain.RateTable

func (f fixedRates) Rates(context.Context, time.Time) (domain.RateTable, error) {
	return domain.RateTable(f), nil
}

func newValidator() *usecase.ValidationUseCase {
	return usecase.NewValidationUseCase(
		domain.MustCatalog("ilonena", "ilomusiali"),
		usecase.NewConverter(fixedRates{"EUR": dec("0.8"), "CNY": dec("7.2")}),
	)
}

func raw(action string, kv ...string) domain.RawEntry {
	e := domain.RawEntry{Action: action, Fields: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Fields[kv[i]] = kv[i+1]
		e.Order = append(e.Order, kv[i])
	}
	return e
}

func TestValidationUseCase_EnrichesEntries(t *testing.T) {
	entries, err := newValidator().Validate(context.Background(), []domain.RawEntry{
		raw("OBTAIN", "DATE", "2024-01-01", "TYPE", "assembled", "PROJECT", "ilonena", "QUANTITY", "3", "COSTEACH", "EUR8"),
		raw("RESERVE", "DATE", "2024-01-01", "REF", "17a", "ITEMS", "ilonena2"),
		raw("INCOME", "DATE", "2024-01-02", "TYPE", "sales", "AMOUNT", "USD50", "FEE", "4%", "REF", "17b"),
		raw("EXPENSE", "DATE", "2024-01-03", "TYPE", "material", "AMOUNT", "RMB72", "FEE", "USD1",
			"PROJECT", "ilomusiali", "BATCH", "b1", "SUPPLIER", "acme"),
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	obtain := entries[0]
	assert.Equal(t, domain.ActionObtain, obtain.Action)
	assert.Equal(t, 3, obtain.Quantity)
	assert.True(t, obtain.CostEach.Equal(dec("10")), "cost each %s", obtain.CostEach)
	assert.Equal(t, "", obtain.Fields["BATCH"])
	assert.Equal(t, "", obtain.Remarks())

	reserve := entries[1]
	assert.Equal(t, []domain.ItemQuantity{{Name: "ilonena", Quantity: 2}}, reserve.Items)
	assert.Equal(t, "17", reserve.Ref())

	assert.True(t, entries[2].Value.Equal(dec("48")), "income value %s", entries[2].Value)
	assert.True(t, entries[3].Value.Equal(dec("11")), "expense value %s", entries[3].Value)
	assert.Equal(t, "", entries[3].Fields["REF"])
}

func TestValidationUseCase_Rejects(t *testing.T) {
	okObtain := []string{"DATE", "2024-01-01", "TYPE", "assembled", "PROJECT", "ilonena", "QUANTITY", "1", "COSTEACH", "USD1"}

	tests := []struct {
		name        string
		entries     []domain.RawEntry
		expectError error
	}{
		{
			name:        "unknown action",
			entries:     []domain.RawEntry{raw("BORROW", "DATE", "2024-01-01")},
			expectError: domain.ErrSchema,
		},
		{
			name:        "missing required field",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2024-01-01", "REF", "1")},
			expectError: domain.ErrSchema,
		},
		{
			name:        "bad date syntax",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2024-1-01", "REF", "1", "ITEMS", "ilonena1")},
			expectError: domain.ErrFormat,
		},
		{
			name:        "impossible date",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2023-02-29", "REF", "1", "ITEMS", "ilonena1")},
			expectError: domain.ErrFormat,
		},
		{
			name: "dates out of order",
			entries: []domain.RawEntry{
				raw("OBTAIN", okObtain...),
				raw("INCOME", "DATE", "2023-12-31", "TYPE", "sales", "AMOUNT", "USD1", "FEE", "0"),
			},
			expectError: domain.ErrOrder,
		},
		{
			name:        "type not allowed for action",
			entries:     []domain.RawEntry{raw("INCOME", "DATE", "2024-01-01", "TYPE", "refund", "AMOUNT", "USD1", "FEE", "0")},
			expectError: domain.ErrSchema,
		},
		{
			name:        "type on reserve",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2024-01-01", "REF", "1", "ITEMS", "ilonena1", "TYPE", "sales")},
			expectError: domain.ErrSchema,
		},
		{
			name: "unknown project",
			entries: []domain.RawEntry{raw("OBTAIN", "DATE", "2024-01-01", "TYPE", "assembled", "PROJECT", "widget",
				"QUANTITY", "1", "COSTEACH", "USD1")},
			expectError: domain.ErrSchema,
		},
		{
			name:        "unknown item",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2024-01-01", "REF", "1", "ITEMS", "widget1")},
			expectError: domain.ErrSchema,
		},
		{
			name:        "malformed items",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2024-01-01", "REF", "1", "ITEMS", "ilonena")},
			expectError: domain.ErrFormat,
		},
		{
			name:        "unrecognized field",
			entries:     []domain.RawEntry{raw("RESERVE", "DATE", "2024-01-01", "REF", "1", "ITEMS", "ilonena1", "AMOUNT", "USD1")},
			expectError: domain.ErrSchema,
		},
		{
			name: "bad cost",
			entries: []domain.RawEntry{raw("OBTAIN", "DATE", "2024-01-01", "TYPE", "assembled", "PROJECT", "ilonena",
				"QUANTITY", "1", "COSTEACH", "5USD")},
			expectError: domain.ErrFormat,
		},
		{
			name: "bad quantity",
			entries: []domain.RawEntry{raw("OBTAIN", "DATE", "2024-01-01", "TYPE", "assembled", "PROJECT", "ilonena",
				"QUANTITY", "two", "COSTEACH", "USD1")},
			expectError: domain.ErrFormat,
		},
		{
			name:        "unknown currency",
			entries:     []domain.RawEntry{raw("EXPENSE", "DATE", "2024-01-01", "TYPE", "shipping", "AMOUNT", "JPY100", "FEE", "0")},
			expectError: domain.ErrFormat,
		},
		{
			name: "material without supplier",
			entries: []domain.RawEntry{raw("EXPENSE", "DATE", "2024-01-01", "TYPE", "material", "AMOUNT", "USD1", "FEE", "0",
				"PROJECT", "ilonena", "BATCH", "b1")},
			expectError: domain.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newValidator().Validate(context.Background(), tt.entries)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected %v, got %v", tt.expectError, err)
			}

			var ee *domain.EntryError
			if !errors.As(err, &ee) {
				t.Fatalf("expected *domain.EntryError, got %T", err)
			}
			if ee.Action != tt.entries[len(tt.entries)-1].Action {
				t.Errorf("expected error to identify the %s entry, got %s", tt.entries[len(tt.entries)-1].Action, ee.Action)
			}
		})
	}
}

func TestValidationUseCase_SameDateIsChronological(t *testing.T) {
	_, err := newValidator().Validate(context.Background(), []domain.RawEntry{
		raw("INCOME", "DATE", "2024-01-01", "TYPE", "donation", "AMOUNT", "USD1", "FEE", "0"),
		raw("INCOME", "DATE", "2024-01-01", "TYPE", "donation", "AMOUNT", "USD1", "FEE", "0"),
	})
	require.NoError(t, err)
}
