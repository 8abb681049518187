package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/iho/stockrecon/internal/domain"
	"github.com/iho/stockrecon/internal/usecase"
	"github.com/iho/stockrecon/internal/usecase/mocks"
)

var testDay = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConverter_ComputeValueUSDNeedsNoRates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// no EXPECT: any rate lookup fails the test
	conv := usecase.NewConverter(mocks.NewMockRateProvider(ctrl))
	ctx := context.Background()

	got, err := conv.ComputeValue(ctx, testDay, "USD100", "0%", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("100")) {
		t.Errorf("expected 100, got %s", got)
	}

	got, err = conv.ComputeValue(ctx, testDay, "USD100", "10%", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(dec("110")) {
		t.Errorf("expected 110, got %s", got)
	}

	got, err = conv.ToUSD(ctx, testDay, "0")
	if err != nil || !got.IsZero() {
		t.Errorf("expected zero for \"0\", got %s (%v)", got, err)
	}
}

func TestConverter_ToUSD(t *testing.T) {
	tests := []struct {
		name        string
		expr        string
		rates       domain.RateTable
		want        string
		expectError error
	}{
		{
			name:  "euro",
			expr:  "EUR12.50",
			rates: domain.RateTable{"EUR": dec("0.5")},
			want:  "25",
		},
		{
			name:  "lower case code",
			expr:  "eur3",
			rates: domain.RateTable{"EUR": dec("0.75")},
			want:  "4",
		},
		{
			name:  "RMB is CNY",
			expr:  "RMB70",
			rates: domain.RateTable{"CNY": dec("7")},
			want:  "10",
		},
		{
			name:        "unknown currency",
			expr:        "XYZ1",
			rates:       domain.RateTable{"EUR": dec("0.5")},
			expectError: domain.ErrFormat,
		},
		{
			name:        "zero rate",
			expr:        "EUR1",
			rates:       domain.RateTable{"EUR": decimal.Zero},
			expectError: domain.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			provider := mocks.NewMockRateProvider(ctrl)
			provider.EXPECT().Rates(gomock.Any(), testDay).Return(tt.rates, nil)

			got, err := usecase.NewConverter(provider).ToUSD(context.Background(), testDay, tt.expr)
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(dec(tt.want)) {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConverter_ToUSDRejectsMalformedExpressions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conv := usecase.NewConverter(mocks.NewMockRateProvider(ctrl))
	for _, expr := range []string{"", "12EUR", "EU12", "EUR", "EUR1.2.3", "USD-5", "EURO12"} {
		if _, err := conv.ToUSD(context.Background(), testDay, expr); !errors.Is(err, domain.ErrFormat) {
			t.Errorf("ToUSD(%q): expected ErrFormat, got %v", expr, err)
		}
	}
}

func TestConverter_ProviderFailureIsExternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockRateProvider(ctrl)
	provider.EXPECT().Rates(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := usecase.NewConverter(provider).ToUSD(context.Background(), testDay, "GBP5")
	if !errors.Is(err, domain.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
}

func TestConverter_ComputeValueWithCurrencyFee(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	provider := mocks.NewMockRateProvider(ctrl)
	provider.EXPECT().Rates(gomock.Any(), testDay).Return(domain.RateTable{"EUR": dec("0.5")}, nil).Times(4)
	conv := usecase.NewConverter(provider)

	income, err := conv.ComputeValue(context.Background(), testDay, "EUR10", "EUR2", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !income.Equal(dec("16")) {
		t.Errorf("expected income 16, got %s", income)
	}

	expense, err := conv.ComputeValue(context.Background(), testDay, "EUR10", "EUR2", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !expense.Equal(dec("24")) {
		t.Errorf("expected expense 24, got %s", expense)
	}
}

func TestConverter_ComputeValueRejectsBadPercentage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conv := usecase.NewConverter(mocks.NewMockRateProvider(ctrl))
	_, err := conv.ComputeValue(context.Background(), testDay, "USD10", "x%", true)
	if !errors.Is(err, domain.ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
