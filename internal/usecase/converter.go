package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/stockrecon/internal/domain"
)

var currencyExprRegex = regexp.MustCompile(`^([A-Za-z]{3})([0-9.]+)$`)

var hundred = decimal.NewFromInt(100)

// Converter turns ledger amount expressions into USD.
type Converter struct {
	rates RateProvider
}

// NewConverter creates a new Converter.
func NewConverter(rates RateProvider) *Converter {
	return &Converter{rates: rates}
}

// ToUSD converts "0" or "<CODE><amount>" (for example "EUR12.50") into USD.
func (c *Converter) ToUSD(ctx context.Context, day time.Time, expr string) (decimal.Decimal, error) {
	expr = strings.TrimSpace(expr)
	if expr == "0" {
		return decimal.Zero, nil
	}

	m := currencyExprRegex.FindStringSubmatch(expr)
	if m == nil {
		return decimal.Zero, fmt.Errorf("%w: invalid currency format %q", domain.ErrFormat, expr)
	}
	amount, err := decimal.NewFromString(m[2])
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", domain.ErrFormat, expr)
	}

	code := strings.ToUpper(m[1])
	if code == "RMB" {
		code = "CNY"
	}
	if code == "USD" {
		return amount, nil
	}

	table, err := c.rates.Rates(ctx, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: rates for %s: %w", domain.ErrExternal, domain.DayKey(day), err)
	}
	rate, ok := table[code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: invalid currency %s", domain.ErrFormat, code)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate %s for %s", domain.ErrFormat, rate, code)
	}

	return amount.Div(rate), nil
}

// ComputeValue converts an amount and its fee into a USD value. The fee is
// either a percentage of the converted amount ("2.5%") or a currency
// expression. Income nets the fee out; an expense adds it.
func (c *Converter) ComputeValue(ctx context.Context, day time.Time, amountExpr, feeExpr string, income bool) (decimal.Decimal, error) {
	amount, err := c.ToUSD(ctx, day, amountExpr)
	if err != nil {
		return decimal.Zero, err
	}

	var fee decimal.Decimal
	feeExpr = strings.TrimSpace(feeExpr)
	if pct, ok := strings.CutSuffix(feeExpr, "%"); ok {
		p, err := decimal.NewFromString(strings.TrimSpace(pct))
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: invalid fee percentage %q", domain.ErrFormat, feeExpr)
		}
		fee = amount.Mul(p).Div(hundred)
	} else {
		fee, err = c.ToUSD(ctx, day, feeExpr)
		if err != nil {
			return decimal.Zero, err
		}
	}

	if income {
		return amount.Sub(fee), nil
	}
	return amount.Add(fee), nil
}
