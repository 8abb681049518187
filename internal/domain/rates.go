package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO calendar date form used by the ledger and rate services.
const DateLayout = "2006-01-02"

// RateTable maps a currency code to how many units of it one USD buys on a given day.
type RateTable map[string]decimal.Decimal

// Clone returns an independent copy of the table.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// DayKey formats a date as used by rate caches.
func DayKey(d time.Time) string {
	return d.Format(DateLayout)
}
