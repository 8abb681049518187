// Package rates provides exchange-rate lookups for the currency converter.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/iho/stockrecon/internal/domain"
	"github.com/iho/stockrecon/internal/usecase"
)

// DefaultBaseURL is the public Frankfurter API.
const DefaultBaseURL = "https://api.frankfurter.dev"

// ErrRatesUnavailable is returned when the service has no table for a date.
var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// FrankfurterConfig configures a FrankfurterFetcher.
type FrankfurterConfig struct {
	BaseURL         string
	Client          *http.Client
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Logger          zerolog.Logger
}

// FrankfurterFetcher implements usecase.RateFetcher against the Frankfurter API.
type FrankfurterFetcher struct {
	baseURL         string
	client          *http.Client
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

// NewFrankfurterFetcher creates a new FrankfurterFetcher.
func NewFrankfurterFetcher(cfg FrankfurterConfig) *FrankfurterFetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: usecase.DefaultRateFetchTimeout}
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	return &FrankfurterFetcher{
		baseURL:         strings.TrimRight(cfg.BaseURL, "/"),
		client:          cfg.Client,
		maxRetries:      cfg.MaxRetries,
		initialInterval: cfg.InitialInterval,
		maxInterval:     cfg.MaxInterval,
		logger:          cfg.Logger,
	}
}

type frankfurterResponse struct {
	Base  string           `json:"base"`
	Date  string           `json:"date"`
	Rates domain.RateTable `json:"rates"`
}

// Fetch retrieves the USD-based table for day, retrying transport errors
// and 5xx responses with exponential backoff.
func (f *FrankfurterFetcher) Fetch(ctx context.Context, day time.Time) (domain.RateTable, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.initialInterval
	b.MaxInterval = f.maxInterval

	var table domain.RateTable
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		t, err := f.fetchOnce(ctx, day)
		if err == nil {
			table = t
			return nil
		}

		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return err
		}
		if attempt > f.maxRetries {
			return backoff.Permanent(err)
		}

		f.logger.Warn().
			Err(err).
			Str("date", domain.DayKey(day)).
			Int("retry", attempt).
			Msg("exchange rate fetch failed, retrying")
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, err
	}

	return table, nil
}

func (f *FrankfurterFetcher) fetchOnce(ctx context.Context, day time.Time) (domain.RateTable, error) {
	addr := fmt.Sprintf("%s/v1/%s?base=USD", f.baseURL, domain.DayKey(day))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("GET %s: %s", addr, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(fmt.Errorf("%w: GET %s: %s", ErrRatesUnavailable, addr, resp.Status))
	}

	var payload frankfurterResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode rates for %s: %w", domain.DayKey(day), err))
	}
	if payload.Base != "" && payload.Base != "USD" {
		return nil, backoff.Permanent(fmt.Errorf("unexpected base currency %q", payload.Base))
	}
	if len(payload.Rates) == 0 {
		return nil, backoff.Permanent(fmt.Errorf("%w: empty table for %s", ErrRatesUnavailable, domain.DayKey(day)))
	}

	return payload.Rates, nil
}
