package usecase

import "time"

// DefaultRateFetchTimeout bounds a single request to the exchange-rate service.
const DefaultRateFetchTimeout = 10 * time.Second
