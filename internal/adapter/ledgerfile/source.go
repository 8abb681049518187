package ledgerfile

import (
	"context"
	"fmt"
	"os"

	"github.com/iho/stockrecon/internal/domain"
)

// Source implements usecase.LedgerSource by re-reading a file on every Load.
type Source struct {
	path string
}

// NewSource creates a Source for path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// Path returns the ledger file path.
func (s *Source) Path() string {
	return s.path
}

// Load parses the ledger file.
func (s *Source) Load(ctx context.Context) ([]domain.RawEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseFile(s.path)
}

// Ping reports whether the ledger file is readable.
func (s *Source) Ping(_ context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("ledger not readable: %w", err)
	}
	return f.Close()
}
