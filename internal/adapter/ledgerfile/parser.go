// Package ledgerfile reads the plain-text transaction ledger.
//
// Each non-blank line that does not start with '#' has the form
//
//	ACTION: FIELD value, FIELD value, ...
//
// A REMARKS field takes the rest of the line verbatim, commas included.
package ledgerfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iho/stockrecon/internal/domain"
)

const maxLineSize = 1 << 20

// ParseFile reads and parses a ledger file.
func ParseFile(path string) ([]domain.RawEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads the whole ledger before returning any entry.
func Parse(r io.Reader) ([]domain.RawEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var entries []domain.RawEntry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := ParseLine(line)
		if err != nil {
			if ee, ok := err.(*domain.EntryError); ok {
				ee.Line = lineNo
			}
			return nil, err
		}
		entry.Line = lineNo
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return entries, nil
}

// ParseLine splits one ledger line into its action and fields.
func ParseLine(line string) (domain.RawEntry, error) {
	action, rest, ok := strings.Cut(line, ":")
	if !ok {
		return domain.RawEntry{}, lineError(line, "missing ':' after action")
	}

	entry := domain.RawEntry{
		Action: strings.TrimSpace(action),
		Fields: make(map[string]string),
	}
	if entry.Action == "" {
		return domain.RawEntry{}, lineError(line, "empty action")
	}

	for _, tok := range splitTokens(rest) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}

		i := strings.IndexAny(tok, " \t")
		if i < 0 {
			return domain.RawEntry{}, lineError(line, fmt.Sprintf("field %q has no value", tok))
		}
		name, value := tok[:i], strings.TrimSpace(tok[i+1:])
		if value == "" {
			return domain.RawEntry{}, lineError(line, fmt.Sprintf("field %q has no value", name))
		}
		if _, dup := entry.Fields[name]; dup {
			return domain.RawEntry{}, lineError(line, fmt.Sprintf("field %q given twice", name))
		}

		entry.Fields[name] = value
		entry.Order = append(entry.Order, name)
	}

	return entry, nil
}

// splitTokens splits on commas until a REMARKS token, which keeps the rest of the line.
func splitTokens(s string) []string {
	var tokens []string
	for {
		if isRemarks(strings.TrimLeft(s, " \t")) {
			return append(tokens, s)
		}
		i := strings.IndexByte(s, ',')
		if i < 0 {
			return append(tokens, s)
		}
		tokens = append(tokens, s[:i])
		s = s[i+1:]
	}
}

func isRemarks(tok string) bool {
	if !strings.HasPrefix(tok, domain.FieldRemarks) {
		return false
	}
	rest := tok[len(domain.FieldRemarks):]
	return rest == "" || rest[0] == ' ' || rest[0] == '\t'
}

func lineError(line, msg string) error {
	return &domain.EntryError{
		Kind: domain.ErrParse,
		Msg:  fmt.Sprintf("%s: %q", msg, line),
	}
}
