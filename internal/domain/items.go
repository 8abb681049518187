package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	itemTokenRegex = regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`)
	refSuffixRegex = regexp.MustCompile(`^(.*[^A-Za-z])[A-Za-z]+$`)
)

// ItemQuantity is one <name><quantity> token of an ITEMS field.
type ItemQuantity struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ParseItems parses a whitespace separated ITEMS value such as "ilonena2 ilomusiali1".
func ParseItems(s string) ([]ItemQuantity, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty ITEMS value", ErrFormat)
	}

	items := make([]ItemQuantity, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		m := itemTokenRegex.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("%w: invalid ITEMS token %q", ErrFormat, tok)
		}
		if seen[m[1]] {
			return nil, fmt.Errorf("%w: item %q listed twice", ErrSchema, m[1])
		}
		seen[m[1]] = true

		qty, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: invalid quantity in %q", ErrFormat, tok)
		}
		items = append(items, ItemQuantity{Name: m[1], Quantity: qty})
	}
	return items, nil
}

// FormatItems renders items back into the compact "name1,name2" form.
func FormatItems(items []ItemQuantity) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Name+strconv.Itoa(it.Quantity))
	}
	return strings.Join(parts, ",")
}

// StripRefSuffix drops a trailing run of letters that follows a non-letter,
// so "order-123a" and "order-123b" share the key "order-123".
func StripRefSuffix(ref string) string {
	if m := refSuffixRegex.FindStringSubmatch(ref); m != nil {
		return m[1]
	}
	return ref
}
