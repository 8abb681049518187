package domain

import (
	"fmt"
	"regexp"
	"sort"
)

// DefaultItems are the known item and project names when no catalog is configured.
var DefaultItems = []string{"ilonena", "ilomusiali"}

var itemNameRegex = regexp.MustCompile(`^[A-Za-z]+$`)

// Catalog is the fixed set of item/project names a ledger may reference.
type Catalog struct {
	names []string
	known map[string]bool
}

// NewCatalog builds a catalog. Names must be letters only so that ITEMS
// tokens like "name3" stay unambiguous.
func NewCatalog(names []string) (*Catalog, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: catalog has no items", ErrSchema)
	}

	c := &Catalog{known: make(map[string]bool, len(names))}
	for _, n := range names {
		if !itemNameRegex.MatchString(n) {
			return nil, fmt.Errorf("%w: invalid item name %q", ErrSchema, n)
		}
		if c.known[n] {
			return nil, fmt.Errorf("%w: duplicate item name %q", ErrSchema, n)
		}
		c.known[n] = true
		c.names = append(c.names, n)
	}
	sort.Strings(c.names)
	return c, nil
}

// MustCatalog is NewCatalog for static names.
func MustCatalog(names ...string) *Catalog {
	c, err := NewCatalog(names)
	if err != nil {
		panic(err)
	}
	return c
}

// Has reports whether name is a known item.
func (c *Catalog) Has(name string) bool {
	return c.known[name]
}

// Names returns the sorted item names.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}
