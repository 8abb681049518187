package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrParse reports a malformed ledger line.
	ErrParse = errors.New("parse error")
	// ErrSchema reports a missing or unrecognized field, or a bad enum value.
	ErrSchema = errors.New("schema error")
	// ErrFormat reports bad date, currency or quantity syntax.
	ErrFormat = errors.New("format error")
	// ErrOrder reports a sequence violation: non-chronological dates,
	// duplicate reservations, or consuming more than is available.
	ErrOrder = errors.New("order error")
	// ErrExternal reports a failed exchange-rate lookup.
	ErrExternal = errors.New("external error")
)

// EntryError identifies the ledger entry that stopped a reconciliation run.
type EntryError struct {
	Kind   error
	Line   int
	Action string
	Fields map[string]string
	Msg    string
	Err    error
}

// Error implements error.
func (e *EntryError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Action != "" || len(e.Fields) > 0 {
		fmt.Fprintf(&b, " in %s", formatRaw(e.Action, e.Fields))
	}
	return b.String()
}

// Unwrap exposes both the error kind and the underlying cause.
func (e *EntryError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewEntryError builds an EntryError for a raw entry.
func NewEntryError(kind error, raw RawEntry, msg string, err error) *EntryError {
	return &EntryError{
		Kind:   kind,
		Line:   raw.Line,
		Action: raw.Action,
		Fields: raw.Fields,
		Msg:    msg,
		Err:    err,
	}
}

// formatRaw prints fields in a stable order so messages are reproducible.
func formatRaw(action string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+fields[k])
	}
	return "{" + action + ": " + strings.Join(parts, ", ") + "}"
}
