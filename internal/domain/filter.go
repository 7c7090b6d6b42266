package domain

import "strings"

// Filter narrows the invoice list. Both criteria are optional.
type Filter struct {
	NIT  string // Substring of the invoice NIT
	Date string // Exact issue day, YYYY-MM-DD
}

// Trimmed returns the filter with surrounding whitespace removed
func (f Filter) Trimmed() Filter {
	return Filter{
		NIT:  strings.TrimSpace(f.NIT),
		Date: strings.TrimSpace(f.Date),
	}
}

// IsEmpty reports whether no criterion is set
func (f Filter) IsEmpty() bool {
	t := f.Trimmed()
	return t.NIT == "" && t.Date == ""
}

// Matches applies the filter locally. Used when the backend cannot filter.
func (f Filter) Matches(inv Invoice) bool {
	t := f.Trimmed()
	if t.NIT != "" && !strings.Contains(inv.NIT, t.NIT) {
		return false
	}
	if t.Date != "" && DayString(inv.Date) != t.Date {
		return false
	}
	return true
}

// Apply returns the invoices matching the filter, preserving order
func (f Filter) Apply(invoices []Invoice) []Invoice {
	out := make([]Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Matches(inv) {
			out = append(out, inv)
		}
	}
	return out
}
