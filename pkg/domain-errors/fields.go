package domainerrors

import "sort"

// FieldErrors maps a field path (e.g. "shareholders.0.full_name") to one or
// more messages. The zero value is not usable; construct with make or NewFieldErrors.
type FieldErrors map[string][]string

func NewFieldErrors() FieldErrors {
	return make(FieldErrors)
}

// Add appends a message for field.
func (f FieldErrors) Add(field, message string) {
	f[field] = append(f[field], message)
}

// Has reports whether field has at least one message.
func (f FieldErrors) Has(field string) bool {
	return len(f[field]) > 0
}

// Empty reports whether no field has failed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields returns the failing field paths in sorted order.
func (f FieldErrors) Fields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
