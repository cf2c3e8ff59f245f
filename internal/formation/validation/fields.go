package validation

import (
	"bytes"
	"encoding/json"
)

// The types below never fail to decode. A value of the wrong JSON type is
// kept as present but invalid, so one bad field cannot hide the rest of the
// body from Validate and every failure is reported under its own path.

func isNull(raw []byte) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

// Text is a JSON string field.
type Text struct {
	present bool
	valid   bool
	value   string
}

func NewText(s string) Text {
	return Text{present: true, valid: true, value: s}
}

func (t *Text) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	*t = Text{}
	if isNull(raw) {
		return nil
	}
	t.present = true
	if raw[0] != '"' || json.Unmarshal(raw, &t.value) != nil {
		return nil
	}
	t.valid = true
	return nil
}

func (t Text) Present() bool { return t.present }

func (t Text) Valid() bool { return t.present && t.valid }

func (t Text) String() string { return t.value }

// Bool is a JSON boolean field. 1, 0 and the strings "1", "0", "true" and
// "false" are accepted as well, since form clients post checkboxes that way.
type Bool struct {
	present bool
	valid   bool
	value   bool
}

func NewBool(v bool) Bool {
	return Bool{present: true, valid: true, value: v}
}

func (v *Bool) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	*v = Bool{}
	if isNull(raw) {
		return nil
	}
	v.present = true
	s := string(raw)
	if raw[0] == '"' && json.Unmarshal(raw, &s) != nil {
		return nil
	}
	switch s {
	case "true", "1":
		v.valid, v.value = true, true
	case "false", "0":
		v.valid = true
	}
	return nil
}

func (v Bool) Present() bool { return v.present }

func (v Bool) Valid() bool { return v.present && v.valid }

func (v Bool) Value() bool { return v.value }

// Object is a JSON object decoded into T. T's own fields must be lenient
// types for the decode to be total.
type Object[T any] struct {
	present bool
	valid   bool
	value   T
}

func NewObject[T any](v T) Object[T] {
	return Object[T]{present: true, valid: true, value: v}
}

func (o *Object[T]) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	*o = Object[T]{}
	if isNull(raw) {
		return nil
	}
	o.present = true
	if raw[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(raw, &o.value); err != nil {
		var zero T
		o.value = zero
		return nil
	}
	o.valid = true
	return nil
}

func (o Object[T]) Present() bool { return o.present }

func (o Object[T]) Valid() bool { return o.present && o.valid }

func (o Object[T]) Value() T { return o.value }

// List is a JSON array of lenient elements.
type List[T any] struct {
	present bool
	valid   bool
	items   []T
}

func NewList[T any](items ...T) List[T] {
	return List[T]{present: true, valid: true, items: items}
}

func (l *List[T]) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	*l = List[T]{}
	if isNull(raw) {
		return nil
	}
	l.present = true
	if raw[0] != '[' {
		return nil
	}
	if err := json.Unmarshal(raw, &l.items); err != nil {
		l.items = nil
		return nil
	}
	l.valid = true
	return nil
}

func (l List[T]) Present() bool { return l.present }

func (l List[T]) Valid() bool { return l.present && l.valid }

func (l List[T]) Items() []T { return l.items }
