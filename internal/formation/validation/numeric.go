package validation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	maxNumericLength   = 40
	maxNumericExponent = 30
)

// Numeric is a JSON number that never fails to decode. Clients send numbers
// both as literals and as quoted strings; a value that does not parse is kept
// as invalid so the validator can report it against its field path instead of
// aborting the whole body.
type Numeric struct {
	present bool
	valid   bool
	value   decimal.Decimal
}

// NewNumeric returns a present, valid Numeric.
func NewNumeric(d decimal.Decimal) Numeric {
	return Numeric{present: true, valid: true, value: d}
}

// NumericFromString parses s the same way UnmarshalJSON does.
func NumericFromString(s string) Numeric {
	var n Numeric
	n.set(s)
	return n
}

func (n *Numeric) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if bytes.Equal(raw, []byte("null")) {
		*n = Numeric{}
		return nil
	}
	s := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			*n = Numeric{present: true}
			return nil
		}
		s = unquoted
	}
	n.set(s)
	return nil
}

func (n Numeric) MarshalJSON() ([]byte, error) {
	if !n.present || !n.valid {
		return []byte("null"), nil
	}
	return []byte(n.value.String()), nil
}

func (n *Numeric) set(s string) {
	*n = Numeric{present: true}
	s = strings.TrimSpace(s)
	if s == "" {
		// An empty string counts as missing, like an empty text field.
		n.present = false
		return
	}
	if len(s) > maxNumericLength {
		return
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return
	}
	// Comparisons rescale both operands to a common exponent, so an unbounded
	// exponent turns one short value into an arbitrarily large big.Int.
	if exp := d.Exponent(); exp > maxNumericExponent || exp < -maxNumericExponent {
		return
	}
	n.valid = true
	n.value = d
}

// Present reports whether the field carried a non-null value.
func (n Numeric) Present() bool { return n.present }

// Valid reports whether the present value parsed as a number.
func (n Numeric) Valid() bool { return n.present && n.valid }

func (n Numeric) Decimal() decimal.Decimal { return n.value }
