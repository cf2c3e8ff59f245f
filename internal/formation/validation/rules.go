package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	dErrors "formation/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// checker accumulates field errors. Each rule method reports whether its
// value passed so callers can gate cross-field rules on structural validity.
type checker struct {
	fields dErrors.FieldErrors
	today  time.Time
}

func newChecker(today time.Time) *checker {
	y, m, d := today.Date()
	return &checker{
		fields: dErrors.NewFieldErrors(),
		today:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func (c *checker) fail(path, format string, args ...any) bool {
	c.fields.Add(path, fmt.Sprintf(format, args...))
	return false
}

// attribute renders a field path the way messages name it.
func attribute(path string) string {
	return strings.ReplaceAll(path, "_", " ")
}

func (c *checker) required(path string) bool {
	return c.fail(path, "The %s field is required.", attribute(path))
}

// str unwraps a required string; blank counts as missing.
func (c *checker) str(path string, v Text) (string, bool) {
	if !v.Present() {
		return "", c.required(path)
	}
	if !v.Valid() {
		return "", c.fail(path, "The %s field must be a string.", attribute(path))
	}
	value := strings.TrimSpace(v.String())
	if value == "" {
		return "", c.required(path)
	}
	return value, true
}

// text checks a required string and returns it trimmed.
func (c *checker) text(path string, v Text, minLen, maxLen int) (string, bool) {
	value, ok := c.str(path, v)
	if !ok {
		return value, false
	}
	return value, c.length(path, value, minLen, maxLen)
}

// optionalText checks an optional string; blank counts as absent.
func (c *checker) optionalText(path string, v Text, maxLen int) (*string, bool) {
	if !v.Present() {
		return nil, true
	}
	if !v.Valid() {
		return nil, c.fail(path, "The %s field must be a string.", attribute(path))
	}
	trimmed := strings.TrimSpace(v.String())
	if trimmed == "" {
		return nil, true
	}
	return &trimmed, c.length(path, trimmed, 0, maxLen)
}

// requiredText is text for a field the model keeps as a pointer.
func (c *checker) requiredText(path string, v Text, maxLen int) (*string, bool) {
	value, ok := c.str(path, v)
	if !ok {
		return nil, false
	}
	if !c.length(path, value, 0, maxLen) {
		return nil, false
	}
	return &value, true
}

func (c *checker) length(path, value string, minLen, maxLen int) bool {
	n := utf8.RuneCountInString(value)
	if minLen > 0 && n < minLen {
		return c.fail(path, "The %s field must be at least %d characters.", attribute(path), minLen)
	}
	if maxLen > 0 && n > maxLen {
		return c.fail(path, "The %s field must not be greater than %d characters.", attribute(path), maxLen)
	}
	return true
}

func (c *checker) email(path string, v Text) (string, bool) {
	value, ok := c.text(path, v, 0, 255)
	if !ok {
		return value, false
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		return value, c.fail(path, "The %s field must be a valid email address.", attribute(path))
	}
	return value, true
}

// oneOf checks membership using the enum's own predicate.
func (c *checker) oneOf(path string, v Text, valid func(string) bool) (string, bool) {
	value, ok := c.str(path, v)
	if !ok {
		return value, false
	}
	if !valid(value) {
		return value, c.fail(path, "The selected %s is invalid.", attribute(path))
	}
	return value, true
}

func (c *checker) boolean(path string, v Bool) (bool, bool) {
	if !v.Present() {
		return false, c.required(path)
	}
	if !v.Valid() {
		return false, c.fail(path, "The %s field must be true or false.", attribute(path))
	}
	return v.Value(), true
}

// object checks that a required section is a JSON object.
func (c *checker) object(path string, present, valid bool) bool {
	if !present {
		return c.required(path)
	}
	if !valid {
		return c.fail(path, "The %s field must be an object.", attribute(path))
	}
	return true
}

// list checks that a required party list is a non-empty JSON array.
func (c *checker) list(path string, present, valid bool, n int) bool {
	if present && !valid {
		return c.fail(path, "The %s field must be an array.", attribute(path))
	}
	if n == 0 {
		return c.required(path)
	}
	return true
}

func (c *checker) number(path string, n Numeric) (decimal.Decimal, bool) {
	if !n.Present() {
		return decimal.Zero, c.required(path)
	}
	if !n.Valid() {
		return decimal.Zero, c.fail(path, "The %s field must be a number.", attribute(path))
	}
	return n.Decimal(), true
}

// atLeast checks a required number ≥ min.
func (c *checker) atLeast(path string, n Numeric, minimum decimal.Decimal) (decimal.Decimal, bool) {
	d, ok := c.number(path, n)
	if !ok {
		return d, false
	}
	if d.LessThan(minimum) {
		return d, c.fail(path, "The %s field must be at least %s.", attribute(path), minimum.String())
	}
	return d, true
}

// percentage checks a required number in (0, 100].
func (c *checker) percentage(path string, n Numeric) (decimal.Decimal, bool) {
	d, ok := c.number(path, n)
	if !ok {
		return d, false
	}
	if !d.IsPositive() {
		return d, c.fail(path, "The %s field must be greater than 0.", attribute(path))
	}
	if d.GreaterThan(hundred) {
		return d, c.fail(path, "The %s field must not be greater than 100.", attribute(path))
	}
	return d, true
}

// positiveInteger checks a number that must be a whole value ≥ 1 fitting int64.
func (c *checker) positiveInteger(path string, n Numeric) (int64, bool) {
	d, ok := c.number(path, n)
	if !ok {
		return 0, false
	}
	if !d.IsInteger() || d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return 0, c.fail(path, "The %s field must be an integer.", attribute(path))
	}
	if d.LessThan(decimal.NewFromInt(1)) {
		return 0, c.fail(path, "The %s field must be at least 1.", attribute(path))
	}
	return d.IntPart(), true
}

// pastDate parses an ISO date (or RFC 3339 timestamp) that must fall strictly
// before today and returns it as YYYY-MM-DD.
func (c *checker) pastDate(path string, v Text, required bool) (*string, bool) {
	if !v.Present() || v.Valid() && strings.TrimSpace(v.String()) == "" {
		if required {
			return nil, c.required(path)
		}
		return nil, true
	}
	if !v.Valid() {
		return nil, c.fail(path, "The %s field must be a valid date.", attribute(path))
	}
	raw := strings.TrimSpace(v.String())
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		ts, tsErr := time.Parse(time.RFC3339, raw)
		if tsErr != nil {
			return nil, c.fail(path, "The %s field must be a valid date.", attribute(path))
		}
		y, m, d := ts.Date()
		parsed = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if !parsed.Before(c.today) {
		return nil, c.fail(path, "The %s field must be a date before today.", attribute(path))
	}
	normalized := parsed.Format(dateLayout)
	return &normalized, true
}

var (
	hundred  = decimal.NewFromInt(100)
	maxInt64 = decimal.NewFromInt(1<<63 - 1)
	minInt64 = decimal.NewFromInt(-1 << 63)
)
