package sensor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Value is a sensor's current value as it appears on the wire. The API sends
// a number, a string, or nothing at all, and Value keeps the text form of
// whichever arrived.
type Value struct {
	text    string
	numeric bool
	set     bool
}

// Number returns a numeric Value.
func Number(f float64) Value {
	return Value{text: strconv.FormatFloat(f, 'f', -1, 64), numeric: true, set: true}
}

// Text returns a string Value.
func Text(s string) Value {
	return Value{text: s, set: true}
}

// IsSet reports whether a value was present. Null and "" count as absent.
func (v Value) IsSet() bool {
	return v.set && v.text != ""
}

// String returns the text form of the value.
func (v Value) String() string {
	return v.text
}

// UnmarshalJSON accepts numbers, strings, booleans and null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*v = Value{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
	case data[0] == '{' || data[0] == '[':
		return fmt.Errorf("sensor value must be a number or string, got %s", data)
	default:
		*v = Value{text: string(data), numeric: data[0] != 't' && data[0] != 'f', set: true}
	}
	return nil
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.set {
		return []byte("null"), nil
	}
	if v.numeric {
		return []byte(v.text), nil
	}
	return json.Marshal(v.text)
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseLeadingFloat parses the longest numeric prefix of s after leading
// whitespace, so "23.5°C" gives 23.5. It reports false when s has no numeric
// prefix or the result is not finite.
func ParseLeadingFloat(s string) (float64, bool) {
	m := leadingFloat.FindString(trimLeftSpace(s))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func trimLeftSpace(s string) string {
	for len(s) > 0 {
		switch s[0] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			s = s[1:]
		default:
			return s
		}
	}
	return s
}
