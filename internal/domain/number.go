package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a numeric request field. It accepts a JSON number, a numeric
// string or a boolean, and remembers whether a value was supplied at all and
// whether it parsed cleanly. Unparseable input keeps Present true with a zero
// value so callers can choose between the fail-open and strict policies.
type Number struct {
	value   float64
	present bool
	valid   bool
	raw     string
}

// NumberOf returns a present, valid Number.
func NumberOf(v float64) Number {
	return Number{value: v, present: true, valid: true}
}

// NumberFromPtr converts an optional float into a Number.
func NumberFromPtr(v *float64) Number {
	if v == nil {
		return Number{}
	}
	return NumberOf(*v)
}

// ParseNumber builds a Number from free text. Empty text counts as absent.
func ParseNumber(text string) Number {
	text = strings.TrimSpace(text)
	if text == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Number{present: true, raw: text}
	}
	return Number{value: v, present: true, valid: true, raw: text}
}

// Value returns the parsed value, or 0 when absent or unparseable.
func (n Number) Value() float64 {
	return n.value
}

// Present reports whether the field was supplied.
func (n Number) Present() bool {
	return n.present
}

// Valid reports whether the supplied value parsed as a number.
func (n Number) Valid() bool {
	return n.present && n.valid
}

// Raw returns the original text for string input.
func (n Number) Raw() string {
	return n.raw
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = Number{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case bytes.Equal(data, []byte("true")):
		*n = NumberOf(1)
		return nil
	case bytes.Equal(data, []byte("false")):
		*n = NumberOf(0)
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = ParseNumber(s)
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = Number{present: true, raw: string(data)}
		return nil
	}
	*n = NumberOf(v)
	return nil
}

// MarshalJSON implements json.Marshaler. Absent values encode as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.present {
		return []byte("null"), nil
	}
	if !n.valid {
		return json.Marshal(n.raw)
	}
	return json.Marshal(n.value)
}
