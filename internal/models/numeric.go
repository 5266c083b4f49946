package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CleanFloat coerces a textual nutrient value such as "477kcal" or "21.9g"
// into a non-negative float. Everything except digits and dots is dropped;
// unparsable input yields 0.
func CleanFloat(s string) float64 {
	var b strings.Builder
	for _, c := range s {
		if (c >= '0' && c <= '9') || c == '.' {
			b.WriteRune(c)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return nonNegative(v)
}

// Quantity is a nutrient amount decoded from JSON or YAML that may arrive as
// a number, a string with units, or null.
type Quantity float64

// Float returns q as a float64.
func (q Quantity) Float() float64 { return float64(q) }

func (q *Quantity) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(anyToFloat(raw))
	return nil
}

func (q *Quantity) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		*q = 0
		return nil
	}
	*q = Quantity(anyToFloat(raw))
	return nil
}

func anyToFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return nonNegative(t)
	case float32:
		return nonNegative(float64(t))
	case int:
		return nonNegative(float64(t))
	case int64:
		return nonNegative(float64(t))
	case uint64:
		return float64(t)
	case string:
		return CleanFloat(t)
	default:
		return 0
	}
}
