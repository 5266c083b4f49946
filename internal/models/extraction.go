package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractedItem is one food item returned by the extraction oracle. The
// oracle answers either with a bare string or with a {brand, name} object;
// both decode into this type.
type ExtractedItem struct {
	Brand string `json:"brand,omitempty"`
	Name  string `json:"name"`
}

func (e *ExtractedItem) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = ExtractedItem{Name: s}
		return nil
	}
	var obj struct {
		Brand string `json:"brand"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("failed to decode extracted item: %w", err)
	}
	*e = ExtractedItem{Brand: obj.Brand, Name: obj.Name}
	return nil
}

// Canonical returns the single string used for resolution.
func (e ExtractedItem) Canonical() string {
	name := strings.TrimSpace(e.Name)
	brand := strings.TrimSpace(e.Brand)
	if brand == "" || strings.Contains(strings.ToLower(name), strings.ToLower(brand)) {
		return name
	}
	if name == "" {
		return brand
	}
	return brand + " " + name
}

// Extraction is the oracle's answer to "what did the user eat".
type Extraction struct {
	Items         []ExtractedItem `json:"items"`
	Clarification string          `json:"clarification,omitempty"`
}

// OverrideInput is a possibly partial record parsed from text that already
// states its own numbers.
type OverrideInput struct {
	Name            string   `json:"name"`
	Calories        *float64 `json:"calories"`
	Protein         *float64 `json:"protein"`
	Fat             *float64 `json:"fat"`
	Carbs           *float64 `json:"carbs"`
	PerUnitCalories *float64 `json:"per_unit_calories"`
	PerUnitSize     *float64 `json:"per_unit_size"`
	TotalSize       *float64 `json:"total_size"`
}
