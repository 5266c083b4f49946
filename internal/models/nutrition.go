package models

import (
	"math"
	"strings"
	"time"
)

// Source records where a nutrition record came from.
type Source string

const (
	SourceManual    Source = "manual"
	SourceEstimated Source = "estimated"
	SourceExternal  Source = "external"
	SourceOverride  Source = "override"
)

// NutritionRecord is the nutrition facts for one serving of a named food.
type NutritionRecord struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Source   Source  `json:"source"`
}

// Key returns the identity key of the record.
func (r NutritionRecord) Key() string {
	return NormalizeName(r.Name)
}

// Sanitized returns a copy whose macros are finite and non-negative.
func (r NutritionRecord) Sanitized() NutritionRecord {
	r.Calories = nonNegative(r.Calories)
	r.Protein = nonNegative(r.Protein)
	r.Fat = nonNegative(r.Fat)
	r.Carbs = nonNegative(r.Carbs)
	return r
}

// NormalizeName lower-cases name, trims it and collapses inner whitespace.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Totals is a running sum of macros.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Add accumulates the macros of r.
func (t *Totals) Add(r NutritionRecord) {
	t.Calories += r.Calories
	t.Protein += r.Protein
	t.Fat += r.Fat
	t.Carbs += r.Carbs
}

// ConsumptionLogEntry is one immutable line of the daily log. Record is a
// snapshot taken when the entry was written.
type ConsumptionLogEntry struct {
	ID       string          `json:"id"`
	Date     string          `json:"date"`
	Record   NutritionRecord `json:"record"`
	LoggedAt time.Time       `json:"logged_at"`
}

// DailyTotals is the in-memory view of one day's consumption.
type DailyTotals struct {
	Date    string
	Totals  Totals
	Entries []ConsumptionLogEntry
}

// Summary is a read-only snapshot of a day.
type Summary struct {
	Date   string                `json:"date"`
	Totals Totals                `json:"totals"`
	Log    []ConsumptionLogEntry `json:"log"`
}

// DayTotals is the aggregate of a single past day.
type DayTotals struct {
	Date    string `json:"date"`
	Entries int    `json:"entries"`
	Totals  Totals `json:"totals"`
}
