package tracker

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"ai-calories/internal/models"
)

// OverrideKeywords mark input that already states its own nutrition.
var OverrideKeywords = []string{
	"kcal", "calories", "cal",
	"protein", "prot", "p:",
	"fat", "f:",
	"carbs", "carb", "c:",
}

// ErrNoOverride is returned when the extractor found nothing to log.
var ErrNoOverride = errors.New("no override data in input")

const defaultOverrideName = "Override Item"

// IsOverride reports whether text contains an override keyword and at least
// one digit.
func IsOverride(text string) bool {
	if !strings.ContainsFunc(text, unicode.IsDigit) {
		return false
	}
	lower := strings.ToLower(text)
	for _, k := range OverrideKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// OverrideParser turns text with explicit numbers into a one-off record.
type OverrideParser struct {
	extractor OverrideExtractor
}

func NewOverrideParser(extractor OverrideExtractor) *OverrideParser {
	return &OverrideParser{extractor: extractor}
}

// Parse extracts and derives the override record for text.
func (p *OverrideParser) Parse(ctx context.Context, text string) (*models.NutritionRecord, error) {
	in, err := p.extractor.ExtractOverride(ctx, text)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, ErrNoOverride
	}
	rec := DeriveOverride(*in)
	return &rec, nil
}

// DeriveOverride fills in a complete record. When per-unit calories, unit
// size and total size are all positive, calories are scaled from them and
// any stated calories are ignored. Protein, fat and carbs are never scaled.
func DeriveOverride(in models.OverrideInput) models.NutritionRecord {
	calories := valueOrZero(in.Calories)
	perCal := valueOrZero(in.PerUnitCalories)
	perSize := valueOrZero(in.PerUnitSize)
	total := valueOrZero(in.TotalSize)
	if perCal > 0 && perSize > 0 && total > 0 {
		calories = perCal / perSize * total
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = defaultOverrideName
	}

	return models.NutritionRecord{
		Name:     name,
		Calories: calories,
		Protein:  valueOrZero(in.Protein),
		Fat:      valueOrZero(in.Fat),
		Carbs:    valueOrZero(in.Carbs),
		Source:   models.SourceOverride,
	}.Sanitized()
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
