// Package tracker resolves free-text meal descriptions into nutrition
// records and keeps the running totals for the current day.
package tracker

import (
	"context"

	"ai-calories/internal/models"
)

// Store is the nutrition record and consumption log store. Lookups report a
// miss as nil, nil.
type Store interface {
	Get(ctx context.Context, name string) (*models.NutritionRecord, error)
	FindCandidates(ctx context.Context, substring string, limit int) ([]models.NutritionRecord, error)
	FuzzySearchOne(ctx context.Context, substring string) (*models.NutritionRecord, error)
	Put(ctx context.Context, rec models.NutritionRecord) error
	AppendLog(ctx context.Context, date string, rec models.NutritionRecord) (models.ConsumptionLogEntry, error)
	DailyLog(ctx context.Context, date string) ([]models.ConsumptionLogEntry, error)
}

// ItemExtractor turns an utterance into item names or a clarification
// question. Quantities are expanded into repeated items by the extractor.
type ItemExtractor interface {
	ExtractItems(ctx context.Context, text string) (*models.Extraction, error)
}

// Estimator guesses nutrition for a food name. A nil record means no guess.
type Estimator interface {
	Estimate(ctx context.Context, foodName string) (*models.NutritionRecord, error)
}

// OverrideExtractor pulls explicitly stated numbers out of an utterance.
type OverrideExtractor interface {
	ExtractOverride(ctx context.Context, text string) (*models.OverrideInput, error)
}

// ExternalLookup searches a third-party food database. A nil record means
// nothing was found.
type ExternalLookup interface {
	Search(ctx context.Context, query string) (*models.NutritionRecord, error)
}

// Recorder receives resolution and logging events, typically for metrics.
type Recorder interface {
	ObserveResolution(strategy, outcome string)
	ObserveMeal(lane string, status models.Status)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResolution(string, string) {}
func (nopRecorder) ObserveMeal(string, models.Status) {}
