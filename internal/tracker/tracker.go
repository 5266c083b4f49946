package tracker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ai-calories/internal/models"
)

const dayLayout = "2006-01-02"

// DefaultHistoryDays is the window used when History is asked for 0 days.
const DefaultHistoryDays = 7

const (
	laneExact    = "exact"
	laneOverride = "override"
	laneNormal   = "normal"
)

const (
	msgNotUnderstood  = "I'm sorry, I had trouble understanding that. Could you rephrase?"
	msgNothingFound   = "I couldn't find any food in that. What did you eat?"
	msgEmptyInput     = "What did you eat?"
	msgOverrideFailed = "Failed to log override item."
)

// Tracker owns today's totals. It reloads them from the store whenever the
// wall-clock date moves past the day it holds. Calls are serialized, so one
// utterance is fully processed before the next starts.
type Tracker struct {
	mu        sync.Mutex
	store     Store
	resolver  *Resolver
	extractor ItemExtractor
	overrides *OverrideParser
	recorder  Recorder
	now       func() time.Time

	day    models.DailyTotals
	loaded bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithRecorder sets the event sink for meal and resolution events.
func WithRecorder(r Recorder) Option {
	return func(t *Tracker) {
		if r != nil {
			t.recorder = r
		}
	}
}

// NewTracker creates a Tracker and loads today's log from store.
func NewTracker(ctx context.Context, store Store, resolver *Resolver, extractor ItemExtractor, overrides OverrideExtractor, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store:     store,
		resolver:  resolver,
		extractor: extractor,
		overrides: NewOverrideParser(overrides),
		recorder:  nopRecorder{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	resolver.SetRecorder(t.recorder)

	if err := t.ensureDay(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) today() string {
	return t.now().Format(dayLayout)
}

// ensureDay rebuilds the held totals from the store when the date changed.
func (t *Tracker) ensureDay(ctx context.Context) error {
	date := t.today()
	if t.loaded && t.day.Date == date {
		return nil
	}

	entries, err := t.store.DailyLog(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load log for %s: %w", date, err)
	}

	day := models.DailyTotals{Date: date, Entries: entries}
	for _, e := range entries {
		day.Totals.Add(e.Record)
	}
	if t.loaded {
		log.Printf("Tracker: new day, switching from %s to %s", t.day.Date, date)
	}
	t.day = day
	t.loaded = true
	return nil
}

// apply persists rec to the log and only then adds it to the totals, so the
// in-memory view never holds an entry the store does not.
func (t *Tracker) apply(ctx context.Context, rec models.NutritionRecord) error {
	entry, err := t.store.AppendLog(ctx, t.day.Date, rec)
	if err != nil {
		return fmt.Errorf("failed to log %q: %w", rec.Name, err)
	}
	t.day.Entries = append(t.day.Entries, entry)
	t.day.Totals.Add(entry.Record)
	return nil
}

// LogMeal processes one utterance. Clarifications are reported in the
// result; an error means the store could not be read or written.
func (t *Tracker) LogMeal(ctx context.Context, rawText string) (*models.LogResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureDay(ctx); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(rawText)
	if text == "" {
		return t.result(models.StatusClarification, msgEmptyInput, nil), nil
	}
	log.Printf("Tracker: processing %q", text)

	rec, err := t.store.Get(ctx, text)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		if err := t.apply(ctx, *rec); err != nil {
			return nil, err
		}
		t.recorder.ObserveMeal(laneExact, models.StatusSuccess)
		items := []models.ItemResult{{Name: rec.Name, Status: models.ItemFromDB, Record: rec}}
		return t.result(models.StatusSuccess, "", items), nil
	}

	if IsOverride(text) {
		return t.logOverride(ctx, text)
	}
	return t.logItems(ctx, text)
}

func (t *Tracker) logOverride(ctx context.Context, text string) (*models.LogResult, error) {
	log.Printf("Tracker: override keywords detected")
	rec, err := t.overrides.Parse(ctx, text)
	if err != nil {
		log.Printf("Tracker: failed to parse override: %v", err)
		t.recorder.ObserveMeal(laneOverride, models.StatusError)
		return t.result(models.StatusError, msgOverrideFailed, nil), nil
	}
	if err := t.apply(ctx, *rec); err != nil {
		return nil, err
	}
	log.Printf("Tracker: logged override item %q (%.0f kcal)", rec.Name, rec.Calories)
	t.recorder.ObserveMeal(laneOverride, models.StatusSuccess)
	items := []models.ItemResult{{Name: rec.Name, Status: models.ItemOverride, Record: rec}}
	return t.result(models.StatusSuccess, "", items), nil
}

func (t *Tracker) logItems(ctx context.Context, text string) (*models.LogResult, error) {
	extraction, err := t.extractor.ExtractItems(ctx, text)
	if err != nil {
		log.Printf("Tracker: item extraction failed: %v", err)
		t.recorder.ObserveMeal(laneNormal, models.StatusClarification)
		return t.result(models.StatusClarification, msgNotUnderstood, nil), nil
	}
	if extraction.Clarification != "" {
		t.recorder.ObserveMeal(laneNormal, models.StatusClarification)
		return t.result(models.StatusClarification, extraction.Clarification, nil), nil
	}
	if len(extraction.Items) == 0 {
		t.recorder.ObserveMeal(laneNormal, models.StatusClarification)
		return t.result(models.StatusClarification, msgNothingFound, nil), nil
	}

	var items []models.ItemResult
	for _, item := range extraction.Items {
		name := item.Canonical()
		if name == "" {
			continue
		}

		out := t.resolver.Resolve(ctx, name)
		switch out.Kind {
		case NeedsClarification:
			// items applied earlier in the batch stay logged
			t.recorder.ObserveMeal(laneNormal, models.StatusClarification)
			return t.result(models.StatusClarification, out.Message, items), nil
		case Resolved:
			if err := t.apply(ctx, *out.Record); err != nil {
				return nil, err
			}
			items = append(items, models.ItemResult{Name: name, Status: out.Status, Record: out.Record})
		default:
			res := models.ItemResult{Name: name, Status: models.ItemFailed}
			if out.Err != nil {
				res.Error = out.Err.Error()
			}
			log.Printf("Tracker: could not resolve %q, skipping", name)
			items = append(items, res)
		}
	}

	t.recorder.ObserveMeal(laneNormal, models.StatusSuccess)
	return t.result(models.StatusSuccess, "", items), nil
}

func (t *Tracker) result(status models.Status, message string, items []models.ItemResult) *models.LogResult {
	return &models.LogResult{
		Status:  status,
		Message: message,
		Items:   items,
		Date:    t.day.Date,
		Totals:  t.day.Totals,
	}
}

// Summary returns a snapshot of today's totals and log.
func (t *Tracker) Summary(ctx context.Context) (*models.Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.ensureDay(ctx); err != nil {
		return nil, err
	}
	entries := make([]models.ConsumptionLogEntry, len(t.day.Entries))
	copy(entries, t.day.Entries)
	return &models.Summary{Date: t.day.Date, Totals: t.day.Totals, Log: entries}, nil
}

// History returns per-day totals for the last days days, oldest first and
// ending today.
func (t *Tracker) History(ctx context.Context, days int) ([]models.DayTotals, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	out := make([]models.DayTotals, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dayLayout)
		entries, err := t.store.DailyLog(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load log for %s: %w", date, err)
		}
		dt := models.DayTotals{Date: date, Entries: len(entries)}
		for _, e := range entries {
			dt.Totals.Add(e.Record)
		}
		out = append(out, dt)
	}
	return out, nil
}

// Lookup resolves name without logging it. Newly found records are still
// saved to the store.
func (t *Tracker) Lookup(ctx context.Context, name string) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resolver.Resolve(ctx, strings.TrimSpace(name))
}
