package tracker_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ai-calories/internal/models"
	"ai-calories/internal/storage"
	"ai-calories/internal/tracker"
)

var errDiskFull = errors.New("disk full")

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	s, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "nutrition.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s tracker.Store, recs ...models.NutritionRecord) {
	t.Helper()
	for _, r := range recs {
		if err := s.Put(context.Background(), r); err != nil {
			t.Fatalf("Put(%q): %v", r.Name, err)
		}
	}
}

// flakyStore wraps a Store and fails writes while the flags are set.
type flakyStore struct {
	tracker.Store
	failPut    bool
	failAppend bool
}

func (f *flakyStore) Put(ctx context.Context, rec models.NutritionRecord) error {
	if f.failPut {
		return errDiskFull
	}
	return f.Store.Put(ctx, rec)
}

func (f *flakyStore) AppendLog(ctx context.Context, date string, rec models.NutritionRecord) (models.ConsumptionLogEntry, error) {
	if f.failAppend {
		return models.ConsumptionLogEntry{}, errDiskFull
	}
	return f.Store.AppendLog(ctx, date, rec)
}

type mockExtractor struct {
	extractFn func(ctx context.Context, text string) (*models.Extraction, error)
	calls     int
}

func (m *mockExtractor) ExtractItems(ctx context.Context, text string) (*models.Extraction, error) {
	m.calls++
	if m.extractFn != nil {
		return m.extractFn(ctx, text)
	}
	return &models.Extraction{}, nil
}

func itemsOf(names ...string) *mockExtractor {
	items := make([]models.ExtractedItem, 0, len(names))
	for _, n := range names {
		items = append(items, models.ExtractedItem{Name: n})
	}
	return &mockExtractor{extractFn: func(context.Context, string) (*models.Extraction, error) {
		return &models.Extraction{Items: items}, nil
	}}
}

type mockEstimator struct {
	guesses map[string]models.NutritionRecord
	err     error
	calls   map[string]int
}

func newEstimator(guesses map[string]models.NutritionRecord) *mockEstimator {
	return &mockEstimator{guesses: guesses, calls: make(map[string]int)}
}

func (m *mockEstimator) Estimate(_ context.Context, name string) (*models.NutritionRecord, error) {
	m.calls[name]++
	if m.err != nil {
		return nil, m.err
	}
	g, ok := m.guesses[name]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *mockEstimator) total() int {
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

type mockExternal struct {
	searchFn func(ctx context.Context, query string) (*models.NutritionRecord, error)
	queries  []string
}

func (m *mockExternal) Search(ctx context.Context, query string) (*models.NutritionRecord, error) {
	m.queries = append(m.queries, query)
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

type mockOverride struct {
	in  *models.OverrideInput
	err error
}

func (m *mockOverride) ExtractOverride(context.Context, string) (*models.OverrideInput, error) {
	return m.in, m.err
}

// stubStrategy answers with a fixed outcome for one item and misses otherwise.
type stubStrategy struct {
	item    string
	outcome tracker.Outcome
}

func (stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Attempt(_ context.Context, itemName string) (tracker.Outcome, error) {
	if itemName != s.item {
		return tracker.Outcome{Kind: tracker.Miss}, nil
	}
	return s.outcome, nil
}

func ptr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
