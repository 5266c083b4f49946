package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ai-calories/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dir, err := os.MkdirTemp("", "calorie-log-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	s, err := NewSQLiteStorage(filepath.Join(dir, "data", "nutrition.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func mustPut(t *testing.T, s *SQLiteStorage, rec models.NutritionRecord) {
	t.Helper()
	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put(%q): %v", rec.Name, err)
	}
}

func TestGetIsCaseInsensitive(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mustPut(t, s, models.NutritionRecord{Name: "Apple", Calories: 95, Protein: 0.5, Fat: 0.3, Carbs: 25})

	for _, q := range []string{"apple", "APPLE", "  Apple  "} {
		rec, err := s.Get(ctx, q)
		if err != nil {
			t.Fatalf("Get(%q): %v", q, err)
		}
		if rec == nil {
			t.Fatalf("Get(%q) = nil, want apple", q)
		}
		if rec.Name != "apple" || rec.Calories != 95 {
			t.Errorf("Get(%q) = %+v", q, rec)
		}
		if rec.Source != models.SourceManual {
			t.Errorf("Source = %q, want manual", rec.Source)
		}
	}

	miss, err := s.Get(ctx, "pear")
	if err != nil {
		t.Fatalf("Get(pear): %v", err)
	}
	if miss != nil {
		t.Errorf("Get(pear) = %+v, want nil", miss)
	}
}

func TestPutOverwritesEntirely(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mustPut(t, s, models.NutritionRecord{Name: "natto", Calories: 90, Protein: 8, Fat: 5, Carbs: 6, Source: models.SourceEstimated})
	mustPut(t, s, models.NutritionRecord{Name: "NATTO", Calories: 100, Source: models.SourceManual})

	rec, err := s.Get(ctx, "natto")
	if err != nil || rec == nil {
		t.Fatalf("Get: %v %v", rec, err)
	}
	want := models.NutritionRecord{Name: "natto", Calories: 100, Source: models.SourceManual}
	if *rec != want {
		t.Errorf("got %+v, want %+v", *rec, want)
	}
}

func TestPutClampsNegativeValues(t *testing.T) {
	s := newTestStorage(t)
	mustPut(t, s, models.NutritionRecord{Name: "odd", Calories: -10, Protein: 2})

	rec, _ := s.Get(context.Background(), "odd")
	if rec == nil || rec.Calories != 0 || rec.Protein != 2 {
		t.Errorf("got %+v", rec)
	}
}

func TestPutRequiresName(t *testing.T) {
	s := newTestStorage(t)
	if err := s.Put(context.Background(), models.NutritionRecord{Name: "   "}); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestFindCandidatesShortestFirst(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	for _, name := range []string{"sukiya gyudon (large)", "sukiya gyudon", "sukiya gyudon (mini)", "sukiya curry"} {
		mustPut(t, s, models.NutritionRecord{Name: name, Calories: 500})
	}

	got, err := s.FindCandidates(ctx, "Gyudon", 10)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	var names []string
	for _, r := range got {
		names = append(names, r.Name)
	}
	want := []string{"sukiya gyudon", "sukiya gyudon (mini)", "sukiya gyudon (large)"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	limited, _ := s.FindCandidates(ctx, "sukiya", 2)
	if len(limited) != 2 {
		t.Errorf("limit ignored: got %d", len(limited))
	}
}

func TestFindCandidatesEscapesWildcards(t *testing.T) {
	s := newTestStorage(t)
	mustPut(t, s, models.NutritionRecord{Name: "100% juice", Calories: 110})
	mustPut(t, s, models.NutritionRecord{Name: "100 juice", Calories: 1})

	got, err := s.FindCandidates(context.Background(), "100%", 5)
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 1 || got[0].Name != "100% juice" {
		t.Errorf("got %+v", got)
	}
}

func TestFuzzySearchOne(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	mustPut(t, s, models.NutritionRecord{Name: "white rice", Calories: 240})
	mustPut(t, s, models.NutritionRecord{Name: "brown rice bowl", Calories: 300})

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"shortest wins", "rice", "white rice"},
		{"too short", "ri", ""},
		{"no match", "ramen", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.FuzzySearchOne(ctx, tc.query)
			if err != nil {
				t.Fatalf("FuzzySearchOne: %v", err)
			}
			if tc.want == "" {
				if got != nil {
					t.Errorf("got %+v, want nil", got)
				}
				return
			}
			if got == nil || got.Name != tc.want {
				t.Errorf("got %+v, want %q", got, tc.want)
			}
		})
	}
}

func TestDailyLogIsAppendOnlySnapshot(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	apple := models.NutritionRecord{Name: "apple", Calories: 95, Protein: 0.5, Fat: 0.3, Carbs: 25, Source: models.SourceManual}
	mustPut(t, s, apple)

	first, err := s.AppendLog(ctx, "2026-10-18", apple)
	if err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	if first.ID == "" {
		t.Error("expected entry ID")
	}
	if _, err := s.AppendLog(ctx, "2026-10-18", models.NutritionRecord{Name: "coffee", Calories: 5}); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}
	if _, err := s.AppendLog(ctx, "2026-10-17", apple); err != nil {
		t.Fatalf("AppendLog: %v", err)
	}

	// editing the canonical record must not change history
	mustPut(t, s, models.NutritionRecord{Name: "apple", Calories: 200})

	entries, err := s.DailyLog(ctx, "2026-10-18")
	if err != nil {
		t.Fatalf("DailyLog: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Record.Name != "apple" || entries[1].Record.Name != "coffee" {
		t.Errorf("order = %q, %q", entries[0].Record.Name, entries[1].Record.Name)
	}
	if entries[0].Record.Calories != 95 {
		t.Errorf("history changed: calories = %v", entries[0].Record.Calories)
	}
	if entries[0].ID != first.ID {
		t.Errorf("ID = %q, want %q", entries[0].ID, first.ID)
	}

	// log writes do not touch the food table
	if rec, _ := s.Get(ctx, "coffee"); rec != nil {
		t.Errorf("AppendLog created food record %+v", rec)
	}

	empty, err := s.DailyLog(ctx, "2026-01-01")
	if err != nil {
		t.Fatalf("DailyLog: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("expected empty log, got %d", len(empty))
	}
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nutrition.db")

	s, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Put(ctx, models.NutritionRecord{Name: "banana", Calories: 105}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AppendLog(ctx, "2026-10-18", models.NutritionRecord{Name: "banana", Calories: 105}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewSQLiteStorage(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	rec, _ := s2.Get(ctx, "banana")
	if rec == nil {
		t.Fatal("banana lost after reopen")
	}
	entries, _ := s2.DailyLog(ctx, "2026-10-18")
	if len(entries) != 1 {
		t.Errorf("expected 1 entry after reopen, got %d", len(entries))
	}
}
