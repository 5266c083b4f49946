package tracker_test

import (
	"context"
	"errors"
	"testing"

	"ai-calories/internal/models"
	"ai-calories/internal/tracker"
)

func TestIsOverride(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Suntory Boss Coffee, 32 kcal, 1.5p, 0.5f, 5c", true},
		{"1000ml pack of soy milk, 45 kcal per 100ml", true},
		{"a croissant, 300 calories", true},
		{"protein bar 20g Protein", true},
		{"yogurt p:10 f:2 c:8", true},
		{"two apples and a banana", false},
		{"some fatty tuna", false},
		{"low calorie yogurt", false},
	}
	for _, tc := range tests {
		if got := tracker.IsOverride(tc.text); got != tc.want {
			t.Errorf("IsOverride(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestDeriveOverride(t *testing.T) {
	tests := []struct {
		name string
		in   models.OverrideInput
		want models.NutritionRecord
	}{
		{
			name: "per unit",
			in:   models.OverrideInput{Name: "caffe latte 500ml", PerUnitCalories: ptr(30), PerUnitSize: ptr(100), TotalSize: ptr(500)},
			want: models.NutritionRecord{Name: "caffe latte 500ml", Calories: 150},
		},
		{
			name: "per unit wins over stated calories",
			in:   models.OverrideInput{Name: "soy milk", Calories: ptr(45), PerUnitCalories: ptr(45), PerUnitSize: ptr(100), TotalSize: ptr(1000)},
			want: models.NutritionRecord{Name: "soy milk", Calories: 450},
		},
		{
			name: "macros are not scaled",
			in:   models.OverrideInput{Name: "juice", Protein: ptr(1), Carbs: ptr(10), PerUnitCalories: ptr(40), PerUnitSize: ptr(100), TotalSize: ptr(200)},
			want: models.NutritionRecord{Name: "juice", Calories: 80, Protein: 1, Carbs: 10},
		},
		{
			name: "stated totals",
			in:   models.OverrideInput{Name: "Suntory Boss Coffee", Calories: ptr(32), Protein: ptr(1.5), Fat: ptr(0.5), Carbs: ptr(5)},
			want: models.NutritionRecord{Name: "Suntory Boss Coffee", Calories: 32, Protein: 1.5, Fat: 0.5, Carbs: 5},
		},
		{
			name: "incomplete per unit falls back",
			in:   models.OverrideInput{Name: "croissant", Calories: ptr(300), PerUnitCalories: ptr(30), PerUnitSize: ptr(0)},
			want: models.NutritionRecord{Name: "croissant", Calories: 300},
		},
		{
			name: "all null",
			in:   models.OverrideInput{},
			want: models.NutritionRecord{Name: "Override Item"},
		},
		{
			name: "negative values clamp",
			in:   models.OverrideInput{Name: "x", Calories: ptr(-20), Fat: ptr(-1)},
			want: models.NutritionRecord{Name: "x"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.want.Source = models.SourceOverride
			got := tracker.DeriveOverride(tc.in)
			if got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestOverrideParserErrors(t *testing.T) {
	p := tracker.NewOverrideParser(&mockOverride{})
	if _, err := p.Parse(context.Background(), "32 kcal"); !errors.Is(err, tracker.ErrNoOverride) {
		t.Errorf("err = %v, want ErrNoOverride", err)
	}

	boom := errors.New("bad json")
	p = tracker.NewOverrideParser(&mockOverride{err: boom})
	if _, err := p.Parse(context.Background(), "32 kcal"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}
