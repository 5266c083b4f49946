package models

import (
	"encoding/json"
	"testing"
)

func TestCleanFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"477kcal", 477},
		{"21.9g", 21.9},
		{" 12 ", 12},
		{"-5", 5},
		{"", 0},
		{"n/a", 0},
		{"1.2.3", 0},
	}
	for _, tc := range tests {
		if got := CleanFloat(tc.in); got != tc.want {
			t.Errorf("CleanFloat(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestQuantityUnmarshalJSON(t *testing.T) {
	var v struct {
		A Quantity `json:"a"`
		B Quantity `json:"b"`
		C Quantity `json:"c"`
		D Quantity `json:"d"`
		E Quantity `json:"e"`
	}
	in := `{"a": 12.5, "b": "477kcal", "c": null, "d": "garbage", "e": -3}`
	if err := json.Unmarshal([]byte(in), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	got := []float64{v.A.Float(), v.B.Float(), v.C.Float(), v.D.Float(), v.E.Float()}
	want := []float64{12.5, 477, 0, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSanitized(t *testing.T) {
	r := NutritionRecord{Name: "x", Calories: -1, Protein: 3}.Sanitized()
	if r.Calories != 0 || r.Protein != 3 {
		t.Errorf("got %+v", r)
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  McDonald's   Big  MAC "); got != "mcdonald's big mac" {
		t.Errorf("got %q", got)
	}
}
