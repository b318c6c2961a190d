package util

import (
	"math"
	"testing"
)

func TestNormalizeKey(t *testing.T) {
	cases := map[string]string{
		"  Fresh   Tomatoes ": "fresh tomatoes",
		"Jalapeño «Hot»":      "jalapeno hot",
		"Salt & Pepper":       "salt and pepper",
		"Kabel 3×2.5":         "kabel 3x2.5",
	}
	for in, want := range cases {
		if got := NormalizeKey(in); got != want {
			t.Fatalf("NormalizeKey(%q) = %q want %q", in, got, want)
		}
	}
}

func TestRatio(t *testing.T) {
	if got := Ratio("fresh tomatoes", "fresh tomatoes"); got != 1 {
		t.Fatalf("identical ratio = %v", got)
	}
	if got := Ratio("", ""); got != 1 {
		t.Fatalf("empty ratio = %v", got)
	}
	if got := Ratio("kg", ""); got != 0 {
		t.Fatalf("one-sided ratio = %v", got)
	}
	// one substitution across 8 chars: (8-2)/8
	if got := Ratio("abcd", "abce"); math.Abs(got-0.75) > 1e-9 {
		t.Fatalf("ratio = %v", got)
	}
	if got := Ratio("chicken", "fresh tomatoes"); got > 0.5 {
		t.Fatalf("unrelated ratio too high: %v", got)
	}
}

func TestPartialRatio(t *testing.T) {
	if got := PartialRatio("ayam", "ayam kampung"); got != 1 {
		t.Fatalf("substring partial ratio = %v", got)
	}
	if got := PartialRatio("kampung", "ayam"); got >= 0.7 {
		t.Fatalf("partial ratio too high: %v", got)
	}
	if got := PartialRatio("", "ayam"); got != 0 {
		t.Fatalf("empty partial ratio = %v", got)
	}
}

func TestDiceCoefficient(t *testing.T) {
	if got := DiceCoefficient("beras", "beras"); got != 1 {
		t.Fatalf("got %v", got)
	}
	if got := DiceCoefficient("night", "nacht"); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("got %v want 0.25", got)
	}
}

func TestDecodeStrict(t *testing.T) {
	var out struct {
		MinPrice float64 `json:"min_price"`
	}
	if err := DecodeStrict(map[string]any{"min_price": 5}, &out); err != nil {
		t.Fatal(err)
	}
	if out.MinPrice != 5 {
		t.Fatalf("min_price = %v", out.MinPrice)
	}
	if err := DecodeStrict(map[string]any{"min_prise": 5}, &out); err == nil {
		t.Fatal("expected unknown key error")
	}
}
