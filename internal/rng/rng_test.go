package rng

import "testing"

func TestIntRangeInclusive(t *testing.T) {
	src := New(42)
	for i := 0; i < 1000; i++ {
		v := src.IntRange(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("IntRange(3, 7) = %d, out of range", v)
		}
	}
}

func TestIntRangeDegenerate(t *testing.T) {
	src := New(1)
	if v := src.IntRange(5, 5); v != 5 {
		t.Fatalf("IntRange(5, 5) = %d, want 5", v)
	}
	if v := src.IntRange(5, 3); v != 5 {
		t.Fatalf("IntRange(5, 3) = %d, want 5", v)
	}
}

func TestPickBounds(t *testing.T) {
	src := New(7)
	for i := 0; i < 1000; i++ {
		if v := src.Pick(4); v < 0 || v > 3 {
			t.Fatalf("Pick(4) = %d, out of range", v)
		}
	}
	if v := src.Pick(0); v != 0 {
		t.Fatalf("Pick(0) = %d, want 0", v)
	}
}

func TestSeededSourceIsReproducible(t *testing.T) {
	a := New(99)
	b := New(99)
	for i := 0; i < 100; i++ {
		if a.Float64() != b.Float64() {
			t.Fatalf("same seed diverged at draw %d", i)
		}
	}
}

func TestWeightedChoiceWalksCumulativeWeights(t *testing.T) {
	keys := []string{"combat", "event", "rest"}
	weights := map[string]float64{"combat": 0.5, "event": 0.3, "rest": 0.2}

	cases := []struct {
		draw float64
		want string
	}{
		{0.0, "combat"},
		{0.49, "combat"},
		{0.5, "event"},
		{0.79, "event"},
		{0.8, "rest"},
		{0.99, "rest"},
	}
	for _, tc := range cases {
		got := WeightedChoice(NewScripted(tc.draw), keys, weights)
		if got != tc.want {
			t.Errorf("draw %.2f: got %q, want %q", tc.draw, got, tc.want)
		}
	}
}

func TestWeightedChoiceZeroTotalFallsBack(t *testing.T) {
	keys := []string{"a", "b"}
	weights := map[string]float64{"a": 0, "b": 0}
	if got := WeightedChoice(NewScripted(0.7), keys, weights); got != "a" {
		t.Fatalf("zero-weight fallback = %q, want first key", got)
	}
	if got := WeightedChoice(NewScripted(0.5), nil, nil); got != "" {
		t.Fatalf("empty keys = %q, want empty string", got)
	}
}

func TestChoice(t *testing.T) {
	items := []string{"x", "y", "z"}
	if got := Choice(NewScripted(0.0), items); got != "x" {
		t.Fatalf("Choice low draw = %q, want x", got)
	}
	if got := Choice(NewScripted(0.99), items); got != "z" {
		t.Fatalf("Choice high draw = %q, want z", got)
	}
	if got := Choice(NewScripted(0.5), []string(nil)); got != "" {
		t.Fatalf("Choice on empty slice = %q, want zero value", got)
	}
}

func TestScriptedRepeatsLastValue(t *testing.T) {
	src := NewScripted(0.1, 0.9)
	if v := src.Float64(); v != 0.1 {
		t.Fatalf("first draw = %v, want 0.1", v)
	}
	if v := src.Float64(); v != 0.9 {
		t.Fatalf("second draw = %v, want 0.9", v)
	}
	for i := 0; i < 5; i++ {
		if v := src.Float64(); v != 0.9 {
			t.Fatalf("exhausted draw = %v, want 0.9", v)
		}
	}
}

func TestScriptedIntegerScaling(t *testing.T) {
	if v := NewScripted(0.0).IntRange(5, 15); v != 5 {
		t.Fatalf("IntRange low draw = %d, want 5", v)
	}
	if v := NewScripted(0.999).IntRange(5, 15); v != 15 {
		t.Fatalf("IntRange high draw = %d, want 15", v)
	}
	if v := NewScripted(0.999).Pick(3); v != 2 {
		t.Fatalf("Pick high draw = %d, want 2", v)
	}
}
