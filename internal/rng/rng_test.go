package rng

import (
	"math"
	"testing"
)

func TestNew_SameSeedSameSequence(t *testing.T) {
	a := New("abc")
	b := New("abc")

	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("Expected identical draws at %d, got %d and %d", i, x, y)
		}
	}
	if !a.Seeded() {
		t.Error("Expected seeded generator")
	}
	if a.Seed() != "abc" {
		t.Errorf("Expected seed abc, got %q", a.Seed())
	}
}

func TestNew_DifferentSeeds(t *testing.T) {
	a := New("abc")
	b := New("xyz")

	same := 0
	for i := 0; i < 50; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same == 50 {
		t.Error("Expected different sequences for different seeds")
	}
}

func TestNew_Unseeded(t *testing.T) {
	r := New("")
	if r.Seeded() {
		t.Error("Expected unseeded generator for empty seed")
	}
}

func TestIntRange(t *testing.T) {
	r := New("range")
	tests := []struct {
		name     string
		min, max int
	}{
		{"Normal", 5, 10},
		{"Inverted", 10, 5},
		{"Negative", -3, 3},
		{"Same", 7, 7},
		{"Wide", -(1 << 62), 1 << 62},
		{"WiderThanMaxInt", math.MinInt / 2, math.MaxInt},
		{"FullRange", math.MinInt, math.MaxInt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := tt.min, tt.max
			if lo > hi {
				lo, hi = hi, lo
			}
			for i := 0; i < 500; i++ {
				v := r.IntRange(tt.min, tt.max)
				if v < lo || v > hi {
					t.Fatalf("IntRange(%d, %d) returned %d", tt.min, tt.max, v)
				}
			}
		})
	}
}

func TestBool_Extremes(t *testing.T) {
	r := New("bool")
	for i := 0; i < 200; i++ {
		if r.Bool(0) {
			t.Fatal("Bool(0) returned true")
		}
		if !r.Bool(100) {
			t.Fatal("Bool(100) returned false")
		}
	}
}

func TestNormal_Mean(t *testing.T) {
	r := New("normal")
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += r.Normal(10, 2)
	}
	mean := sum / n
	if mean < 9.9 || mean > 10.1 {
		t.Errorf("Expected mean near 10, got %f", mean)
	}
}

func TestD10(t *testing.T) {
	r := New("d10")
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := r.D10()
		if v < 1 || v > 10 {
			t.Fatalf("D10 returned %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Errorf("Expected all 10 faces, saw %d", len(seen))
	}
}
