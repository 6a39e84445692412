package distribution

import (
	"math"
	"slices"
	"testing"

	"eventsim/internal/rng"
)

func meanAndStdDev(values []float64) (float64, float64) {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += math.Pow(v-mean, 2)
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}

func TestBoxMuller_StandardNormal(t *testing.T) {
	r := rng.New("box")
	values := make([]float64, 10000)
	for i := range values {
		values[i] = BoxMuller(r)
	}

	mean, sd := meanAndStdDev(values)
	if math.Abs(mean) > 0.05 {
		t.Errorf("Expected mean close to 0, got %f", mean)
	}
	if math.Abs(sd-1) > 0.05 {
		t.Errorf("Expected std dev close to 1, got %f", sd)
	}
}

func TestOptimizedBoxMuller_Bounded(t *testing.T) {
	r := rng.New("optimized")
	values := make([]float64, 10000)
	for i := range values {
		v := OptimizedBoxMuller(r)
		if math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("OptimizedBoxMuller returned %f", v)
		}
		values[i] = v
	}

	mean, sd := meanAndStdDev(values)
	if mean >= 1 {
		t.Errorf("Expected mean below 1, got %f", mean)
	}
	if sd >= 1 {
		t.Errorf("Expected std dev below 1, got %f", sd)
	}
}

func TestApplySkew(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		skew  float64
		want  float64
	}{
		{"Identity", 1.7, 1, 1.7},
		{"Compress", 4, 0.5, 2},
		{"Expand", 3, 2, 9},
		{"NegativeKeepsSign", -4, 0.5, -2},
		{"Zero", 0, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplySkew(tt.value, tt.skew); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ApplySkew(%v, %v) = %v, want %v", tt.value, tt.skew, got, tt.want)
			}
		})
	}
}

func TestMapToRange(t *testing.T) {
	tests := []struct {
		name            string
		value, mean, sd float64
		want            int
	}{
		{"Mean", 0, 10, 5, 10},
		{"OneSigma", 1, 10, 5, 15},
		{"Rounds", 0.31, 10, 5, 12},
		{"Negative", -2, 0, 3, -6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapToRange(tt.value, tt.mean, tt.sd); got != tt.want {
				t.Errorf("MapToRange() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWeightedRange(t *testing.T) {
	r := rng.New("weighted")

	tests := []struct {
		name     string
		min, max int
		skew     float64
		size     int
		wantLen  int
	}{
		{"Default", 5, 15, 1, 0, 50},
		{"Compressed", 0, 100, 0.5, 200, 200},
		{"Expanded", 0, 100, 2, 200, 200},
		{"Capped", 1, 10, 1, 5000, MaxPoolSize},
		{"Inverted", 15, 5, 1, 20, 20},
		{"Degenerate", 3, 3, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := WeightedRange(r, tt.min, tt.max, tt.skew, tt.size)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(pool) != tt.wantLen {
				t.Errorf("Expected %d values, got %d", tt.wantLen, len(pool))
			}
			lo, hi := min(tt.min, tt.max), max(tt.min, tt.max)
			for _, v := range pool {
				if v < lo || v > hi {
					t.Fatalf("Value %d outside [%d, %d]", v, lo, hi)
				}
			}
		})
	}
}

func TestWeighArray(t *testing.T) {
	r := rng.New("weigh")
	items := []string{"a", "b", "c"}

	weighted := WeighArray(r, items)
	if len(weighted) < len(items) {
		t.Errorf("Expected at least %d items, got %d", len(items), len(weighted))
	}
	for _, item := range items {
		if !slices.Contains(weighted, item) {
			t.Errorf("Expected %q to appear at least once", item)
		}
	}
	if WeighArray[string](r, nil) != nil {
		t.Error("Expected nil for empty input")
	}
}

func TestRange(t *testing.T) {
	if got := Range(1, 5, 1); !slices.Equal(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("Range(1, 5, 1) = %v", got)
	}
	if got := Range(1, 10, 2); !slices.Equal(got, []int{2, 4, 6, 8, 10}) {
		t.Errorf("Range(1, 10, 2) = %v", got)
	}
	if got := Range(1, 3, 0); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Range(1, 3, 0) = %v", got)
	}
}
