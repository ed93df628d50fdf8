package priority

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		c    Counts
		want float64
	}{
		{"never attempted", Counts{}, 50},
		{"all failed", Counts{Attempts: 3, Fails: 3}, 100},
		{"all passed below threshold", Counts{Attempts: 2, Passes: 2}, 0},
		{"mastered with one fail", Counts{Attempts: 4, Passes: 3, Fails: 1}, 5},
		{"mastered clean clamps to zero", Counts{Attempts: 5, Passes: 5}, 0},
		{"half failed", Counts{Attempts: 2, Passes: 1, Fails: 1}, 50},
		{"mastered mostly failing", Counts{Attempts: 10, Passes: 3, Fails: 7}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.c)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestScore_AlwaysInRange(t *testing.T) {
	for attempts := 0; attempts <= 12; attempts++ {
		for passes := 0; passes <= attempts; passes++ {
			c := Counts{Attempts: attempts, Passes: passes, Fails: attempts - passes}
			got := Score(c)
			if got < MinScore || got > MaxScore {
				t.Fatalf("Score(%+v) = %v, out of range", c, got)
			}
		}
	}
}

func TestFailureRate(t *testing.T) {
	if got := FailureRate(Counts{}); got != 0 {
		t.Errorf("FailureRate(empty) = %v, want 0", got)
	}
	if got := FailureRate(Counts{Attempts: 4, Passes: 1, Fails: 3}); got != 0.75 {
		t.Errorf("FailureRate = %v, want 0.75", got)
	}
}
