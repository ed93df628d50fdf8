// Package priority scores items for selection from their attempt history.
package priority

const (
	// DefaultScore is the score of an item that has never been attempted.
	DefaultScore = 50.0

	// MasteryThreshold is the number of passes after which an item is
	// dampened.
	MasteryThreshold = 3

	// MasteryDampening is subtracted from the base score of mastered items.
	MasteryDampening = 20.0

	MinScore = 0.0
	MaxScore = 100.0
)

// Counts is the subset of an item's statistics the score depends on.
type Counts struct {
	Attempts int
	Passes   int
	Fails    int
}

// FailureRate returns Fails/Attempts, or 0 for an item with no attempts.
func FailureRate(c Counts) float64 {
	if c.Attempts <= 0 {
		return 0
	}
	return float64(c.Fails) / float64(c.Attempts)
}

// Score maps counts to a priority in [MinScore, MaxScore]. Higher scores
// surface sooner.
func Score(c Counts) float64 {
	if c.Attempts <= 0 {
		return DefaultScore
	}

	score := FailureRate(c) * 100
	if c.Passes >= MasteryThreshold {
		score -= MasteryDampening
	}
	return clamp(score)
}

func clamp(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
