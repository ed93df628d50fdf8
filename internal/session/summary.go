package session

import (
	"math"
	"time"

	"github.com/abhisek/easypractice/internal/store"
)

// Summary holds the data displayed once a session finishes.
type Summary struct {
	Key        string
	Completed  int
	Pass       int
	Fail       int
	Accuracy   int // 0-100
	Duration   time.Duration
	EndedEarly bool

	// Record is the persisted history row, nil if nothing was saved.
	Record *store.SessionRecord
}

// Accuracy returns pass/completed as a whole percentage, rounded half away
// from zero. It is 0 when nothing was completed.
func Accuracy(pass, completed int) int {
	if completed <= 0 {
		return 0
	}
	return int(math.Round(float64(pass) / float64(completed) * 100))
}
