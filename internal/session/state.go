package session

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/store"
)

// ErrNotActive is returned when an answer is submitted outside an active
// session.
var ErrNotActive = errors.New("session: no active session")

// Phase is the lifecycle state of a Controller.
type Phase int

const (
	PhaseIdle     Phase = iota // No session, or the last start found nothing to practice
	PhaseActive                // Serving items from the queue
	PhaseComplete              // Queue exhausted or ended early, record saved
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// QueueBuilder produces the item ids of a new session.
type QueueBuilder interface {
	Build(ctx context.Context, scope queue.Scope, coverage int) ([]string, error)
}

// ItemLookup resolves queued ids to items.
type ItemLookup interface {
	Item(ctx context.Context, id string) (*store.Item, error)
}

// AttemptRecorder persists answers.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, itemID string, result store.Result) (*store.Statistics, error)
}

// RecordSaver persists finished sessions.
type RecordSaver interface {
	Save(ctx context.Context, rec *store.SessionRecord) error
}

// Progress is a snapshot of an active session.
type Progress struct {
	Position  int // zero-based index of the current item
	Total     int
	Completed int
	Pass      int
	Fail      int
}

// Remaining returns how many items are left, including the current one.
func (p Progress) Remaining() int {
	return p.Total - p.Completed
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}
