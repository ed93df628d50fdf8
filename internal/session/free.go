package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/store"
)

// Picker serves single items outside a queue.
type Picker interface {
	Next(ctx context.Context, key string, exclude []string) (*store.Item, error)
}

// FreePractice serves items one at a time with no fixed end, keeping the
// most recent ones out of rotation. Nothing is saved to session history.
type FreePractice struct {
	picker   Picker
	attempts AttemptRecorder
	recent   *queue.RecentList

	key     string
	current *store.Item
	pass    int
	fail    int
}

// NewFreePractice creates a free practice run over the enabled sets of key.
func NewFreePractice(picker Picker, attempts AttemptRecorder, key string, recentLimit int) *FreePractice {
	return &FreePractice{
		picker:   picker,
		attempts: attempts,
		recent:   queue.NewRecentList(recentLimit),
		key:      key,
	}
}

// Next picks the next item and makes it current. It returns nil when the
// key has no enabled items.
func (f *FreePractice) Next(ctx context.Context) (*store.Item, error) {
	item, err := f.picker.Next(ctx, f.key, f.recent.IDs())
	if err != nil {
		return nil, err
	}
	f.current = item
	if item != nil {
		f.recent.Add(item.ID)
	}
	return item, nil
}

// Current returns the item awaiting an answer.
func (f *FreePractice) Current() *store.Item { return f.current }

// Key returns the set key being practiced.
func (f *FreePractice) Key() string { return f.key }

// Submit records result for the current item. The caller moves on with
// Next.
func (f *FreePractice) Submit(ctx context.Context, result store.Result) (*store.Statistics, error) {
	if f.current == nil {
		return nil, ErrNotActive
	}
	if !result.Valid() {
		return nil, fmt.Errorf("invalid result %q", result)
	}

	st, err := f.attempts.RecordAttempt(ctx, f.current.ID, result)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	if result == store.ResultPass {
		f.pass++
	} else {
		f.fail++
	}
	f.current = nil
	return st, nil
}

// Counts returns the answers given so far.
func (f *FreePractice) Counts() (pass, fail int) {
	return f.pass, f.fail
}
