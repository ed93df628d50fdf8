// Package session runs queue-driven practice sessions and the free
// practice mode.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/easypractice/internal/queue"
	"github.com/abhisek/easypractice/internal/store"
)

// Controller drives one practice session at a time. It is not safe for
// concurrent use.
type Controller struct {
	builder  QueueBuilder
	items    ItemLookup
	attempts AttemptRecorder
	records  RecordSaver
	now      func() time.Time

	phase     Phase
	key       string
	queue     []string
	pos       int
	pass      int
	fail      int
	startedAt time.Time
	current   *store.Item
	summary   *Summary
}

// NewController creates an idle Controller.
func NewController(builder QueueBuilder, items ItemLookup, attempts AttemptRecorder, records RecordSaver, opts ...Option) *Controller {
	c := &Controller{
		builder:  builder,
		items:    items,
		attempts: attempts,
		records:  records,
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start builds a queue for key and begins a session. It reports false and
// leaves the controller idle when there is nothing to practice. Starting
// while active abandons the running session without saving it.
func (c *Controller) Start(ctx context.Context, key string, coverage int) (bool, error) {
	ids, err := c.builder.Build(ctx, queue.ForKey(key), coverage)
	if err != nil {
		return false, fmt.Errorf("build queue: %w", err)
	}

	c.reset()
	if len(ids) == 0 {
		return false, nil
	}

	c.key = key
	c.queue = ids
	c.startedAt = c.now()
	c.phase = PhaseActive

	if err := c.load(ctx); err != nil {
		c.reset()
		return false, err
	}
	if c.phase != PhaseActive {
		// Every queued item vanished before it could be shown.
		c.reset()
		return false, nil
	}
	return true, nil
}

// Submit records result for the current item and advances. The session
// completes and is saved after the last item.
func (c *Controller) Submit(ctx context.Context, result store.Result) error {
	if c.phase != PhaseActive || c.current == nil {
		return ErrNotActive
	}
	if !result.Valid() {
		return fmt.Errorf("invalid result %q", result)
	}

	_, err := c.attempts.RecordAttempt(ctx, c.current.ID, result)
	switch {
	case errors.Is(err, store.ErrNotFound):
		// Removed by an import since it was queued; count the answer anyway.
	case err != nil:
		return fmt.Errorf("record attempt: %w", err)
	}

	if result == store.ResultPass {
		c.pass++
	} else {
		c.fail++
	}
	c.pos++

	if err := c.load(ctx); err != nil {
		return err
	}
	if c.phase == PhaseComplete {
		return c.finish(ctx, false)
	}
	return nil
}

// EndEarly stops the active session and saves what was completed. With
// nothing completed the controller returns to idle, saves nothing and
// returns a nil summary.
func (c *Controller) EndEarly(ctx context.Context) (*Summary, error) {
	if c.phase != PhaseActive {
		return nil, ErrNotActive
	}
	if c.pass+c.fail == 0 {
		c.reset()
		return nil, nil
	}
	c.phase = PhaseComplete
	c.current = nil
	if err := c.finish(ctx, true); err != nil {
		return nil, err
	}
	return c.summary, nil
}

// Phase returns the lifecycle state.
func (c *Controller) Phase() Phase { return c.phase }

// Key returns the set key of the current or last session.
func (c *Controller) Key() string { return c.key }

// Current returns the item awaiting an answer, or nil outside a session.
func (c *Controller) Current() *store.Item {
	if c.phase != PhaseActive {
		return nil
	}
	return c.current
}

// Progress reports the position in the queue and the counts so far.
func (c *Controller) Progress() Progress {
	return Progress{
		Position:  c.pos,
		Total:     len(c.queue),
		Completed: c.pass + c.fail,
		Pass:      c.pass,
		Fail:      c.fail,
	}
}

// Summary returns the result of the last finished session, or nil.
func (c *Controller) Summary() *Summary { return c.summary }

// load resolves the item at pos, dropping queued ids that no longer
// exist, and completes the session when the queue runs out.
func (c *Controller) load(ctx context.Context) error {
	for c.pos < len(c.queue) {
		item, err := c.items.Item(ctx, c.queue[c.pos])
		if errors.Is(err, store.ErrNotFound) {
			c.queue = append(c.queue[:c.pos], c.queue[c.pos+1:]...)
			continue
		}
		if err != nil {
			return fmt.Errorf("load item: %w", err)
		}
		c.current = item
		return nil
	}
	c.current = nil
	c.phase = PhaseComplete
	return nil
}

func (c *Controller) finish(ctx context.Context, early bool) error {
	ended := c.now()
	completed := c.pass + c.fail
	sum := &Summary{
		Key:        c.key,
		Completed:  completed,
		Pass:       c.pass,
		Fail:       c.fail,
		Accuracy:   Accuracy(c.pass, completed),
		Duration:   ended.Sub(c.startedAt),
		EndedEarly: early,
	}
	c.summary = sum

	if completed == 0 {
		return nil
	}
	rec := &store.SessionRecord{
		ItemSetKey: c.key,
		StartedAt:  c.startedAt,
		EndedAt:    ended,
		Duration:   sum.Duration,
		PassCount:  c.pass,
		FailCount:  c.fail,
		TotalItems: completed,
		Accuracy:   sum.Accuracy,
	}
	if err := c.records.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	sum.Record = rec
	return nil
}

func (c *Controller) reset() {
	c.phase = PhaseIdle
	c.queue = nil
	c.pos = 0
	c.pass = 0
	c.fail = 0
	c.startedAt = time.Time{}
	c.current = nil
	c.summary = nil
}
