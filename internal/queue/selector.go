package queue

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/abhisek/easypractice/internal/store"
)

// DefaultPoolSize is how many top-priority items the selector picks from.
const DefaultPoolSize = 10

// Selector serves single items outside a session queue.
type Selector struct {
	items ItemSource
	stats StatsSource

	// PoolSize bounds the random pick to the highest-priority items.
	PoolSize int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector with DefaultPoolSize. A nil rng is
// replaced by NewRand().
func NewSelector(items ItemSource, stats StatsSource, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = NewRand()
	}
	return &Selector{items: items, stats: stats, rng: rng, PoolSize: DefaultPoolSize}
}

// Next picks an item of key, avoiding ids in exclude. If every candidate is
// excluded, exclusions are dropped once rather than returning nothing. It
// returns nil when key has no enabled items.
func (s *Selector) Next(ctx context.Context, key string, exclude []string) (*store.Item, error) {
	items, err := s.items.ItemsForKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	candidates, err := annotate(ctx, s.stats, items)
	if err != nil {
		return nil, fmt.Errorf("annotate candidates: %w", err)
	}

	var remaining []Candidate
	for attempt := 0; attempt < 2; attempt++ {
		remaining = remaining[:0]
		for _, c := range candidates {
			if !slices.Contains(exclude, c.Item.ID) {
				remaining = append(remaining, c)
			}
		}
		if len(remaining) > 0 {
			break
		}
		exclude = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	shuffle(s.rng, remaining)
	byPriorityDesc(remaining)

	pool := s.PoolSize
	if pool <= 0 || pool > len(remaining) {
		pool = len(remaining)
	}
	picked := remaining[s.rng.IntN(pool)].Item
	return &picked, nil
}
