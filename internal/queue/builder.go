package queue

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Coverage options offered to the learner, in percent.
var CoverageOptions = []int{30, 50, 80, 100}

// DefaultCoverage includes every candidate.
const DefaultCoverage = 100

// Builder produces shuffled session queues.
type Builder struct {
	items ItemSource
	stats StatsSource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a Builder. A nil rng is replaced by NewRand().
func NewBuilder(items ItemSource, stats StatsSource, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = NewRand()
	}
	return &Builder{items: items, stats: stats, rng: rng}
}

// TakeCount returns how many of n candidates a coverage percentage keeps:
// n*coverage/100 rounded half away from zero. It may be zero.
func TakeCount(n, coverage int) int {
	switch {
	case n <= 0 || coverage <= 0:
		return 0
	case coverage >= 100:
		return n
	}
	return (n*coverage + 50) / 100
}

// Build returns the item ids of a new queue for scope. Below 100% coverage
// only the highest-priority items are kept. The result is shuffled, holds
// no duplicates and is empty when there is nothing to practice.
func (b *Builder) Build(ctx context.Context, scope Scope, coverage int) ([]string, error) {
	items, err := loadItems(ctx, b.items, scope)
	if err != nil {
		return nil, fmt.Errorf("load candidates: %w", err)
	}
	if len(items) == 0 {
		return []string{}, nil
	}

	candidates, err := annotate(ctx, b.stats, items)
	if err != nil {
		return nil, fmt.Errorf("annotate candidates: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if coverage < 100 {
		shuffle(b.rng, candidates)
		byPriorityDesc(candidates)
		candidates = candidates[:TakeCount(len(candidates), coverage)]
	}
	shuffle(b.rng, candidates)

	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.Item.ID
	}
	return ids, nil
}
