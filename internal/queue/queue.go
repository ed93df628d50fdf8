// Package queue builds practice queues and picks the next item to show,
// biased toward items with a high priority score.
package queue

import (
	"context"
	"math/rand/v2"
	"slices"

	"github.com/abhisek/easypractice/internal/priority"
	"github.com/abhisek/easypractice/internal/store"
)

// ItemSource resolves candidate items.
type ItemSource interface {
	ItemsForKey(ctx context.Context, key string) ([]store.Item, error)
	ItemsForSet(ctx context.Context, setID string) ([]store.Item, error)
}

// StatsSource provides per-item statistics. Items without attempts are
// absent from the returned map.
type StatsSource interface {
	ForItems(ctx context.Context, itemIDs []string) (map[string]*store.Statistics, error)
}

// Scope selects candidates by set key (enabled sets only) or by a single
// set id.
type Scope struct {
	Key   string
	SetID string
}

// ForKey scopes to the enabled sets with key.
func ForKey(key string) Scope { return Scope{Key: key} }

// ForSet scopes to one set regardless of its enabled flag.
func ForSet(id string) Scope { return Scope{SetID: id} }

// Candidate is an item annotated with its current priority.
type Candidate struct {
	Item     store.Item
	Priority float64
}

// NewRand returns a randomly seeded source for production use.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func loadItems(ctx context.Context, src ItemSource, scope Scope) ([]store.Item, error) {
	if scope.SetID != "" {
		return src.ItemsForSet(ctx, scope.SetID)
	}
	return src.ItemsForKey(ctx, scope.Key)
}

// annotate drops duplicate ids and attaches priorities. Items without
// statistics get the default score.
func annotate(ctx context.Context, stats StatsSource, items []store.Item) ([]Candidate, error) {
	seen := make(map[string]bool, len(items))
	ids := make([]string, 0, len(items))
	unique := items[:0:0]
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		ids = append(ids, it.ID)
		unique = append(unique, it)
	}

	byID, err := stats.ForItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, len(unique))
	for i, it := range unique {
		score := priority.DefaultScore
		if st, ok := byID[it.ID]; ok && st != nil {
			score = priority.Score(st.Counts())
		}
		out[i] = Candidate{Item: it, Priority: score}
	}
	return out, nil
}

// byPriorityDesc sorts candidates highest first. Callers shuffle before
// sorting so that equal priorities come out in random order.
func byPriorityDesc(c []Candidate) {
	slices.SortStableFunc(c, func(a, b Candidate) int {
		switch {
		case a.Priority > b.Priority:
			return -1
		case a.Priority < b.Priority:
			return 1
		default:
			return 0
		}
	})
}

func shuffle[T any](rng *rand.Rand, s []T) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
