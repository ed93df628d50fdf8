package store

import (
	"context"
	"time"

	"github.com/abhisek/easypractice/internal/locale"
	"github.com/abhisek/easypractice/internal/priority"
)

// Source records where an item set came from.
type Source string

const (
	// SourceDefault sets are owned by the default catalog manifest and may
	// be pruned by a sync.
	SourceDefault Source = "default"

	// SourceUser sets were imported by the user and are never pruned.
	SourceUser Source = "user"
)

// Result is the outcome of one attempt.
type Result string

const (
	ResultPass Result = "pass"
	ResultFail Result = "fail"
)

// Valid reports whether r is pass or fail.
func (r Result) Valid() bool {
	return r == ResultPass || r == ResultFail
}

// ItemSet is a named, versioned group of items, enabled or disabled as a
// whole. Sets sharing a Key are versions of the same logical set.
type ItemSet struct {
	ID          string         `json:"id"`
	Key         string         `json:"itemSetKey"`
	Name        locale.Text    `json:"name"`
	Description locale.Text    `json:"description,omitzero"`
	Enabled     bool           `json:"enabled"`
	Version     string         `json:"version,omitempty"`
	Source      Source         `json:"source"`
	Difficulty  string         `json:"difficulty,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Item is a single prompt/answer pair owned by one item set.
type Item struct {
	ID          string    `json:"id"`
	ItemSetID   string    `json:"itemSetId"`
	Position    int       `json:"position"`
	Prompt      string    `json:"prompt"`
	Answer      string    `json:"answer"`
	PromptAudio string    `json:"promptAudio,omitempty"`
	AnswerAudio string    `json:"answerAudio,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Attempt is one recorded outcome for an item.
type Attempt struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"itemId"`
	Result      Result    `json:"result"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// Statistics aggregates the attempts of one item.
// PassCount + FailCount == TotalAttempts, and FailureRate and Priority are
// always derived from the counters.
type Statistics struct {
	ItemID          string    `json:"itemId"`
	TotalAttempts   int       `json:"totalAttempts"`
	PassCount       int       `json:"passCount"`
	FailCount       int       `json:"failCount"`
	LastResult      Result    `json:"lastResult,omitempty"`
	LastAttemptedAt time.Time `json:"lastAttemptedAt,omitzero"` // zero when never attempted
	FailureRate     float64   `json:"failureRate"`
	Priority        float64   `json:"priority"`
}

// Counts returns the counters the priority score is computed from.
func (s *Statistics) Counts() priority.Counts {
	return priority.Counts{
		Attempts: s.TotalAttempts,
		Passes:   s.PassCount,
		Fails:    s.FailCount,
	}
}

// apply folds one attempt into the counters and recomputes derived fields.
func (s *Statistics) apply(r Result, at time.Time) {
	s.TotalAttempts++
	if r == ResultPass {
		s.PassCount++
	} else {
		s.FailCount++
	}
	s.LastResult = r
	s.LastAttemptedAt = at

	c := s.Counts()
	s.FailureRate = priority.FailureRate(c)
	s.Priority = priority.Score(c)
}

// StruggledItem is an item with at least one failure, with its statistics
// and owning set key.
type StruggledItem struct {
	Item       Item
	ItemSetKey string
	Stats      Statistics
}

// SessionRecord summarizes a completed or early-ended practice session.
type SessionRecord struct {
	ID         string        `json:"id"`
	ItemSetKey string        `json:"itemSetKey"`
	StartedAt  time.Time     `json:"startedAt"`
	EndedAt    time.Time     `json:"endedAt"`
	Duration   time.Duration `json:"duration"`
	PassCount  int           `json:"passCount"`
	FailCount  int           `json:"failCount"`
	TotalItems int           `json:"totalItems"`
	Accuracy   int           `json:"accuracy"` // 0-100
	CreatedAt  time.Time     `json:"createdAt"`
}

// CatalogRepo manages item sets and their items.
type CatalogRepo interface {
	// ItemSets returns every set, enabled or not, in no particular order.
	ItemSets(ctx context.Context) ([]ItemSet, error)

	// ItemSet returns one set by id.
	ItemSet(ctx context.Context, id string) (*ItemSet, error)

	// ItemsForKey returns the items of enabled sets with the given key.
	ItemsForKey(ctx context.Context, key string) ([]Item, error)

	// ItemsForSet returns the items of one set regardless of its flag.
	ItemsForSet(ctx context.Context, setID string) ([]Item, error)

	// Item returns one item by id.
	Item(ctx context.Context, id string) (*Item, error)

	// ReplaceSet atomically replaces the sets stored under set.Key and
	// set.Source with set and items. Statistics of item ids that survive
	// are kept. A user set also takes over default sets of the key; a
	// default set fails with *OwnedKeyError when a user set owns the key.
	ReplaceSet(ctx context.Context, set *ItemSet, items []Item) error

	// SetEnabled toggles a set.
	SetEnabled(ctx context.Context, setID string, enabled bool) error

	// DeleteSet deletes a set with its items, attempts and statistics.
	DeleteSet(ctx context.Context, setID string) error

	// PruneKeysNotIn deletes default-source sets whose key is not listed
	// and returns the pruned keys.
	PruneKeysNotIn(ctx context.Context, keys []string) ([]string, error)

	// LatestVersion returns the version stored for key and source, if any.
	LatestVersion(ctx context.Context, key string, source Source) (string, bool, error)
}

// StatsRepo records attempts and serves per-item statistics.
type StatsRepo interface {
	// RecordAttempt appends an attempt and updates the item's statistics
	// in one transaction.
	RecordAttempt(ctx context.Context, itemID string, result Result) (*Statistics, error)

	// Get returns the statistics of an item, or nil if it has none.
	Get(ctx context.Context, itemID string) (*Statistics, error)

	// ForItems returns statistics keyed by item id. Items without
	// attempts are absent from the map.
	ForItems(ctx context.Context, itemIDs []string) (map[string]*Statistics, error)

	// ResetAll deletes every attempt and statistics row.
	ResetAll(ctx context.Context) error

	// ResetForKey deletes attempts and statistics of items in sets with
	// the given key.
	ResetForKey(ctx context.Context, key string) error

	// Struggled returns items with a failure rate above zero, highest
	// priority first. An empty key matches every set.
	Struggled(ctx context.Context, limit int, key string) ([]StruggledItem, error)

	// History returns the attempts of an item, newest first.
	History(ctx context.Context, itemID string, limit int) ([]Attempt, error)
}

// SessionRepo stores session records.
type SessionRepo interface {
	// Save appends a session record. Missing ids and timestamps are filled.
	Save(ctx context.Context, rec *SessionRecord) error

	// History returns records newest first. An empty key matches every set.
	History(ctx context.Context, key string, limit int) ([]SessionRecord, error)

	// Get returns one record by id.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// Clear deletes every record.
	Clear(ctx context.Context) error
}
