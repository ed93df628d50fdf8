package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/easypractice/internal/locale"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	clock := &testClock{t: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), WithClock(clock.now))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedSet stores an enabled set under key with one item per prompt. Item
// ids are "<key>-<index>" and every answer is the prompt reversed.
func seedSet(t *testing.T, s *Store, key string, source Source, prompts ...string) (*ItemSet, []Item) {
	t.Helper()
	set := &ItemSet{
		Key:     key,
		Name:    locale.Plain(key),
		Enabled: true,
		Version: "1.0.0",
		Source:  source,
	}
	items := make([]Item, len(prompts))
	for i, p := range prompts {
		items[i] = Item{
			ID:       fmt.Sprintf("%s-%d", key, i),
			Position: i,
			Prompt:   p,
			Answer:   reverse(p),
		}
	}
	require.NoError(t, s.Catalog().ReplaceSet(context.Background(), set, items))
	return set, items
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestItemsForKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	set, _ := seedSet(t, s, "addition", SourceDefault, "1+1", "2+2", "3+3")
	seedSet(t, s, "subtraction", SourceDefault, "3-1")

	items, err := s.Catalog().ItemsForKey(ctx, "addition")
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, it := range items {
		assert.Equal(t, i, it.Position)
		assert.Equal(t, set.ID, it.ItemSetID)
	}

	require.NoError(t, s.Catalog().SetEnabled(ctx, set.ID, false))
	items, err = s.Catalog().ItemsForKey(ctx, "addition")
	require.NoError(t, err)
	assert.Empty(t, items, "disabled sets contribute no items")

	items, err = s.Catalog().ItemsForSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3, "lookup by set id ignores the flag")

	items, err = s.Catalog().ItemsForKey(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemSetsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	set := &ItemSet{
		Key:         "times",
		Name:        locale.Localized(map[string]string{"en": "Times tables", "zh": "乘法表"}),
		Description: locale.Plain("1 to 10"),
		Enabled:     true,
		Version:     "2.1",
		Source:      SourceUser,
		Difficulty:  "easy",
		Metadata:    map[string]any{"grade": "2"},
	}
	require.NoError(t, s.Catalog().ReplaceSet(ctx, set, nil))

	sets, err := s.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	got := sets[0]
	assert.Equal(t, "乘法表", got.Name.Resolve(locale.Chinese))
	assert.Equal(t, "1 to 10", got.Description.String())
	assert.True(t, got.Enabled)
	assert.Equal(t, "2.1", got.Version)
	assert.Equal(t, SourceUser, got.Source)
	assert.Equal(t, "easy", got.Difficulty)
	assert.Equal(t, "2", got.Metadata["grade"])

	_, err = s.Catalog().ItemSet(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Catalog().SetEnabled(ctx, "missing", true), ErrNotFound)
}

func TestRecordAttempt(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, s, "addition", SourceDefault, "1+1")
	id := items[0].ID

	st, err := s.Stats().Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, st, "no statistics before the first attempt")

	results := []Result{ResultFail, ResultPass, ResultPass, ResultPass}
	for _, r := range results {
		st, err = s.Stats().RecordAttempt(ctx, id, r)
		require.NoError(t, err)
	}

	assert.Equal(t, 4, st.TotalAttempts)
	assert.Equal(t, 3, st.PassCount)
	assert.Equal(t, 1, st.FailCount)
	assert.Equal(t, ResultPass, st.LastResult)
	assert.InDelta(t, 0.25, st.FailureRate, 1e-9)
	assert.InDelta(t, 5.0, st.Priority, 1e-9)
	assert.False(t, st.LastAttemptedAt.IsZero())

	stored, err := s.Stats().Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, st.TotalAttempts, stored.TotalAttempts)
	assert.InDelta(t, st.Priority, stored.Priority, 1e-9)

	history, err := s.Stats().History(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, ResultFail, history[3].Result, "oldest attempt last")
	assert.True(t, history[0].AttemptedAt.After(history[3].AttemptedAt))
}

func TestRecordAttempt_Errors(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Stats().RecordAttempt(ctx, "ghost", ResultPass)
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "got %v", err)
	assert.Equal(t, "ghost", nf.ID)

	_, items := seedSet(t, s, "addition", SourceDefault, "1+1")
	_, err = s.Stats().RecordAttempt(ctx, items[0].ID, Result("maybe"))
	assert.Error(t, err)

	history, err := s.Stats().History(ctx, items[0].ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history, "rejected attempts leave no trace")
}

func TestRecordAttempt_Concurrent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, s, "addition", SourceDefault, "1+1")

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := ResultPass
			if i%2 == 0 {
				r = ResultFail
			}
			if _, err := s.Stats().RecordAttempt(ctx, items[0].ID, r); err != nil {
				t.Errorf("record attempt: %v", err)
			}
		}(i)
	}
	wg.Wait()

	st, err := s.Stats().Get(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, n, st.TotalAttempts)
	assert.Equal(t, st.TotalAttempts, st.PassCount+st.FailCount)
	assert.InDelta(t, 0.5, st.FailureRate, 1e-9)
}

func TestResetAll_Idempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, s, "addition", SourceDefault, "1+1", "2+2")
	for _, it := range items {
		_, err := s.Stats().RecordAttempt(ctx, it.ID, ResultFail)
		require.NoError(t, err)
	}

	for range 2 {
		require.NoError(t, s.Stats().ResetAll(ctx))
		all, err := s.Stats().ForItems(ctx, []string{items[0].ID, items[1].ID})
		require.NoError(t, err)
		assert.Empty(t, all)
		history, err := s.Stats().History(ctx, items[0].ID, 0)
		require.NoError(t, err)
		assert.Empty(t, history)
	}
}

func TestResetForKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, add := seedSet(t, s, "addition", SourceDefault, "1+1")
	_, sub := seedSet(t, s, "subtraction", SourceDefault, "2-1")
	for _, id := range []string{add[0].ID, sub[0].ID} {
		_, err := s.Stats().RecordAttempt(ctx, id, ResultFail)
		require.NoError(t, err)
	}

	require.NoError(t, s.Stats().ResetForKey(ctx, "addition"))

	st, err := s.Stats().Get(ctx, add[0].ID)
	require.NoError(t, err)
	assert.Nil(t, st)
	st, err = s.Stats().Get(ctx, sub[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, st)
}

func TestReplaceSet_PreservesSurvivingStatistics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, s, "addition", SourceDefault, "1+1", "2+2")
	for _, it := range items {
		_, err := s.Stats().RecordAttempt(ctx, it.ID, ResultFail)
		require.NoError(t, err)
	}

	next := &ItemSet{Key: "addition", Name: locale.Plain("addition"), Enabled: true, Version: "1.1.0", Source: SourceDefault}
	nextItems := []Item{
		{ID: items[0].ID, Prompt: "1+1", Answer: "2"},
		{ID: "addition-new", Position: 1, Prompt: "5+5", Answer: "10"},
	}
	require.NoError(t, s.Catalog().ReplaceSet(ctx, next, nextItems))

	sets, err := s.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "1.1.0", sets[0].Version)

	kept, err := s.Stats().Get(ctx, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, 1, kept.FailCount)

	dropped, err := s.Stats().Get(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Nil(t, dropped)

	_, err = s.Catalog().Item(ctx, items[1].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSet_Cascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	set, items := seedSet(t, s, "addition", SourceUser, "1+1")
	_, err := s.Stats().RecordAttempt(ctx, items[0].ID, ResultFail)
	require.NoError(t, err)

	require.NoError(t, s.Catalog().DeleteSet(ctx, set.ID))

	_, err = s.Catalog().Item(ctx, items[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
	st, err := s.Stats().Get(ctx, items[0].ID)
	require.NoError(t, err)
	assert.Nil(t, st)

	assert.ErrorIs(t, s.Catalog().DeleteSet(ctx, set.ID), ErrNotFound)
}

func TestPruneKeysNotIn(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedSet(t, s, "addition", SourceDefault, "1+1")
	_, stale := seedSet(t, s, "legacy", SourceDefault, "old")
	seedSet(t, s, "mine", SourceUser, "custom")
	_, err := s.Stats().RecordAttempt(ctx, stale[0].ID, ResultFail)
	require.NoError(t, err)

	pruned, err := s.Catalog().PruneKeysNotIn(ctx, []string{"addition"})
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy"}, pruned)

	sets, err := s.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	var keys []string
	for _, set := range sets {
		keys = append(keys, set.Key)
	}
	assert.ElementsMatch(t, []string{"addition", "mine"}, keys)

	st, err := s.Stats().Get(ctx, stale[0].ID)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestLatestVersion(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.Catalog().LatestVersion(ctx, "addition", SourceDefault)
	require.NoError(t, err)
	assert.False(t, ok)

	seedSet(t, s, "addition", SourceDefault, "1+1")
	v, ok, err := s.Catalog().LatestVersion(ctx, "addition", SourceDefault)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.0.0", v)

	_, ok, err = s.Catalog().LatestVersion(ctx, "addition", SourceUser)
	require.NoError(t, err)
	assert.False(t, ok, "versions are tracked per source")
}

func TestReplaceSet_DefaultCannotReplaceUserSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, s, "addition", SourceUser, "1+1")
	_, err := s.Stats().RecordAttempt(ctx, items[0].ID, ResultFail)
	require.NoError(t, err)

	def := &ItemSet{Key: "addition", Name: locale.Plain("addition"), Enabled: true, Version: "2.0.0", Source: SourceDefault}
	err = s.Catalog().ReplaceSet(ctx, def, []Item{{ID: "addition-default", Prompt: "9+9", Answer: "18"}})
	assert.ErrorIs(t, err, ErrOwnedKey)

	sets, err := s.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, SourceUser, sets[0].Source)

	st, err := s.Stats().Get(ctx, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, 1, st.FailCount)
}

func TestReplaceSet_UserTakesOverDefaultKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, s, "addition", SourceDefault, "1+1", "2+2")
	_, err := s.Stats().RecordAttempt(ctx, items[0].ID, ResultPass)
	require.NoError(t, err)

	mine := &ItemSet{Key: "addition", Name: locale.Plain("mine"), Enabled: true, Version: "1.0.0", Source: SourceUser}
	require.NoError(t, s.Catalog().ReplaceSet(ctx, mine, []Item{{ID: items[0].ID, Prompt: "1+1", Answer: "2"}}))

	sets, err := s.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, SourceUser, sets[0].Source)

	st, err := s.Stats().Get(ctx, items[0].ID)
	require.NoError(t, err)
	assert.NotNil(t, st, "shared item keeps its history")

	pruned, err := s.Catalog().PruneKeysNotIn(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, pruned)
}

func TestStruggled(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, add := seedSet(t, s, "addition", SourceDefault, "1+1", "2+2", "3+3")
	_, sub := seedSet(t, s, "subtraction", SourceDefault, "2-1")

	record := func(id string, results ...Result) {
		for _, r := range results {
			_, err := s.Stats().RecordAttempt(ctx, id, r)
			require.NoError(t, err)
		}
	}
	record(add[0].ID, ResultFail, ResultFail)
	record(add[1].ID, ResultFail, ResultPass)
	record(add[2].ID, ResultPass)
	record(sub[0].ID, ResultFail, ResultPass, ResultPass)

	all, err := s.Stats().Struggled(ctx, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, add[0].ID, all[0].Item.ID)
	assert.Equal(t, add[1].ID, all[1].Item.ID)
	assert.Equal(t, sub[0].ID, all[2].Item.ID)
	assert.Equal(t, "subtraction", all[2].ItemSetKey)

	limited, err := s.Stats().Struggled(ctx, 1, "addition")
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, add[0].ID, limited[0].Item.ID)
}

func TestSessions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.Sessions()

	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i, key := range []string{"addition", "subtraction", "addition"} {
		rec := &SessionRecord{
			ItemSetKey: key,
			StartedAt:  start,
			EndedAt:    start.Add(90 * time.Second),
			Duration:   90 * time.Second,
			PassCount:  i,
			FailCount:  1,
			TotalItems: i + 1,
			Accuracy:   50,
		}
		require.NoError(t, repo.Save(ctx, rec))
		require.NotEmpty(t, rec.ID)
	}

	all, err := repo.History(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].PassCount, "newest first")
	assert.Equal(t, 90*time.Second, all[0].Duration)

	add, err := repo.History(ctx, "addition", 1)
	require.NoError(t, err)
	require.Len(t, add, 1)
	assert.Equal(t, 3, add[0].TotalItems)

	got, err := repo.Get(ctx, add[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "addition", got.ItemSetKey)

	require.NoError(t, repo.Clear(ctx))
	all, err = repo.History(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = repo.Get(ctx, add[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExportRestore(t *testing.T) {
	src := openTestStore(t)
	ctx := context.Background()
	_, items := seedSet(t, src, "addition", SourceDefault, "1+1", "2+2")
	_, err := src.Stats().RecordAttempt(ctx, items[0].ID, ResultFail)
	require.NoError(t, err)
	require.NoError(t, src.Sessions().Save(ctx, &SessionRecord{
		ItemSetKey: "addition", StartedAt: time.Now(), EndedAt: time.Now(),
		PassCount: 0, FailCount: 1, TotalItems: 1, Accuracy: 0,
	}))

	backup, err := src.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, backup.Version)
	assert.Len(t, backup.ItemSets, 1)
	assert.Len(t, backup.Items, 2)
	assert.Len(t, backup.Attempts, 1)
	assert.Len(t, backup.Statistics, 1)
	assert.Len(t, backup.Sessions, 1)

	dst, err := Open("file:TestExportRestore_dst?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { dst.Close() })
	seedSet(t, dst, "junk", SourceUser, "x")

	require.NoError(t, dst.Restore(ctx, backup))

	sets, err := dst.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "addition", sets[0].Key)

	st, err := dst.Stats().Get(ctx, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.InDelta(t, 100.0, st.Priority, 1e-9)

	history, err := dst.Sessions().History(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
