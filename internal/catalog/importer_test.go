package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/easypractice/internal/locale"
	"github.com/abhisek/easypractice/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func payload(key, version string, pairs ...string) *Payload {
	sp := SetPayload{Key: key, Name: locale.Plain(key), Version: version}
	for i := 0; i+1 < len(pairs); i += 2 {
		sp.Items = append(sp.Items, ItemPayload{Prompt: pairs[i], Answer: pairs[i+1]})
	}
	return &Payload{Version: version, Sets: []SetPayload{sp}}
}

func TestItemID_Stable(t *testing.T) {
	a := ItemID("addition", "1 + 1", "2")
	assert.Equal(t, a, ItemID("addition", " 1 + 1 ", "2"))
	assert.NotEqual(t, a, ItemID("addition", "1 + 1", "3"))
	assert.NotEqual(t, a, ItemID("other", "1 + 1", "2"))
}

func TestImport_InsertAndSkip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	im := NewImporter(s.Catalog(), nil)

	res, err := im.Import(ctx, payload("addition", "1.0", "1+1", "2", "2+2", "4", "1+1", "2"), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"addition"}, res.Imported)
	assert.True(t, res.OK())

	items, err := s.Catalog().ItemsForKey(ctx, "addition")
	require.NoError(t, err)
	assert.Len(t, items, 2, "duplicate pairs collapse")

	sets, err := s.Catalog().ItemSets(ctx)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, store.SourceUser, sets[0].Source)

	res, err = im.Import(ctx, payload("addition", "1.0", "9+9", "18"), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"addition"}, res.Skipped, "same version is up to date")

	res, err = im.Import(ctx, payload("addition", "0.9", "9+9", "18"), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"addition"}, res.Skipped, "older version is ignored")

	res, err = im.Import(ctx, payload("addition", "0.9", "9+9", "18"), ImportOptions{Force: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"addition"}, res.Imported)
}

func TestImport_NewerVersionKeepsStatistics(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	im := NewImporter(s.Catalog(), nil)

	_, err := im.Import(ctx, payload("addition", "1.0", "1+1", "2", "2+2", "5"), ImportOptions{})
	require.NoError(t, err)

	kept := ItemID("addition", "1+1", "2")
	fixed := ItemID("addition", "2+2", "5")
	for _, id := range []string{kept, fixed} {
		_, err := s.Stats().RecordAttempt(ctx, id, store.ResultFail)
		require.NoError(t, err)
	}

	res, err := im.Import(ctx, payload("addition", "1.1", "1+1", "2", "2+2", "4"), ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"addition"}, res.Imported)

	st, err := s.Stats().Get(ctx, kept)
	require.NoError(t, err)
	require.NotNil(t, st, "unchanged item keeps its history")
	assert.Equal(t, 1, st.FailCount)

	st, err = s.Stats().Get(ctx, fixed)
	require.NoError(t, err)
	assert.Nil(t, st, "removed item loses its history")

	v, ok, err := s.Catalog().LatestVersion(ctx, "addition", store.SourceUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.1", v)
}

// failingRepo fails ReplaceSet for one key.
type failingRepo struct {
	store.CatalogRepo
	failKey string
}

func (r *failingRepo) ReplaceSet(ctx context.Context, set *store.ItemSet, items []store.Item) error {
	if set.Key == r.failKey {
		return &store.StorageError{Op: "replace item set", Err: errors.New("disk full")}
	}
	return r.CatalogRepo.ReplaceSet(ctx, set, items)
}

func TestImport_ContinuesAfterFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	im := NewImporter(&failingRepo{CatalogRepo: s.Catalog(), failKey: "broken"}, nil)

	p := &Payload{Version: "1.0", Sets: []SetPayload{
		{Key: "broken", Name: locale.Plain("Broken"), Items: []ItemPayload{{Prompt: "a", Answer: "b"}}},
		{Key: "fine", Name: locale.Plain("Fine"), Items: []ItemPayload{{Prompt: "c", Answer: "d"}}},
	}}
	res, err := im.Import(ctx, p, ImportOptions{})
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Contains(t, res.Failed, "broken")
	assert.Equal(t, []string{"fine"}, res.Imported)

	items, err := s.Catalog().ItemsForKey(ctx, "broken")
	require.NoError(t, err)
	assert.Empty(t, items)
	items, err = s.Catalog().ItemsForKey(ctx, "fine")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestImportBytes_ParseError(t *testing.T) {
	s := openTestStore(t)
	im := NewImporter(s.Catalog(), nil)

	_, err := im.ImportBytes(context.Background(), []byte(`{"problemSets": 3}`), "bad.json", ImportOptions{})
	var pe *ParseError
	require.True(t, errors.As(err, &pe), "got %v", err)

	sets, err := s.Catalog().ItemSets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sets)
}

func TestSortByName(t *testing.T) {
	sets := []store.ItemSet{
		{Key: "c", Name: locale.Localized(map[string]string{"en": "banana", "zh": "香蕉"})},
		{Key: "a", Name: locale.Plain("Apple")},
		{Key: "b", Name: locale.Plain("apple")},
	}
	SortByName(sets, locale.English)
	assert.Equal(t, "a", sets[0].Key)
	assert.Equal(t, "b", sets[1].Key)
	assert.Equal(t, "c", sets[2].Key)
}

func TestEnabledSets(t *testing.T) {
	sets := []store.ItemSet{
		{Key: "a", Enabled: true},
		{Key: "b", Enabled: false},
		{Key: "a", Enabled: true},
	}
	got := EnabledSets(sets)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Key)
}
