package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type catalogRepo struct {
	s *Store
}

var itemSetFields = []string{
	"id", "item_set_key", "name", "description", "enabled",
	"version", "source", "difficulty", "metadata", "created_at",
}

var itemFields = []string{
	"id", "item_set_id", "position", "prompt", "answer",
	"prompt_audio", "answer_audio", "created_at",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItemSet(sc scanner) (*ItemSet, error) {
	var (
		set                   ItemSet
		name                  string
		desc, version, source sql.NullString
		difficulty, metadata  sql.NullString
	)
	err := sc.Scan(&set.ID, &set.Key, &name, &desc, &set.Enabled,
		&version, &source, &difficulty, &metadata, &set.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(name), &set.Name); err != nil {
		return nil, fmt.Errorf("decode name of set %s: %w", set.ID, err)
	}
	if desc.Valid {
		if err := json.Unmarshal([]byte(desc.String), &set.Description); err != nil {
			return nil, fmt.Errorf("decode description of set %s: %w", set.ID, err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &set.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata of set %s: %w", set.ID, err)
		}
	}
	set.Version = version.String
	set.Source = Source(source.String)
	set.Difficulty = difficulty.String
	return &set, nil
}

func scanItem(sc scanner) (*Item, error) {
	var (
		it                       Item
		promptAudio, answerAudio sql.NullString
	)
	err := sc.Scan(&it.ID, &it.ItemSetID, &it.Position, &it.Prompt, &it.Answer,
		&promptAudio, &answerAudio, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.PromptAudio = promptAudio.String
	it.AnswerAudio = answerAudio.String
	return &it, nil
}

func collectItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()
	var out []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *catalogRepo) ItemSets(ctx context.Context) ([]ItemSet, error) {
	q := build().Select(itemSetFields...).
		From(build().Table(tableItemSets)).
		OrderBy("created_at")
	rows, err := queryQ(ctx, r.s.db, q)
	if err != nil {
		return nil, &StorageError{Op: "query item sets", Err: err}
	}
	defer rows.Close()

	var out []ItemSet
	for rows.Next() {
		set, err := scanItemSet(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan item set", Err: err}
		}
		out = append(out, *set)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query item sets", Err: err}
	}
	return out, nil
}

func (r *catalogRepo) ItemSet(ctx context.Context, id string) (*ItemSet, error) {
	q := build().Select(itemSetFields...).
		From(build().Table(tableItemSets)).
		Where(entsql.EQ("id", id))
	set, err := scanItemSet(queryRowQ(ctx, r.s.db, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "item set", ID: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "query item set", Err: err}
	}
	return set, nil
}

// itemsJoinSets selects item columns joined with their owning set.
func itemsJoinSets() (*entsql.Selector, *entsql.SelectTable, *entsql.SelectTable) {
	items := build().Table(tableItems)
	sets := build().Table(tableItemSets)
	q := build().Select(items.Columns(itemFields...)...).
		From(items).
		Join(sets).On(items.C("item_set_id"), sets.C("id"))
	return q, items, sets
}

func (r *catalogRepo) ItemsForKey(ctx context.Context, key string) ([]Item, error) {
	q, items, sets := itemsJoinSets()
	q.Where(entsql.And(
		entsql.EQ(sets.C("item_set_key"), key),
		entsql.EQ(sets.C("enabled"), true),
	)).OrderBy(sets.C("created_at"), items.C("position"))

	rows, err := queryQ(ctx, r.s.db, q)
	if err != nil {
		return nil, &StorageError{Op: "query items for key", Err: err}
	}
	out, err := collectItems(rows)
	if err != nil {
		return nil, &StorageError{Op: "scan items for key", Err: err}
	}
	return out, nil
}

func (r *catalogRepo) ItemsForSet(ctx context.Context, setID string) ([]Item, error) {
	q := build().Select(itemFields...).
		From(build().Table(tableItems)).
		Where(entsql.EQ("item_set_id", setID)).
		OrderBy("position")
	rows, err := queryQ(ctx, r.s.db, q)
	if err != nil {
		return nil, &StorageError{Op: "query items for set", Err: err}
	}
	out, err := collectItems(rows)
	if err != nil {
		return nil, &StorageError{Op: "scan items for set", Err: err}
	}
	return out, nil
}

func (r *catalogRepo) Item(ctx context.Context, id string) (*Item, error) {
	q := build().Select(itemFields...).
		From(build().Table(tableItems)).
		Where(entsql.EQ("id", id))
	it, err := scanItem(queryRowQ(ctx, r.s.db, q))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "item", ID: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "query item", Err: err}
	}
	return it, nil
}

func (r *catalogRepo) ReplaceSet(ctx context.Context, set *ItemSet, items []Item) error {
	if set.Key == "" {
		return fmt.Errorf("replace set: empty key")
	}
	now := r.s.clock()
	if set.ID == "" {
		set.ID = uuid.NewString()
	}
	if set.CreatedAt.IsZero() {
		set.CreatedAt = now
	}
	if set.Source == "" {
		set.Source = SourceUser
	}

	// A user set takes over its key from the default catalog. A default
	// set never replaces a user one.
	scope := entsql.EQ("item_set_key", set.Key)
	owner := Source("")
	if set.Source != SourceUser {
		scope = entsql.And(scope, entsql.EQ("source", string(set.Source)))
		owner = set.Source
	}

	return r.s.withTx(ctx, "replace item set", func(tx *sql.Tx) error {
		if set.Source != SourceUser {
			_, owned, err := latestVersion(ctx, tx, set.Key, SourceUser)
			if err != nil {
				return err
			}
			if owned {
				return &OwnedKeyError{Key: set.Key}
			}
		}

		oldIDs, err := itemIDsForKey(ctx, tx, set.Key, owner)
		if err != nil {
			return fmt.Errorf("query previous items: %w", err)
		}

		keep := make(map[string]bool, len(items))
		for _, it := range items {
			keep[it.ID] = true
		}
		var orphans []string
		for _, id := range oldIDs {
			if !keep[id] {
				orphans = append(orphans, id)
			}
		}
		if err := deleteItemData(ctx, tx, orphans); err != nil {
			return err
		}

		if err := deleteSetsWhere(ctx, tx, scope); err != nil {
			return err
		}
		if err := insertSet(ctx, tx, set); err != nil {
			return err
		}
		for i := range items {
			items[i].ItemSetID = set.ID
			if items[i].CreatedAt.IsZero() {
				items[i].CreatedAt = now
			}
		}
		return insertItems(ctx, tx, items)
	})
}

func insertSet(ctx context.Context, q querier, set *ItemSet) error {
	name, err := json.Marshal(set.Name)
	if err != nil {
		return fmt.Errorf("encode name: %w", err)
	}
	var desc, metadata sql.NullString
	if !set.Description.IsZero() {
		b, err := json.Marshal(set.Description)
		if err != nil {
			return fmt.Errorf("encode description: %w", err)
		}
		desc = nullString(string(b))
	}
	if len(set.Metadata) > 0 {
		b, err := json.Marshal(set.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = nullString(string(b))
	}

	ins := build().Insert(tableItemSets).
		Columns(itemSetFields...).
		Values(set.ID, set.Key, string(name), desc, set.Enabled,
			nullString(set.Version), string(set.Source), nullString(set.Difficulty),
			metadata, set.CreatedAt)
	if _, err := execQ(ctx, q, ins); err != nil {
		return fmt.Errorf("insert item set %s: %w", set.Key, err)
	}
	return nil
}

func insertItems(ctx context.Context, q querier, items []Item) error {
	// Eight columns per row keeps each statement under the variable limit.
	const batch = maxVars / 8
	for start := 0; start < len(items); start += batch {
		end := min(start+batch, len(items))
		ins := build().Insert(tableItems).Columns(itemFields...)
		for _, it := range items[start:end] {
			ins.Values(it.ID, it.ItemSetID, it.Position, it.Prompt, it.Answer,
				nullString(it.PromptAudio), nullString(it.AnswerAudio), it.CreatedAt)
		}
		if _, err := execQ(ctx, q, ins); err != nil {
			return fmt.Errorf("insert items: %w", err)
		}
	}
	return nil
}

// itemIDsForKey returns the ids of items in sets with the key, enabled or
// not. An empty source matches every source.
func itemIDsForKey(ctx context.Context, q querier, key string, source Source) ([]string, error) {
	items := build().Table(tableItems)
	sets := build().Table(tableItemSets)
	p := entsql.EQ(sets.C("item_set_key"), key)
	if source != "" {
		p = entsql.And(p, entsql.EQ(sets.C("source"), string(source)))
	}
	sel := build().Select(items.C("id")).
		From(items).
		Join(sets).On(items.C("item_set_id"), sets.C("id")).
		Where(p)
	return scanIDs(ctx, q, sel)
}

func scanIDs(ctx context.Context, q querier, sel entsql.Querier) ([]string, error) {
	rows, err := queryQ(ctx, q, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// deleteItemData removes attempts and statistics of the given items.
func deleteItemData(ctx context.Context, q querier, itemIDs []string) error {
	for _, group := range chunks(itemIDs, maxVars) {
		args := anySlice(group)
		if _, err := execQ(ctx, q, build().Delete(tableAttempts).Where(entsql.In("item_id", args...))); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		if _, err := execQ(ctx, q, build().Delete(tableStatistics).Where(entsql.In("item_id", args...))); err != nil {
			return fmt.Errorf("delete statistics: %w", err)
		}
	}
	return nil
}

// deleteSetsWhere deletes matching sets and their items. Attempts and
// statistics are the caller's concern.
func deleteSetsWhere(ctx context.Context, q querier, p *entsql.Predicate) error {
	sel := build().Select("id").From(build().Table(tableItemSets)).Where(p)
	setIDs, err := scanIDs(ctx, q, sel)
	if err != nil {
		return fmt.Errorf("query item sets: %w", err)
	}
	for _, group := range chunks(setIDs, maxVars) {
		args := anySlice(group)
		if _, err := execQ(ctx, q, build().Delete(tableItems).Where(entsql.In("item_set_id", args...))); err != nil {
			return fmt.Errorf("delete items: %w", err)
		}
		if _, err := execQ(ctx, q, build().Delete(tableItemSets).Where(entsql.In("id", args...))); err != nil {
			return fmt.Errorf("delete item sets: %w", err)
		}
	}
	return nil
}

func (r *catalogRepo) SetEnabled(ctx context.Context, setID string, enabled bool) error {
	upd := build().Update(tableItemSets).
		Set("enabled", enabled).
		Where(entsql.EQ("id", setID))
	res, err := execQ(ctx, r.s.db, upd)
	if err != nil {
		return &StorageError{Op: "toggle item set", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Kind: "item set", ID: setID}
	}
	return nil
}

func (r *catalogRepo) DeleteSet(ctx context.Context, setID string) error {
	return r.s.withTx(ctx, "delete item set", func(tx *sql.Tx) error {
		sel := build().Select("id").From(build().Table(tableItems)).
			Where(entsql.EQ("item_set_id", setID))
		ids, err := scanIDs(ctx, tx, sel)
		if err != nil {
			return fmt.Errorf("query items: %w", err)
		}

		var exists int
		cnt := build().Select(entsql.Count("*")).From(build().Table(tableItemSets)).
			Where(entsql.EQ("id", setID))
		if err := queryRowQ(ctx, tx, cnt).Scan(&exists); err != nil {
			return fmt.Errorf("query item set: %w", err)
		}
		if exists == 0 {
			return &NotFoundError{Kind: "item set", ID: setID}
		}

		if err := deleteItemData(ctx, tx, ids); err != nil {
			return err
		}
		return deleteSetsWhere(ctx, tx, entsql.EQ("id", setID))
	})
}

func (r *catalogRepo) PruneKeysNotIn(ctx context.Context, keys []string) ([]string, error) {
	var pruned []string
	err := r.s.withTx(ctx, "prune item sets", func(tx *sql.Tx) error {
		p := entsql.And(
			entsql.EQ("source", string(SourceDefault)),
			entsql.NotIn("item_set_key", anySlice(keys)...),
		)
		sel := build().Select("item_set_key").From(build().Table(tableItemSets)).Where(p).Distinct()
		var err error
		pruned, err = scanIDs(ctx, tx, sel)
		if err != nil {
			return fmt.Errorf("query stale keys: %w", err)
		}

		for _, key := range pruned {
			ids, err := itemIDsForKey(ctx, tx, key, SourceDefault)
			if err != nil {
				return fmt.Errorf("query items of %s: %w", key, err)
			}
			if err := deleteItemData(ctx, tx, ids); err != nil {
				return err
			}
		}
		return deleteSetsWhere(ctx, tx, p)
	})
	if err != nil {
		return nil, err
	}
	return pruned, nil
}

func (r *catalogRepo) LatestVersion(ctx context.Context, key string, source Source) (string, bool, error) {
	return latestVersion(ctx, r.s.db, key, source)
}

func latestVersion(ctx context.Context, q querier, key string, source Source) (string, bool, error) {
	sel := build().Select("version").
		From(build().Table(tableItemSets)).
		Where(entsql.And(
			entsql.EQ("item_set_key", key),
			entsql.EQ("source", string(source)),
		)).
		OrderBy(entsql.Desc("created_at")).
		Limit(1)
	var v sql.NullString
	err := queryRowQ(ctx, q, sel).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &StorageError{Op: "query latest version", Err: err}
	}
	return v.String, true, nil
}
