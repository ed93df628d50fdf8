package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type statsRepo struct {
	s *Store
}

var statisticsFields = []string{
	"item_id", "total_attempts", "pass_count", "fail_count",
	"last_result", "last_attempted_at", "failure_rate", "priority",
}

func scanStatistics(sc scanner) (*Statistics, error) {
	var (
		st         Statistics
		lastResult sql.NullString
		lastAt     sql.NullTime
	)
	err := sc.Scan(&st.ItemID, &st.TotalAttempts, &st.PassCount, &st.FailCount,
		&lastResult, &lastAt, &st.FailureRate, &st.Priority)
	if err != nil {
		return nil, err
	}
	st.LastResult = Result(lastResult.String)
	if lastAt.Valid {
		st.LastAttemptedAt = lastAt.Time
	}
	return &st, nil
}

func getStatistics(ctx context.Context, q querier, itemID string) (*Statistics, error) {
	sel := build().Select(statisticsFields...).
		From(build().Table(tableStatistics)).
		Where(entsql.EQ("item_id", itemID))
	st, err := scanStatistics(queryRowQ(ctx, q, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return st, err
}

func upsertStatistics(ctx context.Context, q querier, st *Statistics) error {
	var lastAt sql.NullTime
	if !st.LastAttemptedAt.IsZero() {
		lastAt = sql.NullTime{Time: st.LastAttemptedAt, Valid: true}
	}
	ins := build().Insert(tableStatistics).
		Columns(statisticsFields...).
		Values(st.ItemID, st.TotalAttempts, st.PassCount, st.FailCount,
			nullString(string(st.LastResult)), lastAt, st.FailureRate, st.Priority).
		OnConflict(entsql.ConflictColumns("item_id"), entsql.ResolveWithNewValues())
	_, err := execQ(ctx, q, ins)
	return err
}

func (r *statsRepo) RecordAttempt(ctx context.Context, itemID string, result Result) (*Statistics, error) {
	if !result.Valid() {
		return nil, fmt.Errorf("record attempt: invalid result %q", result)
	}

	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	now := r.s.clock()
	var out *Statistics
	err := r.s.withTx(ctx, "record attempt", func(tx *sql.Tx) error {
		var n int
		cnt := build().Select(entsql.Count("*")).From(build().Table(tableItems)).
			Where(entsql.EQ("id", itemID))
		if err := queryRowQ(ctx, tx, cnt).Scan(&n); err != nil {
			return fmt.Errorf("query item: %w", err)
		}
		if n == 0 {
			return &NotFoundError{Kind: "item", ID: itemID}
		}

		ins := build().Insert(tableAttempts).
			Columns("id", "item_id", "result", "attempted_at").
			Values(uuid.NewString(), itemID, string(result), now)
		if _, err := execQ(ctx, tx, ins); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		st, err := getStatistics(ctx, tx, itemID)
		if err != nil {
			return fmt.Errorf("query statistics: %w", err)
		}
		if st == nil {
			st = &Statistics{ItemID: itemID}
		}
		st.apply(result, now)

		if err := upsertStatistics(ctx, tx, st); err != nil {
			return fmt.Errorf("upsert statistics: %w", err)
		}
		out = st
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *statsRepo) Get(ctx context.Context, itemID string) (*Statistics, error) {
	st, err := getStatistics(ctx, r.s.db, itemID)
	if err != nil {
		return nil, &StorageError{Op: "query statistics", Err: err}
	}
	return st, nil
}

func (r *statsRepo) ForItems(ctx context.Context, itemIDs []string) (map[string]*Statistics, error) {
	out := make(map[string]*Statistics, len(itemIDs))
	for _, group := range chunks(itemIDs, maxVars) {
		sel := build().Select(statisticsFields...).
			From(build().Table(tableStatistics)).
			Where(entsql.In("item_id", anySlice(group)...))
		rows, err := queryQ(ctx, r.s.db, sel)
		if err != nil {
			return nil, &StorageError{Op: "query statistics", Err: err}
		}
		for rows.Next() {
			st, err := scanStatistics(rows)
			if err != nil {
				rows.Close()
				return nil, &StorageError{Op: "scan statistics", Err: err}
			}
			out[st.ItemID] = st
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, &StorageError{Op: "query statistics", Err: err}
		}
	}
	return out, nil
}

func (r *statsRepo) ResetAll(ctx context.Context) error {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	return r.s.withTx(ctx, "reset statistics", func(tx *sql.Tx) error {
		if _, err := execQ(ctx, tx, build().Delete(tableAttempts)); err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		if _, err := execQ(ctx, tx, build().Delete(tableStatistics)); err != nil {
			return fmt.Errorf("delete statistics: %w", err)
		}
		return nil
	})
}

func (r *statsRepo) ResetForKey(ctx context.Context, key string) error {
	r.s.writeMu.Lock()
	defer r.s.writeMu.Unlock()

	return r.s.withTx(ctx, "reset statistics for key", func(tx *sql.Tx) error {
		ids, err := itemIDsForKey(ctx, tx, key, "")
		if err != nil {
			return fmt.Errorf("query items: %w", err)
		}
		return deleteItemData(ctx, tx, ids)
	})
}

func (r *statsRepo) Struggled(ctx context.Context, limit int, key string) ([]StruggledItem, error) {
	stats := build().Table(tableStatistics)
	items := build().Table(tableItems)
	sets := build().Table(tableItemSets)

	cols := append(stats.Columns(statisticsFields...), items.Columns(itemFields...)...)
	cols = append(cols, sets.C("item_set_key"))

	sel := build().Select(cols...).
		From(stats).
		Join(items).On(stats.C("item_id"), items.C("id")).
		Join(sets).On(items.C("item_set_id"), sets.C("id")).
		Where(entsql.GT(stats.C("failure_rate"), 0)).
		OrderBy(entsql.Desc(stats.C("priority")), entsql.Desc(stats.C("failure_rate")))
	if key != "" {
		sel.Where(entsql.EQ(sets.C("item_set_key"), key))
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := queryQ(ctx, r.s.db, sel)
	if err != nil {
		return nil, &StorageError{Op: "query struggled items", Err: err}
	}
	defer rows.Close()

	var out []StruggledItem
	for rows.Next() {
		var (
			si                       StruggledItem
			lastResult               sql.NullString
			lastAt                   sql.NullTime
			promptAudio, answerAudio sql.NullString
		)
		err := rows.Scan(
			&si.Stats.ItemID, &si.Stats.TotalAttempts, &si.Stats.PassCount, &si.Stats.FailCount,
			&lastResult, &lastAt, &si.Stats.FailureRate, &si.Stats.Priority,
			&si.Item.ID, &si.Item.ItemSetID, &si.Item.Position, &si.Item.Prompt, &si.Item.Answer,
			&promptAudio, &answerAudio, &si.Item.CreatedAt,
			&si.ItemSetKey,
		)
		if err != nil {
			return nil, &StorageError{Op: "scan struggled item", Err: err}
		}
		si.Stats.LastResult = Result(lastResult.String)
		if lastAt.Valid {
			si.Stats.LastAttemptedAt = lastAt.Time
		}
		si.Item.PromptAudio = promptAudio.String
		si.Item.AnswerAudio = answerAudio.String
		out = append(out, si)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query struggled items", Err: err}
	}
	return out, nil
}

func (r *statsRepo) History(ctx context.Context, itemID string, limit int) ([]Attempt, error) {
	sel := build().Select("id", "item_id", "result", "attempted_at").
		From(build().Table(tableAttempts)).
		Where(entsql.EQ("item_id", itemID)).
		OrderBy(entsql.Desc("attempted_at"), entsql.Desc("rowid"))
	if limit > 0 {
		sel.Limit(limit)
	}
	rows, err := queryQ(ctx, r.s.db, sel)
	if err != nil {
		return nil, &StorageError{Op: "query attempts", Err: err}
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var result string
		if err := rows.Scan(&a.ID, &a.ItemID, &result, &a.AttemptedAt); err != nil {
			return nil, &StorageError{Op: "scan attempt", Err: err}
		}
		a.Result = Result(result)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query attempts", Err: err}
	}
	return out, nil
}
