package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type sessionRepo struct {
	s *Store
}

var sessionFields = []string{
	"id", "item_set_key", "started_at", "ended_at", "duration_ms",
	"pass_count", "fail_count", "total_items", "accuracy", "created_at",
}

func scanSession(sc scanner) (*SessionRecord, error) {
	var (
		rec        SessionRecord
		durationMs int64
	)
	err := sc.Scan(&rec.ID, &rec.ItemSetKey, &rec.StartedAt, &rec.EndedAt, &durationMs,
		&rec.PassCount, &rec.FailCount, &rec.TotalItems, &rec.Accuracy, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	return &rec, nil
}

func insertSession(ctx context.Context, q querier, rec *SessionRecord) error {
	ins := build().Insert(tableSessions).
		Columns(sessionFields...).
		Values(rec.ID, rec.ItemSetKey, rec.StartedAt.UTC(), rec.EndedAt.UTC(), rec.Duration.Milliseconds(),
			rec.PassCount, rec.FailCount, rec.TotalItems, rec.Accuracy, rec.CreatedAt.UTC())
	_, err := execQ(ctx, q, ins)
	return err
}

func (r *sessionRepo) Save(ctx context.Context, rec *SessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = r.s.clock()
	}
	if err := insertSession(ctx, r.s.db, rec); err != nil {
		return &StorageError{Op: "save session", Err: err}
	}
	return nil
}

func (r *sessionRepo) History(ctx context.Context, key string, limit int) ([]SessionRecord, error) {
	sel := build().Select(sessionFields...).
		From(build().Table(tableSessions)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("rowid"))
	if key != "" {
		sel.Where(entsql.EQ("item_set_key", key))
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := queryQ(ctx, r.s.db, sel)
	if err != nil {
		return nil, &StorageError{Op: "query sessions", Err: err}
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan session", Err: err}
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query sessions", Err: err}
	}
	return out, nil
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*SessionRecord, error) {
	sel := build().Select(sessionFields...).
		From(build().Table(tableSessions)).
		Where(entsql.EQ("id", id))
	rec, err := scanSession(queryRowQ(ctx, r.s.db, sel))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Kind: "session", ID: id}
	}
	if err != nil {
		return nil, &StorageError{Op: "query session", Err: err}
	}
	return rec, nil
}

func (r *sessionRepo) Clear(ctx context.Context) error {
	if _, err := execQ(ctx, r.s.db, build().Delete(tableSessions)); err != nil {
		return &StorageError{Op: "clear sessions", Err: err}
	}
	return nil
}
