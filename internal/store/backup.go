package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/abhisek/easypractice/internal/priority"
)

// BackupVersion is written to every export.
const BackupVersion = "2.0"

// Backup is a full export of the store.
type Backup struct {
	Version    string          `json:"version"`
	ExportedAt time.Time       `json:"exportedAt"`
	ItemSets   []ItemSet       `json:"itemSets"`
	Items      []Item          `json:"items"`
	Attempts   []Attempt       `json:"attempts"`
	Statistics []Statistics    `json:"statistics"`
	Sessions   []SessionRecord `json:"sessions"`
}

// Export reads every table into a Backup.
func (s *Store) Export(ctx context.Context) (*Backup, error) {
	b := &Backup{Version: BackupVersion, ExportedAt: s.clock()}

	sets, err := s.Catalog().ItemSets(ctx)
	if err != nil {
		return nil, err
	}
	b.ItemSets = sets

	for _, set := range sets {
		items, err := s.Catalog().ItemsForSet(ctx, set.ID)
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, items...)
	}

	if b.Attempts, err = s.allAttempts(ctx); err != nil {
		return nil, &StorageError{Op: "export attempts", Err: err}
	}
	if b.Statistics, err = s.allStatistics(ctx); err != nil {
		return nil, &StorageError{Op: "export statistics", Err: err}
	}
	if b.Sessions, err = s.Sessions().History(ctx, "", 0); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) allAttempts(ctx context.Context) ([]Attempt, error) {
	sel := build().Select("id", "item_id", "result", "attempted_at").
		From(build().Table(tableAttempts)).
		OrderBy("attempted_at")
	rows, err := queryQ(ctx, s.db, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		var result string
		if err := rows.Scan(&a.ID, &a.ItemID, &result, &a.AttemptedAt); err != nil {
			return nil, err
		}
		a.Result = Result(result)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) allStatistics(ctx context.Context) ([]Statistics, error) {
	sel := build().Select(statisticsFields...).From(build().Table(tableStatistics))
	rows, err := queryQ(ctx, s.db, sel)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Statistics
	for rows.Next() {
		st, err := scanStatistics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, rows.Err()
}

// Restore replaces the whole store with the contents of b in one
// transaction.
func (s *Store) Restore(ctx context.Context, b *Backup) error {
	if b == nil {
		return fmt.Errorf("restore: nil backup")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.withTx(ctx, "restore backup", func(tx *sql.Tx) error {
		for _, t := range []string{tableAttempts, tableStatistics, tableItems, tableItemSets, tableSessions} {
			if _, err := execQ(ctx, tx, build().Delete(t)); err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}

		for i := range b.ItemSets {
			if b.ItemSets[i].Source == "" {
				b.ItemSets[i].Source = SourceUser
			}
			if err := insertSet(ctx, tx, &b.ItemSets[i]); err != nil {
				return err
			}
		}
		if err := insertItems(ctx, tx, b.Items); err != nil {
			return err
		}
		for _, a := range b.Attempts {
			ins := build().Insert(tableAttempts).
				Columns("id", "item_id", "result", "attempted_at").
				Values(a.ID, a.ItemID, string(a.Result), a.AttemptedAt.UTC())
			if _, err := execQ(ctx, tx, ins); err != nil {
				return fmt.Errorf("insert attempt: %w", err)
			}
		}
		for _, st := range b.Statistics {
			c := st.Counts()
			st.FailureRate = priority.FailureRate(c)
			st.Priority = priority.Score(c)
			if err := upsertStatistics(ctx, tx, &st); err != nil {
				return fmt.Errorf("insert statistics: %w", err)
			}
		}
		for i := range b.Sessions {
			if err := insertSession(ctx, tx, &b.Sessions[i]); err != nil {
				return fmt.Errorf("insert session: %w", err)
			}
		}
		return nil
	})
}
