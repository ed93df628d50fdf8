package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableItemSets   = "item_sets"
	tableItems      = "items"
	tableAttempts   = "attempts"
	tableStatistics = "statistics"
	tableSessions   = "sessions"
)

var (
	itemSetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "item_set_key", Type: field.TypeString},
		{Name: "name", Type: field.TypeJSON},
		{Name: "description", Type: field.TypeJSON, Nullable: true},
		{Name: "enabled", Type: field.TypeBool, Default: true},
		{Name: "version", Type: field.TypeString, Nullable: true},
		{Name: "source", Type: field.TypeString, Default: string(SourceUser)},
		{Name: "difficulty", Type: field.TypeString, Nullable: true},
		{Name: "metadata", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	itemSetsTable = &schema.Table{
		Name:       tableItemSets,
		Columns:    itemSetsColumns,
		PrimaryKey: []*schema.Column{itemSetsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "itemset_key", Columns: []*schema.Column{itemSetsColumns[1]}},
		},
	}

	itemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "item_set_id", Type: field.TypeString},
		{Name: "position", Type: field.TypeInt},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "answer", Type: field.TypeString, Size: 2147483647},
		{Name: "prompt_audio", Type: field.TypeString, Nullable: true},
		{Name: "answer_audio", Type: field.TypeString, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	itemsTable = &schema.Table{
		Name:       tableItems,
		Columns:    itemsColumns,
		PrimaryKey: []*schema.Column{itemsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "items_item_sets_items",
				Columns:    []*schema.Column{itemsColumns[1]},
				RefColumns: []*schema.Column{itemSetsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "item_item_set_id", Columns: []*schema.Column{itemsColumns[1]}},
		},
	}

	// Attempts and statistics reference items by id without a foreign key:
	// a catalog re-import deletes and re-inserts items, and rows for ids
	// that survive must be kept.
	attemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "item_id", Type: field.TypeString},
		{Name: "result", Type: field.TypeString},
		{Name: "attempted_at", Type: field.TypeTime},
	}
	attemptsTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_item_id", Columns: []*schema.Column{attemptsColumns[1]}},
			{Name: "attempt_attempted_at", Columns: []*schema.Column{attemptsColumns[3]}},
		},
	}

	statisticsColumns = []*schema.Column{
		{Name: "item_id", Type: field.TypeString},
		{Name: "total_attempts", Type: field.TypeInt, Default: 0},
		{Name: "pass_count", Type: field.TypeInt, Default: 0},
		{Name: "fail_count", Type: field.TypeInt, Default: 0},
		{Name: "last_result", Type: field.TypeString, Nullable: true},
		{Name: "last_attempted_at", Type: field.TypeTime, Nullable: true},
		{Name: "failure_rate", Type: field.TypeFloat64, Default: 0},
		{Name: "priority", Type: field.TypeFloat64},
	}
	statisticsTable = &schema.Table{
		Name:       tableStatistics,
		Columns:    statisticsColumns,
		PrimaryKey: []*schema.Column{statisticsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "statistics_priority", Columns: []*schema.Column{statisticsColumns[7]}},
		},
	}

	sessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "item_set_key", Type: field.TypeString},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "ended_at", Type: field.TypeTime},
		{Name: "duration_ms", Type: field.TypeInt64},
		{Name: "pass_count", Type: field.TypeInt},
		{Name: "fail_count", Type: field.TypeInt},
		{Name: "total_items", Type: field.TypeInt},
		{Name: "accuracy", Type: field.TypeInt},
		{Name: "created_at", Type: field.TypeTime},
	}
	sessionsTable = &schema.Table{
		Name:       tableSessions,
		Columns:    sessionsColumns,
		PrimaryKey: []*schema.Column{sessionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "session_item_set_key", Columns: []*schema.Column{sessionsColumns[1]}},
			{Name: "session_created_at", Columns: []*schema.Column{sessionsColumns[9]}},
		},
	}

	tables = []*schema.Table{
		itemSetsTable,
		itemsTable,
		attemptsTable,
		statisticsTable,
		sessionsTable,
	}
)

func init() {
	itemsTable.ForeignKeys[0].RefTable = itemSetsTable
}
