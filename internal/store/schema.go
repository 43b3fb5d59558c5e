package store

import (
	"context"
	"fmt"
)

// Table names.
const (
	TableCommits   = "commit_details"
	TableRelations = "commit_relation"
	TableRefs      = "ref_details"
)

var schema = []string{
	`CREATE TABLE commit_details (
		id TEXT PRIMARY KEY,
		author TEXT NOT NULL,
		date INTEGER NOT NULL,
		message TEXT NOT NULL
	)`,
	`CREATE TABLE commit_relation (
		parent TEXT NOT NULL,
		child TEXT NOT NULL,
		PRIMARY KEY (parent, child)
	)`,
	`CREATE TABLE ref_details (
		name TEXT NOT NULL,
		id TEXT NOT NULL,
		kind TEXT NOT NULL,
		PRIMARY KEY (name, id)
	)`,
}

const (
	insertCommitSQL   = `INSERT INTO commit_details (id, author, date, message) VALUES (:id, :author, :date, :message)`
	insertRelationSQL = `INSERT INTO commit_relation (parent, child) VALUES (:parent, :child)`
	insertRefSQL      = `INSERT INTO ref_details (name, id, kind) VALUES (:name, :id, :kind)`
)

// Counts holds the number of rows in each table.
type Counts struct {
	Commits   int `json:"commits"`
	Relations int `json:"relations"`
	Refs      int `json:"refs"`
}

// Counts returns the current row count of every table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dst   *int
	}{
		{TableCommits, &c.Commits},
		{TableRelations, &c.Relations},
		{TableRefs, &c.Refs},
	} {
		if err := s.db.GetContext(ctx, q.dst, "SELECT COUNT(*) FROM "+q.table); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}
