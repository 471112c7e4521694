// Package db contains the live-database input adapters: each source derives
// relation schemas, with functional dependencies declared by primary keys
// and unique indexes, from an existing database.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/fdnorm/internal/schema"
)

// SQLiteSource reads relation schemas from a SQLite database file.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database file and verifies the connection.
func OpenSQLite(ctx context.Context, path string) (*SQLiteSource, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &SQLiteSource{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// DB returns the underlying connection, for callers that write instances
// back into the file.
func (s *SQLiteSource) DB() *sql.DB {
	return s.db
}

// ExtractRelations builds a relation schema for each requested table, or for
// every table in the file when tables is empty.
func (s *SQLiteSource) ExtractRelations(ctx context.Context, tables []string) ([]*schema.Schema, error) {
	names, err := s.tableNames(ctx, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	var relations []*schema.Schema
	for _, name := range names {
		rel, err := s.extractTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		relations = append(relations, rel)
	}
	return relations, nil
}

func (s *SQLiteSource) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLiteSource) extractTable(ctx context.Context, tableName string) (*schema.Schema, error) {
	columns, pk, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	var determinants [][]string
	if len(pk) > 0 {
		determinants = append(determinants, pk)
	}
	unique, err := s.uniqueIndexes(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract unique indexes: %w", err)
	}
	determinants = append(determinants, unique...)

	return schema.FromTable(tableName, columns, determinants)
}

// tableInfo reads the column list and primary key from PRAGMA table_info.
func (s *SQLiteSource) tableInfo(ctx context.Context, tableName string) (columns, pk []string, err error) {
	query := fmt.Sprintf("PRAGMA table_info(%q)", tableName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	type pkCol struct {
		name string
		rank int
	}
	var pkCols []pkCol
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pkRank     int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pkRank); err != nil {
			return nil, nil, err
		}
		columns = append(columns, name)
		if pkRank > 0 {
			pkCols = append(pkCols, pkCol{name: name, rank: pkRank})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(pkCols, func(i, j int) bool { return pkCols[i].rank < pkCols[j].rank })
	for _, c := range pkCols {
		pk = append(pk, c.name)
	}
	return columns, pk, nil
}

// uniqueIndexes reads unique index column lists from PRAGMA index_list and
// index_info, skipping the implicit primary-key index.
func (s *SQLiteSource) uniqueIndexes(ctx context.Context, tableName string) ([][]string, error) {
	query := fmt.Sprintf("PRAGMA index_list(%q)", tableName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type index struct {
		name   string
		unique bool
		origin string
	}
	var indexes []index
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  int
			origin  string
			partial int
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		indexes = append(indexes, index{name: name, unique: unique == 1, origin: origin})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var result [][]string
	for _, idx := range indexes {
		if !idx.unique || idx.origin == "pk" {
			continue
		}
		cols, err := s.indexColumns(ctx, idx.name)
		if err != nil {
			return nil, err
		}
		if len(cols) > 0 {
			result = append(result, cols)
		}
	}
	return result, nil
}

func (s *SQLiteSource) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	query := fmt.Sprintf("PRAGMA index_info(%q)", indexName)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	return cols, rows.Err()
}
