package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tordrt/fdnorm/internal/schema"
)

// MySQLSource connects to a MySQL database and derives one relation schema
// per table, with dependencies declared by the primary key and unique
// indexes.
type MySQLSource struct {
	db         *sql.DB
	schemaName string
}

// OpenMySQL connects to MySQL and verifies the connection. When schemaName
// is empty it is taken from the connection string's database name.
func OpenMySQL(ctx context.Context, connString, schemaName string) (*MySQLSource, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" {
		schemaName, err = ParseDatabaseName(connString)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to determine database name: %w", err)
		}
	}
	return &MySQLSource{db: db, schemaName: schemaName}, nil
}

// Close closes the database connection.
func (s *MySQLSource) Close() error {
	return s.db.Close()
}

// ParseDatabaseName extracts the database name from a MySQL connection
// string of the form user:pass@tcp(host:port)/dbname?params.
func ParseDatabaseName(connString string) (string, error) {
	slash := strings.LastIndex(connString, "/")
	if slash < 0 || slash == len(connString)-1 {
		return "", fmt.Errorf("connection string has no database name")
	}
	name := connString[slash+1:]
	if q := strings.Index(name, "?"); q >= 0 {
		name = name[:q]
	}
	if name == "" {
		return "", fmt.Errorf("connection string has no database name")
	}
	return name, nil
}

// ExtractRelations builds a relation schema for each requested table, or for
// every base table in the database when tables is empty.
func (s *MySQLSource) ExtractRelations(ctx context.Context, tables []string) ([]*schema.Schema, error) {
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

func (s *MySQLSource) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := s.db.QueryContext(ctx, query, s.schemaName)
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

func (s *MySQLSource) extractTable(ctx context.Context, tableName string) (*schema.Schema, error) {
	columns, err := s.columns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}

	var determinants [][]string
	pk, err := s.primaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
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

func (s *MySQLSource) columns(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position
	`
	rows, err := s.db.QueryContext(ctx, query, s.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}

func (s *MySQLSource) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ?
			AND table_name = ?
			AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position
	`
	rows, err := s.db.QueryContext(ctx, query, s.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		pk = append(pk, name)
	}
	return pk, rows.Err()
}

func (s *MySQLSource) uniqueIndexes(ctx context.Context, tableName string) ([][]string, error) {
	query := `
		SELECT GROUP_CONCAT(s.column_name ORDER BY s.seq_in_index) AS column_names
		FROM information_schema.statistics s
		WHERE s.table_schema = ?
			AND s.table_name = ?
			AND s.index_name != 'PRIMARY'
			AND s.non_unique = 0
		GROUP BY s.index_name
		ORDER BY s.index_name
	`
	rows, err := s.db.QueryContext(ctx, query, s.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes [][]string
	for rows.Next() {
		var columnNames string
		if err := rows.Scan(&columnNames); err != nil {
			return nil, err
		}
		indexes = append(indexes, strings.Split(columnNames, ","))
	}
	return indexes, rows.Err()
}
