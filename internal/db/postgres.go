package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/fdnorm/internal/schema"
)

// PostgresSource connects to a PostgreSQL database and derives one relation
// schema per table, with functional dependencies declared by the table's
// primary key and unique indexes.
type PostgresSource struct {
	conn       *pgx.Conn
	schemaName string
}

// OpenPostgres connects to PostgreSQL and verifies the connection.
func OpenPostgres(ctx context.Context, connString, schemaName string) (*PostgresSource, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if schemaName == "" {
		schemaName = "public"
	}
	return &PostgresSource{conn: conn, schemaName: schemaName}, nil
}

// Close closes the database connection.
func (s *PostgresSource) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

// ExtractRelations builds a relation schema for each requested table, or for
// every base table in the database schema when tables is empty.
func (s *PostgresSource) ExtractRelations(ctx context.Context, tables []string) ([]*schema.Schema, error) {
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

func (s *PostgresSource) tableNames(ctx context.Context, requested []string) ([]string, error) {
	if len(requested) > 0 {
		return requested, nil
	}

	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`
	rows, err := s.conn.Query(ctx, query, s.schemaName)
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

func (s *PostgresSource) extractTable(ctx context.Context, tableName string) (*schema.Schema, error) {
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

func (s *PostgresSource) columns(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`
	rows, err := s.conn.Query(ctx, query, s.schemaName, tableName)
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

func (s *PostgresSource) primaryKey(ctx context.Context, tableName string) ([]string, error) {
	query := `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = $1
			AND table_name = $2
			AND constraint_name IN (
				SELECT constraint_name
				FROM information_schema.table_constraints
				WHERE table_schema = $1
					AND table_name = $2
					AND constraint_type = 'PRIMARY KEY'
			)
		ORDER BY ordinal_position
	`
	rows, err := s.conn.Query(ctx, query, s.schemaName, tableName)
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

func (s *PostgresSource) uniqueIndexes(ctx context.Context, tableName string) ([][]string, error) {
	query := `
		SELECT array_agg(a.attname ORDER BY array_position(ix.indkey, a.attnum)) AS column_names
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		JOIN pg_namespace n ON n.oid = t.relnamespace
		WHERE t.relkind = 'r'
			AND n.nspname = $1
			AND t.relname = $2
			AND ix.indisunique
			AND NOT ix.indisprimary
		GROUP BY i.relname
		ORDER BY i.relname
	`
	rows, err := s.conn.Query(ctx, query, s.schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes [][]string
	for rows.Next() {
		var columns []string
		if err := rows.Scan(&columns); err != nil {
			return nil, err
		}
		indexes = append(indexes, columns)
	}
	return indexes, rows.Err()
}
