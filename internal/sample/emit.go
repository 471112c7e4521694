package sample

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/tordrt/fdnorm/internal/db"
)

// InsertSQL builds a single INSERT statement covering every row of the
// instance, with placeholder arguments.
func InsertSQL(inst *Instance, table string) (string, []interface{}, error) {
	if table == "" {
		table = inst.Schema.Name
	}
	cols := make([]string, len(inst.Schema.Attrs))
	for i, a := range inst.Schema.Attrs {
		cols[i] = string(a)
	}

	stmt := sq.Insert(table).Columns(cols...)
	for _, row := range inst.Rows {
		vals := make([]interface{}, len(row))
		for i, v := range row {
			vals[i] = v
		}
		stmt = stmt.Values(vals...)
	}
	return stmt.ToSql()
}

// WriteSQLite materializes the instance into a SQLite database file,
// creating the table if needed. All columns are TEXT since domain values
// are opaque strings.
func WriteSQLite(ctx context.Context, inst *Instance, table, path string) error {
	if table == "" {
		table = inst.Schema.Name
	}
	client, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	cols := make([]string, len(inst.Schema.Attrs))
	for i, a := range inst.Schema.Attrs {
		cols[i] = fmt.Sprintf("%q TEXT", string(a))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", table, strings.Join(cols, ", "))
	if _, err := client.DB().ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	query, args, err := InsertSQL(inst, table)
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}
	if _, err := client.DB().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert rows into %s: %w", table, err)
	}
	return nil
}
