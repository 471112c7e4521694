// Package ddl parses CREATE TABLE scripts into relation schemas, so the
// pipeline can analyze a database design before it exists anywhere.
package ddl

import (
	"fmt"

	"github.com/auxten/postgresql-parser/pkg/sql/parser"
	"github.com/auxten/postgresql-parser/pkg/sql/sem/tree"
	"github.com/auxten/postgresql-parser/pkg/walk"

	"github.com/tordrt/fdnorm/internal/schema"
)

type table struct {
	name    string
	columns []string
	pk      []string
	uniques [][]string
}

type collector struct {
	tables []*table
	index  map[string]*table
	errs   []error
}

// ParseScript parses a SQL script and derives one relation schema per
// CREATE TABLE statement. Primary keys and unique constraints, whether
// inline or added through ALTER TABLE, become the declared dependencies.
func ParseScript(sql string) ([]*schema.Schema, error) {
	stmts, err := parser.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	c := &collector{index: map[string]*table{}}
	w := &walk.AstWalker{Fn: c.visit}
	_, _ = w.Walk(stmts, nil)
	if len(c.errs) > 0 {
		return nil, c.errs[0]
	}

	relations := make([]*schema.Schema, 0, len(c.tables))
	for _, t := range c.tables {
		var determinants [][]string
		if len(t.pk) > 0 {
			determinants = append(determinants, t.pk)
		}
		determinants = append(determinants, t.uniques...)

		rel, err := schema.FromTable(t.name, t.columns, determinants)
		if err != nil {
			return nil, err
		}
		relations = append(relations, rel)
	}
	return relations, nil
}

func (c *collector) visit(_ interface{}, node interface{}) bool {
	switch n := node.(type) {
	case *tree.CreateTable:
		name := n.Table.Table()
		if _, ok := c.index[name]; ok {
			c.errs = append(c.errs, fmt.Errorf("%w: table %q declared twice", schema.ErrMalformedInput, name))
			return false
		}
		t := &table{name: name}
		c.tables = append(c.tables, t)
		c.index[name] = t

		n.HoistConstraints()
		for _, def := range n.Defs {
			switch d := def.(type) {
			case *tree.ColumnTableDef:
				t.columns = append(t.columns, string(d.Name))
				if d.PrimaryKey.IsPrimaryKey {
					t.pk = append(t.pk, string(d.Name))
				}
				if d.Unique {
					t.uniques = append(t.uniques, []string{string(d.Name)})
				}
			case *tree.UniqueConstraintTableDef:
				c.addConstraint(t, d)
			}
		}
	case *tree.AlterTable:
		name := n.Table.ToTableName()
		t, ok := c.index[string(name.TableName)]
		if !ok {
			c.errs = append(c.errs, fmt.Errorf("%w: ALTER TABLE references unknown table %q", schema.ErrMalformedInput, name.TableName))
			return false
		}
		for _, cmd := range n.Cmds {
			switch cc := cmd.(type) {
			case *tree.AlterTableAddConstraint:
				if d, ok := cc.ConstraintDef.(*tree.UniqueConstraintTableDef); ok {
					c.addConstraint(t, d)
				}
			case *tree.AlterTableAlterPrimaryKey:
				t.pk = t.pk[:0]
				for _, col := range cc.Columns {
					t.pk = append(t.pk, col.Column.String())
				}
			}
		}
	}
	return false
}

func (c *collector) addConstraint(t *table, d *tree.UniqueConstraintTableDef) {
	cols := make([]string, 0, len(d.Columns))
	for _, col := range d.Columns {
		cols = append(cols, col.Column.String())
	}
	if d.PrimaryKey {
		t.pk = cols
		return
	}
	t.uniques = append(t.uniques, cols)
}
