// Package query builds parameterized PostgreSQL SELECT statements from a
// projection of view field names onto table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view field names to alias-qualified columns of one table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:  schema,
		table:   table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column to the view field name. Columns are selected in the
// order they are projected, which is the order scan functions must follow.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns[field] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Table returns "schema.table alias".
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for a view field, or field itself when unmapped.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// Has reports whether field is projected.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.columns[field]
	return ok
}

// Columns returns the projected columns as a comma-separated select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
