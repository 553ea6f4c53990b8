// Package query builds parameterized PostgreSQL SELECT statements from a
// mapping of view names to qualified columns.
package query

import (
	"strings"
)

// ProjectionMap maps view names (the Go field names of a row type) to
// qualified columns of a base table and any joined tables.
type ProjectionMap struct {
	table   string
	joins   []string
	current string
	columns map[string]string
	order   []string
}

// NewProjectionMap starts a projection over schema.table aliased as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   schema + "." + table + " " + alias,
		current: alias,
		columns: make(map[string]string),
	}
}

// Project selects column under viewName. The column belongs to the most
// recently joined table, or the base table before any Join.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.current + "." + column
	p.columns[viewName] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Join appends "<kind> schema.table alias ON on" to the FROM clause.
func (p *ProjectionMap) Join(schema, table, alias, kind, on string) *ProjectionMap {
	p.joins = append(p.joins, kind+" "+schema+"."+table+" "+alias+" ON "+on)
	p.current = alias
	return p
}

// Table returns the aliased base table, e.g. "public.record_sets rs".
func (p *ProjectionMap) Table() string {
	return p.table
}

// From returns the base table followed by its joins.
func (p *ProjectionMap) From() string {
	if len(p.joins) == 0 {
		return p.table
	}
	return p.table + " " + strings.Join(p.joins, " ")
}

// Column resolves viewName, passing unmapped names through unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
