package table

import (
	"fmt"
	"strings"
	"time"
)

// Kind describes the value type carried by a column.
type Kind int

const (
	Int Kind = iota
	Float
	String
	Duration
	Time
	Array
)

// Column is one named sequence of cells. A nil cell marks a missing value,
// which joins and snapshot extraction rely on.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Clone returns an independent copy of the column.
func (c Column) Clone() Column {
	vals := make([]any, len(c.Values))
	copy(vals, c.Values)
	return Column{Name: c.Name, Kind: c.Kind, Values: vals}
}

// NonMissing returns the cells that are present, in order.
func (c Column) NonMissing() []any {
	var out []any
	for _, v := range c.Values {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// Table is an ordered set of columns sharing one index. All operations on
// Table return new tables; a table is never mutated once handed out, so the
// same table can safely back several tree locations.
type Table struct {
	Index   Column
	Columns []Column
}

// New builds a table from an index column and data columns. Columns longer
// than the index are truncated, shorter ones padded with missing cells, so
// the length invariant always holds.
func New(index Column, columns ...Column) *Table {
	n := len(index.Values)
	cols := make([]Column, 0, len(columns))
	for _, c := range columns {
		c = c.Clone()
		switch {
		case len(c.Values) > n:
			c.Values = c.Values[:n]
		case len(c.Values) < n:
			padded := make([]any, n)
			copy(padded, c.Values)
			c.Values = padded
		}
		cols = append(cols, c)
	}
	return &Table{Index: index.Clone(), Columns: cols}
}

// Empty returns a table with no rows and no columns.
func Empty() *Table {
	return &Table{}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Index.Values)
}

// IsEmpty reports whether the table has neither rows nor columns.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0 && (t == nil || len(t.Columns) == 0)
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	if t == nil {
		return Column{}, false
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Clone()
	}
	return &Table{Index: t.Index.Clone(), Columns: cols}
}

// WithIndex returns a copy of the table using the given index column.
func (t *Table) WithIndex(index Column) *Table {
	out := t.Clone()
	out.Index = index.Clone()
	return out
}

func (t *Table) String() string {
	if t == nil {
		return "<table nil>"
	}
	return fmt.Sprintf("<table index=%q rows=%d columns=[%s]>",
		t.Index.Name, t.Len(), strings.Join(t.ColumnNames(), ", "))
}

// FormatCell renders one cell for export. Missing cells render empty.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", val)
	case time.Duration:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = FormatCell(p)
		}
		return strings.Join(parts, ";")
	default:
		return fmt.Sprint(val)
	}
}
