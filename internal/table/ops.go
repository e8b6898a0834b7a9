package table

import (
	"fmt"
	"sort"
	"time"
)

// Rename returns a copy of the table with columns renamed according to the
// mapping. Names absent from the mapping are kept. The index is untouched.
func (t *Table) Rename(mapping map[string]string) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		if newName, ok := mapping[c.Name]; ok {
			out.Columns[i].Name = newName
		}
	}
	return out
}

// WithSuffix returns a copy with the suffix appended to every column name.
func (t *Table) WithSuffix(suffix string) *Table {
	out := t.Clone()
	for i := range out.Columns {
		out.Columns[i].Name += suffix
	}
	return out
}

// WithPrefix returns a copy with the prefix prepended to every column name.
func (t *Table) WithPrefix(prefix string) *Table {
	out := t.Clone()
	for i := range out.Columns {
		out.Columns[i].Name = prefix + out.Columns[i].Name
	}
	return out
}

// Transform returns a copy with the named column's cells mapped through fn
// and its kind set. Missing cells stay missing.
func (t *Table) Transform(name string, kind Kind, fn func(any) any) *Table {
	out := t.Clone()
	for i, c := range out.Columns {
		if c.Name != name {
			continue
		}
		out.Columns[i].Kind = kind
		for j, v := range c.Values {
			if v != nil {
				out.Columns[i].Values[j] = fn(v)
			}
		}
	}
	return out
}

// positions maps each index value to the row positions where it occurs, in
// order. Index values need not be unique; joins align the i-th occurrence on
// one side with the i-th occurrence on the other.
func positions(idx Column) map[any][]int {
	pos := make(map[any][]int, len(idx.Values))
	for i, v := range idx.Values {
		pos[v] = append(pos[v], i)
	}
	return pos
}

// OuterJoin joins the other tables onto t over the shared index. The result
// index is the sorted union of all index values, each value repeated as
// often as its largest occurrence count on any side. Cells without a
// matching row are missing.
func (t *Table) OuterJoin(others ...*Table) *Table {
	out := t.Clone()
	for _, o := range others {
		if o == nil {
			continue
		}
		out = outerJoinPair(out, o)
	}
	return out
}

func outerJoinPair(left, right *Table) *Table {
	lpos := positions(left.Index)
	rpos := positions(right.Index)

	keys := make([]any, 0, len(lpos)+len(rpos))
	for k := range lpos {
		keys = append(keys, k)
	}
	for k := range rpos {
		if _, seen := lpos[k]; !seen {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return compareValues(keys[i], keys[j]) < 0 })

	indexName := left.Index.Name
	if indexName == "" {
		indexName = right.Index.Name
	}
	indexKind := left.Index.Kind
	if len(left.Index.Values) == 0 {
		indexKind = right.Index.Kind
	}

	var indexValues []any
	var leftRows, rightRows []int // -1 marks no source row
	for _, k := range keys {
		l, r := lpos[k], rpos[k]
		n := len(l)
		if len(r) > n {
			n = len(r)
		}
		for i := 0; i < n; i++ {
			indexValues = append(indexValues, k)
			leftRows = append(leftRows, rowAt(l, i))
			rightRows = append(rightRows, rowAt(r, i))
		}
	}

	return assembleJoin(
		Column{Name: indexName, Kind: indexKind, Values: indexValues},
		left, leftRows, right, rightRows)
}

// LeftJoin joins the other table onto t, keeping t's rows and order. Each
// left row picks up the matching occurrence from the other table, or missing
// cells if there is none.
func (t *Table) LeftJoin(other *Table) *Table {
	if other == nil {
		return t.Clone()
	}
	rpos := positions(other.Index)
	occurrence := map[any]int{}

	leftRows := make([]int, t.Len())
	rightRows := make([]int, t.Len())
	for i, v := range t.Index.Values {
		leftRows[i] = i
		rightRows[i] = rowAt(rpos[v], occurrence[v])
		occurrence[v]++
	}
	return assembleJoin(t.Index.Clone(), t, leftRows, other, rightRows)
}

func rowAt(rows []int, i int) int {
	if i < len(rows) {
		return rows[i]
	}
	return -1
}

func assembleJoin(index Column, left *Table, leftRows []int, right *Table, rightRows []int) *Table {
	out := &Table{Index: index}
	out.Columns = append(out.Columns, gatherColumns(left.Columns, leftRows)...)
	out.Columns = append(out.Columns, gatherColumns(right.Columns, rightRows)...)
	return out
}

func gatherColumns(cols []Column, rows []int) []Column {
	out := make([]Column, 0, len(cols))
	for _, c := range cols {
		values := make([]any, len(rows))
		for i, r := range rows {
			if r >= 0 {
				values[i] = c.Values[r]
			}
		}
		out = append(out, Column{Name: c.Name, Kind: c.Kind, Values: values})
	}
	return out
}

// ForwardFill returns a copy with missing cells in the named columns
// replaced by the last preceding non-missing value.
func (t *Table) ForwardFill(names ...string) *Table {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	out := t.Clone()
	for i, c := range out.Columns {
		if !wanted[c.Name] {
			continue
		}
		var last any
		for j, v := range c.Values {
			if v != nil {
				last = v
			} else if last != nil {
				out.Columns[i].Values[j] = last
			}
		}
	}
	return out
}

// DeduplicateIndex returns a copy keeping only the first row for each index
// value.
func (t *Table) DeduplicateIndex() *Table {
	seen := make(map[any]bool, t.Len())
	var keep []int
	for i, v := range t.Index.Values {
		if !seen[v] {
			seen[v] = true
			keep = append(keep, i)
		}
	}
	if len(keep) == t.Len() {
		return t.Clone()
	}
	index := Column{Name: t.Index.Name, Kind: t.Index.Kind, Values: make([]any, len(keep))}
	for i, r := range keep {
		index.Values[i] = t.Index.Values[r]
	}
	out := &Table{Index: index, Columns: gatherColumns(t.Columns, keep)}
	return out
}

// compareValues orders index values of the handful of types indexes carry.
// Mixed types fall back to string ordering so sorting stays total.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	}
	as, bs := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}
