package container

import (
	"fmt"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
)

// Open reads the hierarchical measurement container at path and returns its
// root node. The whole tree is materialized in one pass; the file handle is
// closed before returning.
func Open(path string) (*Node, error) {
	group, err := hdf5.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %q: %w", path, err)
	}
	defer group.Close()
	return FromGroup(group)
}

// FromGroup converts an already-open container group into a node tree.
// Exposed separately so sources other than on-disk files can be parsed.
func FromGroup(group api.Group) (*Node, error) {
	return fromGroup("/", group)
}

func fromGroup(name string, group api.Group) (*Node, error) {
	node := NewGroup(name, decodeAttributes(group.Attributes()))

	for _, sub := range group.ListSubgroups() {
		child, err := group.GetGroup(sub)
		if err != nil {
			return nil, fmt.Errorf("failed to open group %q: %w", sub, err)
		}
		childNode, err := fromGroup(sub, child)
		child.Close()
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, childNode)
	}

	for _, varName := range group.ListVariables() {
		variable, err := group.GetVariable(varName)
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset %q: %w", varName, err)
		}
		leaf := NewLeaf(varName, decodeAttributes(variable.Attributes), decodePayload(variable.Values))
		node.Children = append(node.Children, leaf)
	}

	node.SortChildren()
	return node, nil
}

func decodeAttributes(attrs api.AttributeMap) Attributes {
	out := Attributes{}
	if attrs == nil {
		return out
	}
	for _, key := range attrs.Keys() {
		raw, ok := attrs.Get(key)
		if !ok {
			continue
		}
		out[key] = decodeAttrValue(raw)
	}
	return out
}

// decodePayload normalizes the library's reflection-based dataset values
// into payload columns. Compound (row-table) datasets arrive as a slice of
// rows, each row a slice of name/value fields or a struct; plain datasets
// arrive as typed slices.
func decodePayload(values any) *Payload {
	payload := &Payload{}
	if values == nil {
		return payload
	}
	rv := reflect.ValueOf(values)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		payload.Array = []any{decodeScalar(values)}
		return payload
	}
	if rv.Len() == 0 {
		return payload
	}

	first := rv.Index(0)
	for first.Kind() == reflect.Interface {
		first = first.Elem()
	}
	switch {
	case isFieldRow(first):
		payload.Columns = decodeFieldRows(rv)
	case first.Kind() == reflect.Struct:
		payload.Columns = decodeStructRows(rv)
	case first.Kind() == reflect.Slice || first.Kind() == reflect.Array:
		// Fixed-size array dataset: one cell per element row.
		for i := 0; i < rv.Len(); i++ {
			payload.Array = append(payload.Array, decodeArrayCell(rv.Index(i)))
		}
	default:
		for i := 0; i < rv.Len(); i++ {
			payload.Array = append(payload.Array, decodeScalar(rv.Index(i).Interface()))
		}
	}
	return payload
}

// isFieldRow detects the compound-row shape: a slice of structs carrying
// Name/Val pairs, one per column.
func isFieldRow(v reflect.Value) bool {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return false
	}
	if v.Len() == 0 {
		return false
	}
	elem := v.Index(0)
	if elem.Kind() != reflect.Struct {
		return false
	}
	return elem.FieldByName("Name").IsValid() && elem.FieldByName("Val").IsValid()
}

func decodeFieldRows(rows reflect.Value) []PayloadColumn {
	var columns []PayloadColumn
	index := map[string]int{}
	for i := 0; i < rows.Len(); i++ {
		row := rows.Index(i)
		for row.Kind() == reflect.Interface {
			row = row.Elem()
		}
		for j := 0; j < row.Len(); j++ {
			field := row.Index(j)
			name := field.FieldByName("Name").String()
			val := decodeScalar(field.FieldByName("Val").Interface())
			pos, ok := index[name]
			if !ok {
				pos = len(columns)
				index[name] = pos
				columns = append(columns, PayloadColumn{Name: name, Values: make([]any, rows.Len())})
			}
			columns[pos].Values[i] = val
		}
	}
	return columns
}

func decodeStructRows(rows reflect.Value) []PayloadColumn {
	elemType := rows.Index(0).Type()
	columns := make([]PayloadColumn, 0, elemType.NumField())
	for f := 0; f < elemType.NumField(); f++ {
		col := PayloadColumn{Name: elemType.Field(f).Name, Values: make([]any, rows.Len())}
		for i := 0; i < rows.Len(); i++ {
			col.Values[i] = decodeScalar(rows.Index(i).Field(f).Interface())
		}
		columns = append(columns, col)
	}
	return columns
}

func decodeArrayCell(v reflect.Value) []any {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = decodeScalar(v.Index(i).Interface())
	}
	return out
}

// decodeScalar collapses the zoo of numeric widths into int64/float64 and
// leaves strings as-is.
func decodeScalar(v any) any {
	switch val := v.(type) {
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return v
	}
}
