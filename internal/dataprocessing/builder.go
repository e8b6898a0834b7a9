package dataprocessing

import (
	"sort"
	"strconv"
	"strings"

	"evedata/internal/container"
	"evedata/internal/table"
)

// positionCounterColumn is the canonical index column joining simultaneous
// readings across channels within a chain.
const positionCounterColumn = "PosCounter"

// buildChannelTable turns one leaf node into a typed, indexed channel table.
// It returns the leaf's resolved name (after all renaming rules), the table,
// and whether the table uses the canonical position-counter index; a group
// whose leaves disagree on the index cannot be joined.
func buildChannelTable(node *container.Node, groupPath string) (string, *table.Table, bool, error) {
	var tbl *table.Table
	defaultIndex := true

	if node.Kind == container.KindGroup {
		var err error
		tbl, err = buildArrayChannel(node)
		if err != nil {
			return "", nil, false, err
		}
	} else {
		tbl, defaultIndex = buildFlatChannel(node)
	}

	name := node.Name
	info := node.Attrs

	if strings.HasSuffix(groupPath, "/averagemeta") || strings.HasSuffix(groupPath, "/standarddev") {
		tbl = renameMetaGroupColumns(tbl, name, info)
	}

	if displayName, ok := info.Get("Name"); ok {
		if len(tbl.Columns) == 1 {
			// Single column: rename unconditionally.
			tbl = tbl.Rename(map[string]string{tbl.Columns[0].Name: displayName})
		} else {
			renames := map[string]string{name: displayName}
			if xmlID, ok := info.Get("XML-ID"); ok {
				renames[xmlID] = displayName
			}
			tbl = tbl.Rename(renames)
		}
		name = displayName
	}

	return name, tbl, defaultIndex, nil
}

// buildArrayChannel decodes a channel stored as a group of integer-keyed
// children, each holding one fixed-size array per scan position.
func buildArrayChannel(node *container.Node) (*table.Table, error) {
	type entry struct {
		pos  int64
		cell []any
	}
	entries := make([]entry, 0, len(node.Children))
	for _, child := range node.Children {
		pos, err := strconv.ParseInt(child.Name, 10, 64)
		if err != nil {
			return nil, parseErrorf(node.Name, "array channel key %q is not a position counter", child.Name)
		}
		if child.Kind != container.KindLeaf || child.Payload == nil {
			return nil, parseErrorf(node.Name, "array channel entry %q is not a dataset", child.Name)
		}
		entries = append(entries, entry{pos: pos, cell: child.Payload.Array})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].pos < entries[j].pos })

	index := table.Column{Kind: table.Int, Values: make([]any, len(entries))}
	col := table.Column{Name: node.Name, Kind: table.Array, Values: make([]any, len(entries))}
	for i, e := range entries {
		index.Values[i] = e.pos
		col.Values[i] = e.cell
	}
	return table.New(index, col), nil
}

// buildFlatChannel decodes a flat row-table leaf. The PosCounter column, or
// the first column when none is named so, becomes the index.
func buildFlatChannel(node *container.Node) (*table.Table, bool) {
	payload := node.Payload
	if len(payload.Columns) == 0 {
		// A bare array without named columns indexes itself and carries no
		// data; such leaves never join with their siblings.
		index := table.Column{Values: append([]any(nil), payload.Array...)}
		return table.New(index), false
	}

	indexPos := 0
	defaultIndex := false
	for i, c := range payload.Columns {
		if c.Name == positionCounterColumn {
			indexPos = i
			defaultIndex = true
			break
		}
	}

	indexCol := payload.Columns[indexPos]
	index := table.Column{
		Name:   indexCol.Name,
		Kind:   inferKind(indexCol.Values),
		Values: append([]any(nil), indexCol.Values...),
	}
	var cols []table.Column
	for i, c := range payload.Columns {
		if i == indexPos {
			continue
		}
		cols = append(cols, table.Column{
			Name:   c.Name,
			Kind:   inferKind(c.Values),
			Values: append([]any(nil), c.Values...),
		})
	}
	return table.New(index, cols...), defaultIndex
}

// renameMetaGroupColumns applies the naming rules special to averagemeta and
// standarddev groups: every column gets the channel name as prefix, and
// Count datasets hide the actual standard deviation behind a column named
// like the channel itself.
func renameMetaGroupColumns(tbl *table.Table, nodeName string, info container.Attributes) *table.Table {
	channel, ok := info.Get("Channel")
	if !ok {
		channel = channelPart(nodeName)
	}
	tbl = tbl.WithPrefix(channel + "_")

	if suffix, ok := nameSuffix(nodeName); ok && suffix == "Count" {
		// Known artifact of real files: the standard deviation hides in a
		// column named like the channel. Kept as a documented heuristic.
		tbl = tbl.Rename(map[string]string{
			channel + "_" + channel: channel + "_StandardDeviation",
		})
	}
	return tbl
}

// channelPart returns the node name up to its last double underscore.
func channelPart(name string) string {
	if i := strings.LastIndex(name, "__"); i >= 0 {
		return name[:i]
	}
	return name
}

// nameSuffix returns the part of the node name after its last double
// underscore, if any.
func nameSuffix(name string) (string, bool) {
	if i := strings.LastIndex(name, "__"); i >= 0 {
		return name[i+2:], true
	}
	return "", false
}

func inferKind(values []any) table.Kind {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64:
			return table.Int
		case float64:
			return table.Float
		case string:
			return table.String
		case []any:
			return table.Array
		default:
			return table.Float
		}
	}
	return table.Float
}
