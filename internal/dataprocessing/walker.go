package dataprocessing

import (
	"log/slog"

	"evedata/internal/container"
	"evedata/internal/table"
)

// GroupRecord is the normalized form of one group node: its own attributes,
// the channel tables of its leaf children (joined when they share the
// position-counter index), per-leaf metadata, and the recursively processed
// subgroups.
type GroupRecord struct {
	Info container.Attributes

	// Data holds the outer join of all leaf tables when every leaf in the
	// group uses the canonical position-counter index. Otherwise DataByName
	// keeps the per-leaf tables and Data is nil.
	Data       *table.Table
	DataByName map[string]*table.Table
	// DataNames preserves the order in which leaf tables were built.
	DataNames []string

	Metadata map[string]container.Attributes
	Children map[string]*GroupRecord
}

// Child returns the named subgroup record.
func (g *GroupRecord) Child(name string) (*GroupRecord, bool) {
	rec, ok := g.Children[name]
	return rec, ok
}

// Walker recursively classifies and decodes raw nodes into GroupRecords.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a walker. A nil logger falls back to slog.Default.
func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{logger: logger}
}

// Walk processes the given group node and everything below it.
func (w *Walker) Walk(node *container.Node) (*GroupRecord, error) {
	return w.walk(node, "")
}

func (w *Walker) walk(node *container.Node, path string) (*GroupRecord, error) {
	rec := &GroupRecord{
		Info:     node.Attrs.Clone(),
		Metadata: map[string]container.Attributes{},
		Children: map[string]*GroupRecord{},
	}

	var tables []*table.Table
	byName := map[string]*table.Table{}
	var names []string
	joinable := true

	for _, child := range node.Children {
		childPath := path + "/" + child.Name
		switch {
		case child.Kind == container.KindLeaf && child.Payload == nil:
			// Neither a decodable dataset nor a group; known to occur in
			// files written by old EVE versions.
			w.logger.Warn("skipping unrecognized node",
				slog.String("node", childPath))

		case child.Kind == container.KindLeaf || child.Attrs.Has("XML-ID"):
			name, tbl, defaultIndex, err := buildChannelTable(child, path)
			if err != nil {
				return nil, err
			}
			if !defaultIndex {
				joinable = false
			}
			if _, exists := byName[name]; exists {
				// Later leaves overwrite earlier ones on resolved-name
				// collision; recoverable by design.
				w.logger.Debug("channel name collision, keeping later table",
					slog.String("node", childPath), slog.String("name", name))
			} else {
				names = append(names, name)
			}
			byName[name] = tbl
			rec.Metadata[name] = child.Attrs.Clone()

		default:
			sub, err := w.walk(child, childPath)
			if err != nil {
				return nil, err
			}
			rec.Children[child.Name] = sub
		}
	}

	if len(names) == 0 {
		return rec, nil
	}
	rec.DataNames = names
	if joinable {
		for _, n := range names {
			tables = append(tables, byName[n])
		}
		rec.Data = tables[0].OuterJoin(tables[1:]...)
	} else {
		rec.DataByName = byName
	}
	return rec, nil
}
