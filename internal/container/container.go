package container

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Kind distinguishes the two node shapes found in EVE measurement files.
type Kind int

const (
	// KindGroup is a node with named children.
	KindGroup Kind = iota
	// KindLeaf is a dataset node carrying a payload.
	KindLeaf
)

// Attributes holds the decoded attributes of a node. Every attribute is
// stored as one or more Latin-1 decoded strings, matching how EVE-CSS
// writes them.
type Attributes map[string][]string

// Get returns the first value of the named attribute.
func (a Attributes) Get(key string) (string, bool) {
	vals, ok := a[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Has reports whether the named attribute is present.
func (a Attributes) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// Clone returns an independent copy so assemblers can pop entries without
// touching the source tree.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		vals := make([]string, len(v))
		copy(vals, v)
		out[k] = vals
	}
	return out
}

// Pop removes the named attribute and returns its first value.
func (a Attributes) Pop(key string) (string, bool) {
	val, ok := a.Get(key)
	if ok {
		delete(a, key)
	}
	return val, ok
}

// PopDefault removes the named attribute, returning def if it is absent.
func (a Attributes) PopDefault(key, def string) string {
	if val, ok := a.Pop(key); ok {
		return val
	}
	return def
}

// PayloadColumn is one named column of a flat tabular leaf. Values hold
// decoded cells; strings are already text, numbers are int64 or float64.
type PayloadColumn struct {
	Name   string
	Values []any
}

// Payload is the decoded content of a leaf dataset. Flat row-tables fill
// Columns; bare array datasets fill Array instead.
type Payload struct {
	Columns []PayloadColumn
	Array   []any
}

// Node is one node of the raw measurement tree.
type Node struct {
	Name     string
	Kind     Kind
	Attrs    Attributes
	Children []*Node
	Payload  *Payload
}

// NewGroup builds a group node. Used by the reader and by tests that
// construct synthetic trees.
func NewGroup(name string, attrs Attributes, children ...*Node) *Node {
	if attrs == nil {
		attrs = Attributes{}
	}
	return &Node{Name: name, Kind: KindGroup, Attrs: attrs, Children: children}
}

// NewLeaf builds a leaf node.
func NewLeaf(name string, attrs Attributes, payload *Payload) *Node {
	if attrs == nil {
		attrs = Attributes{}
	}
	return &Node{Name: name, Kind: KindLeaf, Attrs: attrs, Payload: payload}
}

// Child returns the named child of a group node.
func (n *Node) Child(name string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ChildNames returns the child names in tree order.
func (n *Node) ChildNames() []string {
	names := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		names = append(names, c.Name)
	}
	return names
}

// SortChildren orders children by name. The reader calls this so synthetic
// trees and trees read from disk walk in the same order.
func (n *Node) SortChildren() {
	sort.Slice(n.Children, func(i, j int) bool {
		return n.Children[i].Name < n.Children[j].Name
	})
}

func (n *Node) String() string {
	kind := "group"
	if n.Kind == KindLeaf {
		kind = "leaf"
	}
	return fmt.Sprintf("<%s %q children=%d>", kind, n.Name, len(n.Children))
}

// decodeLatin1 reinterprets the raw attribute bytes as Latin-1 text.
// The Latin-1 decoder maps every byte to a rune, so this cannot fail.
func decodeLatin1(raw string) string {
	if isASCII(raw) {
		return raw
	}
	out, err := charmap.ISO8859_1.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// decodeAttrValue normalizes one raw attribute value into its decoded
// string form(s).
func decodeAttrValue(raw any) []string {
	switch v := raw.(type) {
	case string:
		return []string{decodeLatin1(v)}
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = decodeLatin1(s)
		}
		return out
	case []byte:
		return []string{decodeLatin1(string(v))}
	case [][]byte:
		out := make([]string, len(v))
		for i, b := range v {
			out[i] = decodeLatin1(string(b))
		}
		return out
	default:
		rv := reflect.ValueOf(raw)
		if rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
			out := make([]string, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				out[i] = decodeAttrValue(rv.Index(i).Interface())[0]
			}
			return out
		}
		return []string{strings.TrimSpace(fmt.Sprint(v))}
	}
}
