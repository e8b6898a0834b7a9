package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes(t *testing.T) {
	t.Run("get returns first value", func(t *testing.T) {
		attrs := Attributes{"unit": {"mA", "ignored"}}
		val, ok := attrs.Get("unit")
		require.True(t, ok)
		assert.Equal(t, "mA", val)
	})

	t.Run("get on missing key", func(t *testing.T) {
		attrs := Attributes{}
		_, ok := attrs.Get("unit")
		assert.False(t, ok)
	})

	t.Run("pop removes the entry", func(t *testing.T) {
		attrs := Attributes{"Name": {"Counter"}}
		val, ok := attrs.Pop("Name")
		require.True(t, ok)
		assert.Equal(t, "Counter", val)
		assert.False(t, attrs.Has("Name"))
	})

	t.Run("pop default on missing key", func(t *testing.T) {
		attrs := Attributes{}
		assert.Equal(t, "1.0", attrs.PopDefault("EVEH5Version", "1.0"))
	})

	t.Run("clone is independent", func(t *testing.T) {
		attrs := Attributes{"Name": {"Counter"}}
		clone := attrs.Clone()
		clone.Pop("Name")
		assert.True(t, attrs.Has("Name"))
	})
}

func TestNodeChild(t *testing.T) {
	root := NewGroup("c1", nil,
		NewGroup("default", nil),
		NewLeaf("meta", nil, &Payload{}))

	child, ok := root.Child("default")
	require.True(t, ok)
	assert.Equal(t, KindGroup, child.Kind)

	_, ok = root.Child("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"default", "meta"}, root.ChildNames())
}

func TestSortChildren(t *testing.T) {
	root := NewGroup("root", nil,
		NewGroup("device", nil),
		NewGroup("c1", nil),
		NewGroup("meta", nil))
	root.SortChildren()
	assert.Equal(t, []string{"c1", "device", "meta"}, root.ChildNames())
}

func TestDecodeLatin1(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"plain ascii untouched", "Counter", "Counter"},
		{"latin-1 micro sign", "\xb5m", "µm"},
		{"latin-1 degree sign", "\xb0C", "°C"},
		{"umlaut", "Z\xe4hler", "Zähler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeLatin1(tt.raw))
		})
	}
}

func TestDecodeAttrValue(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected []string
	}{
		{"string", "Counter", []string{"Counter"}},
		{"byte slice with latin-1", []byte("\xb5A"), []string{"µA"}},
		{"string slice", []string{"a", "b"}, []string{"a", "b"}},
		{"nested byte slices", [][]byte{[]byte("x"), []byte("y")}, []string{"x", "y"}},
		{"number stringified", int32(7), []string{"7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeAttrValue(tt.raw))
		})
	}
}
