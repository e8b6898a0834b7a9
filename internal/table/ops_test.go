package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intIndex(name string, values ...int64) Column {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return Column{Name: name, Kind: Int, Values: cells}
}

func TestRenameKeepsUnmappedColumns(t *testing.T) {
	tbl := New(intIndex("idx", 1, 2),
		Column{Name: "a", Values: []any{1.0, 2.0}},
		Column{Name: "b", Values: []any{3.0, 4.0}})

	renamed := tbl.Rename(map[string]string{"a": "x"})
	assert.Equal(t, []string{"x", "b"}, renamed.ColumnNames())
	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
}

func TestWithSuffixAndPrefix(t *testing.T) {
	tbl := New(intIndex("idx", 1),
		Column{Name: "Counter", Values: []any{1.0}})

	assert.Equal(t, []string{"Counter_norm"}, tbl.WithSuffix("_norm").ColumnNames())
	assert.Equal(t, []string{"Det_Counter"}, tbl.WithPrefix("Det_").ColumnNames())
}

func TestTransform(t *testing.T) {
	tbl := New(intIndex("idx", 1, 2, 3),
		Column{Name: "PosCountTimer", Kind: Int, Values: []any{int64(100), nil, int64(250)}})

	out := tbl.Transform("PosCountTimer", Duration, func(v any) any {
		return time.Duration(v.(int64)) * time.Millisecond
	})

	col, ok := out.Column("PosCountTimer")
	require.True(t, ok)
	assert.Equal(t, Duration, col.Kind)
	assert.Equal(t, 100*time.Millisecond, col.Values[0])
	assert.Nil(t, col.Values[1], "missing cells must stay missing")
	assert.Equal(t, 250*time.Millisecond, col.Values[2])

	orig, _ := tbl.Column("PosCountTimer")
	assert.Equal(t, int64(100), orig.Values[0], "transform must not mutate the source")
}

func TestOuterJoin(t *testing.T) {
	tests := []struct {
		name          string
		left          *Table
		right         *Table
		expectedIndex []any
		expectedA     []any
		expectedB     []any
	}{
		{
			name: "disjoint indexes union sorted",
			left: New(intIndex("idx", 1, 3),
				Column{Name: "a", Values: []any{10.0, 30.0}}),
			right: New(intIndex("idx", 2),
				Column{Name: "b", Values: []any{20.0}}),
			expectedIndex: []any{int64(1), int64(2), int64(3)},
			expectedA:     []any{10.0, nil, 30.0},
			expectedB:     []any{nil, 20.0, nil},
		},
		{
			name: "shared keys aligned",
			left: New(intIndex("idx", 1, 2),
				Column{Name: "a", Values: []any{10.0, 20.0}}),
			right: New(intIndex("idx", 2, 1),
				Column{Name: "b", Values: []any{2.0, 1.0}}),
			expectedIndex: []any{int64(1), int64(2)},
			expectedA:     []any{10.0, 20.0},
			expectedB:     []any{1.0, 2.0},
		},
		{
			name: "duplicate keys align by occurrence",
			left: New(intIndex("idx", 1, 1),
				Column{Name: "a", Values: []any{10.0, 11.0}}),
			right: New(intIndex("idx", 1),
				Column{Name: "b", Values: []any{100.0}}),
			expectedIndex: []any{int64(1), int64(1)},
			expectedA:     []any{10.0, 11.0},
			expectedB:     []any{100.0, nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.left.OuterJoin(tt.right)
			assert.Equal(t, tt.expectedIndex, out.Index.Values)

			a, ok := out.Column("a")
			require.True(t, ok)
			assert.Equal(t, tt.expectedA, a.Values)

			b, ok := out.Column("b")
			require.True(t, ok)
			assert.Equal(t, tt.expectedB, b.Values)
		})
	}
}

func TestOuterJoinSkipsNil(t *testing.T) {
	tbl := New(intIndex("idx", 1), Column{Name: "a", Values: []any{1.0}})
	out := tbl.OuterJoin(nil)
	assert.Equal(t, tbl.Index.Values, out.Index.Values)
	assert.Equal(t, tbl.ColumnNames(), out.ColumnNames())
}

func TestLeftJoin(t *testing.T) {
	left := New(intIndex("idx", 3, 1, 2),
		Column{Name: "a", Values: []any{30.0, 10.0, 20.0}})
	right := New(intIndex("idx", 1, 3),
		Column{Name: "b", Values: []any{1.0, 3.0}})

	out := left.LeftJoin(right)

	assert.Equal(t, []any{int64(3), int64(1), int64(2)}, out.Index.Values,
		"left join keeps the left row order")
	b, ok := out.Column("b")
	require.True(t, ok)
	assert.Equal(t, []any{3.0, 1.0, nil}, b.Values)
}

func TestForwardFill(t *testing.T) {
	tbl := New(intIndex("idx", 1, 2, 3, 4),
		Column{Name: "motor", Values: []any{1.5, nil, nil, 2.5}},
		Column{Name: "sensor", Values: []any{9.0, nil, 8.0, nil}})

	out := tbl.ForwardFill("motor")

	motor, _ := out.Column("motor")
	assert.Equal(t, []any{1.5, 1.5, 1.5, 2.5}, motor.Values)
	sensor, _ := out.Column("sensor")
	assert.Equal(t, []any{9.0, nil, 8.0, nil}, sensor.Values, "unnamed columns untouched")
}

func TestForwardFillLeavesLeadingMissing(t *testing.T) {
	tbl := New(intIndex("idx", 1, 2),
		Column{Name: "motor", Values: []any{nil, 1.0}})
	out := tbl.ForwardFill("motor")
	motor, _ := out.Column("motor")
	assert.Equal(t, []any{nil, 1.0}, motor.Values)
}

func TestDeduplicateIndex(t *testing.T) {
	tbl := New(intIndex("idx", 1, 2, 1, 3),
		Column{Name: "a", Values: []any{10.0, 20.0, 11.0, 30.0}})

	out := tbl.DeduplicateIndex()

	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, out.Index.Values)
	a, _ := out.Column("a")
	assert.Equal(t, []any{10.0, 20.0, 30.0}, a.Values, "first occurrence wins")
}

func TestForwardFillDeduplicateIdempotent(t *testing.T) {
	tbl := New(intIndex("idx", 1, 1, 2),
		Column{Name: "motor", Values: []any{1.0, nil, nil}})

	once := tbl.ForwardFill("motor").DeduplicateIndex()
	twice := once.ForwardFill("motor").DeduplicateIndex()

	assert.Equal(t, once.Index.Values, twice.Index.Values)
	a1, _ := once.Column("motor")
	a2, _ := twice.Column("motor")
	assert.Equal(t, a1.Values, a2.Values)
}

func TestCompareValues(t *testing.T) {
	early := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	tests := []struct {
		name     string
		a, b     any
		expected int
	}{
		{"int less", int64(1), int64(2), -1},
		{"int equal", int64(2), int64(2), 0},
		{"float greater", 2.5, 1.5, 1},
		{"string", "a", "b", -1},
		{"time", early, late, -1},
		{"mixed falls back to string order", int64(10), "2", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareValues(tt.a, tt.b))
		})
	}
}
