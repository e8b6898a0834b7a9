package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type compoundField struct {
	Name string
	Val  any
}

func TestDecodePayloadFieldRows(t *testing.T) {
	rows := [][]compoundField{
		{{Name: "PosCounter", Val: int32(1)}, {Name: "Counter1", Val: float32(1.5)}},
		{{Name: "PosCounter", Val: int32(2)}, {Name: "Counter1", Val: float32(2.5)}},
	}

	payload := decodePayload(rows)

	require.Len(t, payload.Columns, 2)
	assert.Equal(t, "PosCounter", payload.Columns[0].Name)
	assert.Equal(t, []any{int64(1), int64(2)}, payload.Columns[0].Values)
	assert.Equal(t, "Counter1", payload.Columns[1].Name)
	assert.InDelta(t, 1.5, payload.Columns[1].Values[0].(float64), 1e-9)
}

func TestDecodePayloadStructRows(t *testing.T) {
	rows := []struct {
		PosCounter int32
		Counter1   float64
	}{
		{PosCounter: 1, Counter1: 10.0},
		{PosCounter: 2, Counter1: 20.0},
	}

	payload := decodePayload(rows)

	require.Len(t, payload.Columns, 2)
	assert.Equal(t, []any{int64(1), int64(2)}, payload.Columns[0].Values)
	assert.Equal(t, []any{10.0, 20.0}, payload.Columns[1].Values)
}

func TestDecodePayloadPlainSlice(t *testing.T) {
	payload := decodePayload([]float32{1.5, 2.5})

	assert.Empty(t, payload.Columns)
	require.Len(t, payload.Array, 2)
	assert.InDelta(t, 1.5, payload.Array[0].(float64), 1e-9)
}

func TestDecodePayloadArrayRows(t *testing.T) {
	payload := decodePayload([][]int16{{1, 2}, {3, 4}})

	require.Len(t, payload.Array, 2)
	assert.Equal(t, []any{int64(1), int64(2)}, payload.Array[0])
	assert.Equal(t, []any{int64(3), int64(4)}, payload.Array[1])
}

func TestDecodePayloadScalar(t *testing.T) {
	payload := decodePayload(int16(7))
	assert.Equal(t, []any{int64(7)}, payload.Array)

	assert.Empty(t, decodePayload(nil).Columns)
	assert.Empty(t, decodePayload(nil).Array)
}

func TestDecodeScalar(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected any
	}{
		{"int8", int8(1), int64(1)},
		{"uint32", uint32(7), int64(7)},
		{"float32", float32(2), 2.0},
		{"float64 kept", 2.5, 2.5},
		{"string kept", "x", "x"},
		{"bytes to string", []byte("abc"), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeScalar(tt.raw))
		})
	}
}
