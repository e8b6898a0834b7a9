package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evedata/internal/table"
)

func measurementWithSnapshot(snapshot *table.Table) *Measurement {
	standard := table.New(
		table.Column{Name: "PosCounter", Kind: table.Int, Values: []any{int64(1), int64(2), int64(3)}},
		table.Column{Name: "Motor", Kind: table.Float, Values: []any{1.0, nil, 3.0}},
		table.Column{Name: "Counter", Kind: table.Float, Values: []any{10.0, 20.0, 30.0}})
	return &Measurement{
		Source: "scan.h5",
		Chains: []*Chain{{
			StandardData:   standard,
			SnapshotData:   snapshot,
			StandardMotors: []string{"Motor"},
		}},
		SelectedChainIndex: 1,
	}
}

func snapshotTable(name string, values ...any) *table.Table {
	index := make([]any, len(values))
	for i := range values {
		index[i] = int64(i + 1)
	}
	return table.New(
		table.Column{Name: "PosCounter", Kind: table.Int, Values: index},
		table.Column{Name: name, Kind: table.Float, Values: values})
}

func TestAssembleStandardSnapshots(t *testing.T) {
	tests := []struct {
		name           string
		values         []any
		opts           StandardOptions
		expectedBefore any
		expectedAfter  any
		wantErr        bool
	}{
		{
			name:           "single value goes to before",
			values:         []any{250.0},
			expectedBefore: 250.0,
		},
		{
			name:           "two values split into before and after",
			values:         []any{250.0, 249.5},
			expectedBefore: 250.0,
			expectedAfter:  249.5,
		},
		{
			name:    "three values fail",
			values:  []any{250.0, 249.5, 249.0},
			wantErr: true,
		},
		{
			name:           "three values accepted when configured",
			values:         []any{250.0, 249.5, 249.0},
			opts:           StandardOptions{IgnoreTooManySnapshots: true},
			expectedBefore: 250.0,
			expectedAfter:  249.5,
		},
		{
			name:    "no values fail",
			values:  []any{nil},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := measurementWithSnapshot(snapshotTable("Current", tt.values...))
			sm, err := NewAssembler(nil).AssembleStandard(m, tt.opts)

			if tt.wantErr {
				var cardErr *SnapshotCardinalityError
				require.True(t, errors.As(err, &cardErr))
				assert.Equal(t, "Current", cardErr.Column)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedBefore, sm.SnapshotBefore["Current"])
			if tt.expectedAfter != nil {
				assert.Equal(t, tt.expectedAfter, sm.SnapshotAfter["Current"])
			} else {
				assert.NotContains(t, sm.SnapshotAfter, "Current")
			}
		})
	}
}

func TestAssembleStandardSkipsPosCountTimer(t *testing.T) {
	snapshot := table.New(
		table.Column{Name: "PosCounter", Kind: table.Int, Values: []any{int64(1), int64(2), int64(3)}},
		table.Column{Name: "PosCountTimer", Kind: table.Int, Values: []any{int64(1), int64(2), int64(3)}},
		table.Column{Name: "Current", Kind: table.Float, Values: []any{250.0, nil, nil}})

	sm, err := NewAssembler(nil).AssembleStandard(measurementWithSnapshot(snapshot), StandardOptions{})
	require.NoError(t, err)
	assert.NotContains(t, sm.SnapshotBefore, "PosCountTimer")
	assert.Equal(t, 250.0, sm.SnapshotBefore["Current"])
}

func TestAssembleStandardWithoutSnapshotSection(t *testing.T) {
	// v1 files have no snapshots; the standard view still works
	sm, err := NewAssembler(nil).AssembleStandard(measurementWithSnapshot(nil), StandardOptions{})
	require.NoError(t, err)
	assert.NotNil(t, sm.SnapshotBefore)
	assert.Empty(t, sm.SnapshotBefore)
	assert.NotNil(t, sm.SnapshotAfter)
	assert.Empty(t, sm.SnapshotAfter)
}

func TestAssembleStandardData(t *testing.T) {
	sm, err := NewAssembler(nil).AssembleStandard(measurementWithSnapshot(nil), StandardOptions{})
	require.NoError(t, err)

	motor, ok := sm.Data.Column("Motor")
	require.True(t, ok)
	assert.Equal(t, []any{1.0, 1.0, 3.0}, motor.Values, "motor positions are forward filled")

	counter, ok := sm.Data.Column("Counter")
	require.True(t, ok)
	assert.Equal(t, []any{10.0, 20.0, 30.0}, counter.Values, "sensor readings are not filled")
}

func TestAssembleStandardDeduplicatesIndex(t *testing.T) {
	standard := table.New(
		table.Column{Name: "PosCounter", Kind: table.Int, Values: []any{int64(1), int64(1), int64(2)}},
		table.Column{Name: "Counter", Kind: table.Float, Values: []any{10.0, 11.0, 20.0}})
	m := &Measurement{
		Source:             "scan.h5",
		Chains:             []*Chain{{StandardData: standard}},
		SelectedChainIndex: 1,
	}

	sm, err := NewAssembler(nil).AssembleStandard(m, StandardOptions{})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, sm.Data.Index.Values)
}

func TestAssembleStandardNoChains(t *testing.T) {
	m := &Measurement{Source: "scan.h5"}
	_, err := NewAssembler(nil).AssembleStandard(m, StandardOptions{})

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Msg, "no chains")
}
