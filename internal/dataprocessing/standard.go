package dataprocessing

import (
	"log/slog"

	"evedata/internal/container"
	"evedata/internal/table"
)

// StandardOptions configures the simplified single-chain view.
type StandardOptions struct {
	// IgnoreTooManySnapshots accepts snapshot columns with more than two
	// values, dropping everything beyond the second, instead of failing.
	IgnoreTooManySnapshots bool
}

// StandardMeasurement is the simplified view of the common scan sequence
// (save motors, save detectors, scan, save detectors): one before/after
// snapshot pair per device plus the deduplicated, motor-filled scan table.
type StandardMeasurement struct {
	*Measurement

	SnapshotBefore map[string]any
	SnapshotAfter  map[string]any
	Data           *table.Table
	Metadata       map[string]container.Attributes
}

// StandardFromFile parses the container at path into the simplified
// single-chain view. Callers seeing a SnapshotCardinalityError are expected
// to fall back to MeasurementFromFile.
func StandardFromFile(path string, opts StandardOptions) (*StandardMeasurement, error) {
	return NewAssembler(nil).StandardFromFile(path, opts)
}

// StandardFromFile parses the container at path into the simplified
// single-chain view.
func (a *Assembler) StandardFromFile(path string, opts StandardOptions) (*StandardMeasurement, error) {
	m, err := a.MeasurementFromFile(path)
	if err != nil {
		return nil, err
	}
	return a.AssembleStandard(m, opts)
}

// AssembleStandard derives the simplified view from an assembled
// measurement, using its selected chain.
func (a *Assembler) AssembleStandard(m *Measurement, opts StandardOptions) (*StandardMeasurement, error) {
	if len(m.Chains) > 1 {
		a.logger.Warn("file contains more than one chain, the standard view only covers the selected one",
			slog.String("source", m.Source),
			slog.Int("chains", len(m.Chains)))
	}
	chain, ok := m.SelectedChain()
	if !ok {
		return nil, parseErrorf(m.Source, "file contains no chains")
	}

	sm := &StandardMeasurement{
		Measurement:    m,
		SnapshotBefore: map[string]any{},
		SnapshotAfter:  map[string]any{},
	}

	if chain.SnapshotData != nil {
		for _, col := range chain.SnapshotData.Columns {
			if col.Name == "PosCountTimer" {
				continue
			}
			values := col.NonMissing()
			switch {
			case len(values) == 1:
				sm.SnapshotBefore[col.Name] = values[0]
			case len(values) == 2 || (opts.IgnoreTooManySnapshots && len(values) > 2):
				sm.SnapshotBefore[col.Name] = values[0]
				sm.SnapshotAfter[col.Name] = values[1]
			default:
				return nil, &SnapshotCardinalityError{Column: col.Name, Count: len(values)}
			}
		}
	}

	sm.Data = chain.StandardData.
		ForwardFill(chain.StandardMotors...).
		DeduplicateIndex()
	sm.Metadata = chain.StandardMetadata
	return sm, nil
}
