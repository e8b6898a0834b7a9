package exporter

import (
	"fmt"
	"log/slog"

	"evedata/internal/dataprocessing"
	"evedata/internal/table"
)

// PreferredPair is the axis/channel column pair a scan recommends for
// plotting, resolved against the actual data.
type PreferredPair struct {
	AxisName    string
	ChannelName string
	Axis        []any
	Channel     []any
}

// ResolvePreferredPair picks the preferred axis and channel of the selected
// chain. A missing or unresolvable preference falls back to the index for
// the axis and the first data column for the channel, logging the
// substitution.
func ResolvePreferredPair(sm *dataprocessing.StandardMeasurement, logger *slog.Logger) (*PreferredPair, error) {
	if logger == nil {
		logger = slog.Default()
	}
	chain, ok := sm.SelectedChain()
	if !ok {
		return nil, fmt.Errorf("measurement %s has no chains", sm.Source)
	}
	data := sm.Data
	if data.IsEmpty() {
		return nil, fmt.Errorf("measurement %s has no data", sm.Source)
	}

	pair := &PreferredPair{}

	if col, ok := data.Column(chain.PreferredAxis); ok && chain.PreferredAxis != "" {
		pair.AxisName = col.Name
		pair.Axis = col.Values
	} else {
		logger.Warn("preferred axis not available, using the position counter",
			slog.String("source", sm.Source),
			slog.String("preferred_axis", chain.PreferredAxis))
		pair.AxisName = data.Index.Name
		pair.Axis = data.Index.Values
	}

	if col, ok := data.Column(chain.PreferredChannel); ok && chain.PreferredChannel != "" {
		pair.ChannelName = col.Name
		pair.Channel = col.Values
	} else {
		if len(data.Columns) == 0 {
			return nil, fmt.Errorf("measurement %s has no data columns", sm.Source)
		}
		first := data.Columns[0]
		logger.Warn("preferred channel not available, using the first data column",
			slog.String("source", sm.Source),
			slog.String("preferred_channel", chain.PreferredChannel),
			slog.String("substitute", first.Name))
		pair.ChannelName = first.Name
		pair.Channel = first.Values
	}

	return pair, nil
}

// WritePreferredPair exports the resolved pair as a two-column CSV file.
func (w *CSVWriter) WritePreferredPair(filePath string, sm *dataprocessing.StandardMeasurement) error {
	pair, err := ResolvePreferredPair(sm, w.logger)
	if err != nil {
		return err
	}

	stream, err := w.CreateStreamWriter(filePath, []string{pair.AxisName, pair.ChannelName})
	if err != nil {
		return err
	}
	for i := range pair.Axis {
		record := []string{table.FormatCell(pair.Axis[i]), ""}
		if i < len(pair.Channel) {
			record[1] = table.FormatCell(pair.Channel[i])
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return stream.Close()
}
