package dataprocessing

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"evedata/internal/container"
	"evedata/internal/table"
)

// Measurement is the fully assembled view of one measurement file: file
// attributes, all chains, and monitored-device tables. Immutable once
// assembled.
type Measurement struct {
	Source string
	Info   container.Attributes

	EveH5Version    float64
	EveVersion      string
	XMLVersion      string
	ApplicationName string
	Comment         string
	Location        string
	Start           *time.Time

	Chains []*Chain

	Monitor       map[string]*table.Table
	MonitorNames  []string
	MonitorJoined *table.Table

	// SelectedChainIndex is 1-based; 0 means the file has no chains.
	SelectedChainIndex int
}

// SelectedChain returns the chain the measurement currently points at.
func (m *Measurement) SelectedChain() (*Chain, bool) {
	if m.SelectedChainIndex < 1 || m.SelectedChainIndex > len(m.Chains) {
		return nil, false
	}
	return m.Chains[m.SelectedChainIndex-1], true
}

// Lookup resolves a named property with a documented fallback order: the
// measurement's own fields first, then the selected chain's. It replaces
// the dynamic attribute delegation of earlier viewers with an explicit
// accessor.
func (m *Measurement) Lookup(name string) (any, bool) {
	switch name {
	case "source":
		return m.Source, true
	case "eve_h5_version":
		return m.EveH5Version, true
	case "eve_version":
		return m.EveVersion, true
	case "xml_version":
		return m.XMLVersion, true
	case "application_name":
		return m.ApplicationName, true
	case "comment":
		return m.Comment, true
	case "location":
		return m.Location, true
	case "start":
		return m.Start, true
	case "monitor":
		return m.Monitor, true
	case "monitor_joined":
		return m.MonitorJoined, true
	}
	chain, ok := m.SelectedChain()
	if !ok {
		return nil, false
	}
	return chain.lookup(name)
}

func (c *Chain) lookup(name string) (any, bool) {
	switch name {
	case "start":
		return c.Start, true
	case "standard_data":
		return c.StandardData, true
	case "standard_metadata":
		return c.StandardMetadata, true
	case "snapshot_data":
		return c.SnapshotData, true
	case "snapshot_metadata":
		return c.SnapshotMetadata, true
	case "timestamp_data":
		return c.TimestampData, true
	case "timestamp_metadata":
		return c.TimestampMetadata, true
	case "units":
		return c.Units, true
	case "preferred_axis":
		return c.PreferredAxis, true
	case "preferred_channel":
		return c.PreferredChannel, true
	case "preferred_normalization_channel":
		return c.PreferredNormalizationChannel, true
	case "standard_motors":
		return c.StandardMotors, true
	case "standard_sensors":
		return c.StandardSensors, true
	case "snapshot_motors":
		return c.SnapshotMotors, true
	case "snapshot_sensors":
		return c.SnapshotSensors, true
	}
	return nil, false
}

// Assembler builds measurements from raw trees. A zero-value Assembler is
// not usable; construct it with NewAssembler.
type Assembler struct {
	logger *slog.Logger
	walker *Walker
}

// NewAssembler creates an assembler. A nil logger falls back to
// slog.Default.
func NewAssembler(logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{logger: logger, walker: NewWalker(logger)}
}

// MeasurementFromFile parses the measurement container at path into the
// full multi-chain view.
func MeasurementFromFile(path string) (*Measurement, error) {
	return NewAssembler(nil).MeasurementFromFile(path)
}

// MeasurementFromFile parses the measurement container at path into the
// full multi-chain view.
func (a *Assembler) MeasurementFromFile(path string) (*Measurement, error) {
	node, err := container.Open(path)
	if err != nil {
		return nil, &ParseError{Node: path, Msg: "cannot read container", Err: err}
	}
	root, err := a.walker.Walk(node)
	if err != nil {
		return nil, err
	}
	return a.AssembleMeasurement(root, path)
}

var chainNamePattern = regexp.MustCompile(`^c(\d+)$`)

// AssembleMeasurement aggregates a walked file record into a Measurement.
func (a *Assembler) AssembleMeasurement(root *GroupRecord, source string) (*Measurement, error) {
	info := root.Info.Clone()
	m := &Measurement{Source: source, Info: info}

	rawVersion := info.PopDefault("EVEH5Version", "1.0")
	version, err := strconv.ParseFloat(rawVersion, 64)
	if err != nil {
		return nil, parseErrorf(source, "unparseable EVEH5Version %q", rawVersion)
	}
	m.EveH5Version = version
	m.EveVersion = info.PopDefault("Version", "")
	m.XMLVersion = info.PopDefault("XMLversion", "")
	m.ApplicationName = info.PopDefault("Application", "")
	m.Comment = info.PopDefault("Comment", filepath.Base(source))
	m.Location = info.PopDefault("Location", "")
	if live, ok := info.Pop("Live-Comment"); ok {
		m.Comment = fmt.Sprintf("%s (live: %s)", m.Comment, live)
	}

	m.Start, err = popStartTime(info)
	if err != nil {
		return nil, err
	}

	for _, name := range chainNames(root) {
		chain, err := assembleChain(root.Children[name], m.EveH5Version, a.logger)
		if err != nil {
			return nil, err
		}
		m.Chains = append(m.Chains, chain)
	}

	if device, ok := root.Children["device"]; ok {
		m.Monitor = map[string]*table.Table{}
		for _, mon := range monitorTables(device) {
			tbl := mon.tbl
			if m.Start != nil && tbl.Index.Name == "mSecsSinceStart" {
				tbl = withAbsoluteTimeIndex(tbl, *m.Start)
			}
			m.Monitor[mon.name] = tbl
			m.MonitorNames = append(m.MonitorNames, mon.name)
		}
	}
	if len(m.MonitorNames) > 0 {
		joined := m.Monitor[m.MonitorNames[0]]
		for _, name := range m.MonitorNames[1:] {
			joined = joined.OuterJoin(m.Monitor[name])
		}
		m.MonitorJoined = joined
	}

	if len(m.Chains) > 0 {
		m.SelectedChainIndex = 1
	}
	return m, nil
}

// chainNames returns the children named c<N>, ordered by the numeric
// suffix so c10 sorts after c2.
func chainNames(root *GroupRecord) []string {
	type numbered struct {
		name string
		num  int
	}
	var found []numbered
	for name := range root.Children {
		match := chainNamePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		num, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		found = append(found, numbered{name: name, num: num})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].num < found[j].num })
	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}

type namedTable struct {
	name string
	tbl  *table.Table
}

// monitorTables lists the device group's leaf tables. Monitors normally
// carry their own elapsed-time index and stay unjoined; should they ever
// share the default index, the joined table is split back into one
// single-column table per monitor.
func monitorTables(device *GroupRecord) []namedTable {
	if device.DataByName != nil {
		out := make([]namedTable, 0, len(device.DataNames))
		for _, name := range device.DataNames {
			out = append(out, namedTable{name: name, tbl: device.DataByName[name]})
		}
		return out
	}
	if device.Data == nil {
		return nil
	}
	var out []namedTable
	for _, col := range device.Data.Columns {
		out = append(out, namedTable{
			name: col.Name,
			tbl:  table.New(device.Data.Index, col),
		})
	}
	return out
}

// withAbsoluteTimeIndex converts a milliseconds-since-start index into
// absolute timestamps.
func withAbsoluteTimeIndex(tbl *table.Table, start time.Time) *table.Table {
	index := table.Column{Name: "datetime", Kind: table.Time, Values: make([]any, tbl.Len())}
	for i, v := range tbl.Index.Values {
		index.Values[i] = start.Add(time.Duration(toMillis(v)) * time.Millisecond)
	}
	return tbl.WithIndex(index)
}
