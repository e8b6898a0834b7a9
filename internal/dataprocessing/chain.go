package dataprocessing

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"evedata/internal/container"
	"evedata/internal/table"
)

// startTimeLayout is the format EVE-CSS uses for StartDate + StartTime.
const startTimeLayout = "02.01.2006 15:04:05"

// Chain is one independent sequence of scan steps within a measurement,
// with its standard, snapshot and timing tables merged into coherent form.
// A Chain is immutable once assembled.
type Chain struct {
	Info  container.Attributes
	Start *time.Time

	StandardData     *table.Table
	StandardMetadata map[string]container.Attributes

	// SnapshotData and SnapshotMetadata are nil for V1 files, which have no
	// snapshot concept.
	SnapshotData     *table.Table
	SnapshotMetadata map[string]container.Attributes

	TimestampData     *table.Table
	TimestampMetadata map[string]container.Attributes

	// Units maps resolved channel names to unit strings; normalized
	// channels carry a composed "<unit> / <normUnit>" entry.
	Units map[string]string
	// NameTranslation maps machine XML-IDs to resolved human names.
	NameTranslation map[string]string

	PreferredAxis                 string
	PreferredChannel              string
	PreferredNormalizationChannel string

	StandardMotors  []string
	StandardSensors []string
	SnapshotMotors  []string
	SnapshotSensors []string
}

var stddevSuffixes = map[string]string{
	"Count":             "_stddev_count",
	"StandardDeviation": "_stddev",
	"TriggerIntv":       "_stddev_trigger_interval",
}

var averageSuffixes = map[string]string{
	"AverageCount": "_av_count",
	"Attempts":     "_av_attempts",
	"Limit":        "_av_limit",
	"maxDeviation": "_av_max_deviation",
	"MaxAttempts":  "_av_max_attempts",
	"Preset":       "_av_preset",
}

// assembleChain merges a chain's standard, snapshot, timestamp, normalized,
// standarddev and averagemeta subtrees into one Chain.
func assembleChain(rec *GroupRecord, eveH5Version float64, logger *slog.Logger) (*Chain, error) {
	if logger == nil {
		logger = slog.Default()
	}
	info := rec.Info.Clone()

	chain := &Chain{Info: info}

	start, err := popStartTime(info)
	if err != nil {
		return nil, err
	}
	chain.Start = start

	rawAxis := info.PopDefault("preferredAxis", "")
	rawChannel := info.PopDefault("preferredChannel", "")
	rawNorm := info.PopDefault("preferredNormalizationChannel", "")

	standardSec, snapshotSec, err := resolveSections(rec, eveH5Version)
	if err != nil {
		return nil, err
	}

	chain.StandardData, err = sectionData(standardSec, "standard")
	if err != nil {
		return nil, err
	}
	chain.StandardMetadata = cloneMetadata(standardSec.Metadata)

	if snapshotSec != nil {
		chain.SnapshotData, err = sectionData(snapshotSec, "snapshot")
		if err != nil {
			return nil, err
		}
		chain.SnapshotMetadata = cloneMetadata(snapshotSec.Metadata)
	}

	if err := mergeTimestamps(chain, rec); err != nil {
		return nil, err
	}
	mergeNormalized(chain, standardSec)
	buildTranslationAndUnits(chain)

	if stddev, ok := standardSec.Children["standarddev"]; ok {
		logger.Debug("adding standarddev information")
		renamed, err := renameDerivedColumns(stddev, "standarddev", chain.NameTranslation, stddevSuffixes)
		if err != nil {
			return nil, err
		}
		chain.StandardData = chain.StandardData.LeftJoin(renamed)
	}

	if avmeta, ok := standardSec.Children["averagemeta"]; ok {
		logger.Debug("adding averagemeta information")
		renamed, err := renameDerivedColumns(avmeta, "averagemeta", chain.NameTranslation, averageSuffixes)
		if err != nil {
			return nil, err
		}
		chain.StandardData = chain.StandardData.LeftJoin(renamed)
	}

	chain.StandardMotors, chain.StandardSensors = classifyDevices(chain.StandardMetadata)
	chain.SnapshotMotors, chain.SnapshotSensors = classifyDevices(chain.SnapshotMetadata)

	chain.PreferredAxis = translateOrRaw(chain.NameTranslation, rawAxis)
	chain.PreferredChannel = translateOrRaw(chain.NameTranslation, rawChannel)
	chain.PreferredNormalizationChannel = translateOrRaw(chain.NameTranslation, rawNorm)

	return chain, nil
}

// popStartTime removes StartDate and StartTime from info and parses them.
// Absence of either is not an error; a present but unparseable pair is.
func popStartTime(info container.Attributes) (*time.Time, error) {
	if !info.Has("StartDate") || !info.Has("StartTime") {
		return nil, nil
	}
	date, _ := info.Pop("StartDate")
	clock, _ := info.Pop("StartTime")
	ts, err := time.Parse(startTimeLayout, date+" "+clock)
	if err != nil {
		return nil, &ParseError{Msg: "unparseable start time " + date + " " + clock, Err: err}
	}
	return &ts, nil
}

// sectionData returns the section's joined table, or an empty table when
// the section carries no datasets. A section whose leaves do not share the
// position-counter index cannot be represented as one table.
func sectionData(sec *GroupRecord, label string) (*table.Table, error) {
	if sec.Data != nil {
		return sec.Data, nil
	}
	if sec.DataByName != nil {
		return nil, parseErrorf(label, "section tables do not share the position counter index")
	}
	return table.Empty(), nil
}

// mergeTimestamps reinterprets the meta child's PosCountTimer column as a
// millisecond duration and left-joins it into the standard and snapshot
// tables. A missing or incomplete meta child leaves the timestamp fields
// nil without error.
func mergeTimestamps(chain *Chain, rec *GroupRecord) error {
	meta, ok := rec.Children["meta"]
	if !ok || meta.Data == nil {
		return nil
	}
	if _, ok := meta.Data.Column("PosCountTimer"); !ok {
		return nil
	}
	ts := meta.Data.Transform("PosCountTimer", table.Duration, func(v any) any {
		return time.Duration(toMillis(v)) * time.Millisecond
	})
	chain.TimestampData = ts
	chain.TimestampMetadata = cloneMetadata(meta.Metadata)

	chain.StandardData = chain.StandardData.LeftJoin(ts)
	mergeMetadata(chain.StandardMetadata, chain.TimestampMetadata)
	if chain.SnapshotData != nil {
		chain.SnapshotData = chain.SnapshotData.LeftJoin(ts)
		mergeMetadata(chain.SnapshotMetadata, chain.TimestampMetadata)
	}
	return nil
}

// mergeNormalized outer-joins the standard section's normalized tables into
// the standard data, suffixing every column and metadata entry with _norm.
func mergeNormalized(chain *Chain, standardSec *GroupRecord) {
	norm, ok := standardSec.Children["normalized"]
	if !ok || norm.Data == nil {
		return
	}
	chain.StandardData = chain.StandardData.OuterJoin(norm.Data.WithSuffix("_norm"))
	for name, meta := range norm.Metadata {
		chain.StandardMetadata[name+"_norm"] = meta.Clone()
	}
}

// buildTranslationAndUnits scans the standard, snapshot and timestamp
// metadata for XML-IDs and units, then composes the units of normalized
// channels as "<unit> / <normUnit>". Later entries overwrite earlier ones
// on name collision. Lookup misses during composition default the
// denominator to "1" instead of failing.
func buildTranslationAndUnits(chain *Chain) {
	chain.NameTranslation = map[string]string{}
	chain.Units = map[string]string{}

	type normFix struct {
		name string
		meta container.Attributes
	}
	var fixes []normFix

	for _, metadata := range []map[string]container.Attributes{
		chain.StandardMetadata, chain.SnapshotMetadata, chain.TimestampMetadata,
	} {
		for _, name := range sortedKeys(metadata) {
			meta := metadata[name]
			if xmlID, ok := meta.Get("XML-ID"); ok {
				chain.NameTranslation[xmlID] = name
			}
			unit, ok := meta.Get("unit")
			if !ok {
				unit, ok = meta.Get("Unit")
			}
			if !ok {
				continue
			}
			chain.Units[name] = unit
			if strings.HasSuffix(name, "_norm") {
				fixes = append(fixes, normFix{name: name, meta: meta})
			}
		}
	}

	for _, fix := range fixes {
		denominator := "1"
		if id, ok := normalizeIDAttr(fix.meta); ok {
			if normName, ok := chain.NameTranslation[id]; ok {
				if normUnit, ok := chain.Units[normName]; ok {
					denominator = normUnit
				}
			}
		}
		chain.Units[fix.name] = chain.Units[fix.name] + " / " + denominator
	}
}

// normalizeIDAttr returns the normalization-channel id of a channel.
// NormalizeChannelID wins whenever both spellings are present; no schema
// version marker documents the choice.
func normalizeIDAttr(meta container.Attributes) (string, bool) {
	if id, ok := meta.Get("NormalizeChannelID"); ok {
		return id, true
	}
	return meta.Get("normalizeId")
}

// renameDerivedColumns renames the columns of a standarddev or averagemeta
// table from "<cachannel>_<Type>" to "<channel><suffix>" using the chain's
// name translation. A cachannel containing a double underscore encodes a
// channel/normalization pair; the composite "<channel>/<normChannel>" name
// is only used when the channel's own metadata marks it as normalized,
// otherwise the plain channel name wins.
func renameDerivedColumns(group *GroupRecord, label string, translation map[string]string, suffixes map[string]string) (*table.Table, error) {
	if group.Data == nil {
		return nil, parseErrorf(label, "group has no joinable data")
	}
	renames := map[string]string{}
	for _, col := range group.Data.ColumnNames() {
		i := strings.LastIndex(col, "_")
		if i < 0 {
			return nil, parseErrorf(label, "column %q has no type suffix", col)
		}
		cachannel, typ := col[:i], col[i+1:]
		suffix, ok := suffixes[typ]
		if !ok {
			return nil, parseErrorf(label, "column %q has unknown type suffix %q", col, typ)
		}

		channel := compositeChannelName(cachannel, group.Metadata, translation)
		if channel == "" {
			channel, ok = translation[cachannel]
			if !ok {
				return nil, parseErrorf(label, "unknown channel id %q in column %q", cachannel, col)
			}
		}
		renames[col] = channel + suffix
	}
	return group.Data.Rename(renames), nil
}

// compositeChannelName resolves the "<channel>__<normId>" encoding. It
// returns "" whenever any lookup fails or the channel is not actually
// normalized, which sends the caller down the plain-name path.
func compositeChannelName(cachannel string, metadata map[string]container.Attributes, translation map[string]string) string {
	i := strings.LastIndex(cachannel, "__")
	if i < 0 {
		return ""
	}
	channelID, normID := cachannel[:i], cachannel[i+2:]
	channelName, ok := translation[channelID]
	if !ok {
		return ""
	}
	channelMeta, ok := metadata[channelName]
	if !ok {
		return ""
	}
	if _, ok := normalizeIDAttr(channelMeta); !ok {
		return ""
	}
	normName, ok := translation[normID]
	if !ok {
		return ""
	}
	return channelName + "/" + normName
}

// classifyDevices splits metadata entries into motors (DeviceType "Axis")
// and sensors (DeviceType "Channel").
func classifyDevices(metadata map[string]container.Attributes) (motors, sensors []string) {
	for _, name := range sortedKeys(metadata) {
		deviceType, _ := metadata[name].Get("DeviceType")
		switch deviceType {
		case "Axis":
			motors = append(motors, name)
		case "Channel":
			sensors = append(sensors, name)
		}
	}
	return motors, sensors
}

func translateOrRaw(translation map[string]string, raw string) string {
	if name, ok := translation[raw]; ok {
		return name
	}
	return raw
}

func cloneMetadata(metadata map[string]container.Attributes) map[string]container.Attributes {
	out := make(map[string]container.Attributes, len(metadata))
	for name, meta := range metadata {
		out[name] = meta.Clone()
	}
	return out
}

func mergeMetadata(dst, src map[string]container.Attributes) {
	for name, meta := range src {
		dst[name] = meta.Clone()
	}
}

func sortedKeys(m map[string]container.Attributes) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toMillis(v any) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case float64:
		return int64(val)
	default:
		return 0
	}
}
