// Package dataprocessing converts the raw node tree of an EVE-CSS
// measurement container into normalized, unit-aware tabular data.
//
// # Architecture
//
// The package is organized along the parsing pipeline:
//
//  1. Walker: recursively classifies raw nodes into GroupRecords,
//     building one channel table per leaf and joining them per group
//  2. Chain assembly: merges a chain's standard/snapshot/timestamp/
//     normalized/standarddev/averagemeta subtrees into one Chain,
//     including the name-translation and unit tables
//  3. Measurement assembly: aggregates all chains plus monitored-device
//     tables into a Measurement
//  4. Standard view: derives the simplified before/after-snapshot,
//     deduplicated view for the common single-chain scan
//
// # Usage
//
// The common case:
//
//	sm, err := dataprocessing.StandardFromFile("scan_00421.h5", dataprocessing.StandardOptions{})
//	if err != nil {
//	    var cardinality *dataprocessing.SnapshotCardinalityError
//	    if errors.As(err, &cardinality) {
//	        m, err := dataprocessing.MeasurementFromFile("scan_00421.h5")
//	        ...
//	    }
//	}
//
// # Error Handling
//
// Three fatal error kinds abort assembly: ParseError (malformed node
// shapes), VersionResolutionError (missing standard/snapshot sections for
// the declared schema version) and SnapshotCardinalityError (snapshot
// columns without a one- or two-value history). Unrecognized node kinds,
// unit lookup misses and rename collisions are recoverable and only logged.
//
// # Concurrency
//
// A single parse is one synchronous pass without internal parallelism.
// Parses of different sources are independent and safe to run
// concurrently; all assembled values are immutable.
package dataprocessing
