// Package files provides file system operations around EVE measurement
// sources.
//
// This package contains two main components:
//
// Discovery: Finds measurement files (.h5) in a data directory, with
// utilities for picking the latest file.
//
// ProblemLog: The append-only log collaborator for sources that fail
// structurally. The parsing core reports source identifiers to it but never
// writes application logs itself.
//
// Example usage:
//
//	discovery := files.NewDiscovery("/path/to/base")
//	sources, err := discovery.FindMeasurementFiles("data")
//
//	problems, err := files.NewProblemLog("")
//	_ = problems.Report("data/scan_00421.h5")
package files
