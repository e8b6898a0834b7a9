package dataprocessing

import "fmt"

// ParseError reports a malformed or unexpected node shape, or a mandatory
// subtree missing for the declared schema version. It aborts the enclosing
// assembler call; there are no retries inside this package.
type ParseError struct {
	Node string // tree location or identifier the failure refers to
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("parse error at %q: %s", e.Node, e.Msg)
	}
	return fmt.Sprintf("parse error: %s", e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(node, format string, args ...any) *ParseError {
	return &ParseError{Node: node, Msg: fmt.Sprintf(format, args...)}
}

// VersionResolutionError reports that none of the subtree names expected for
// the declared schema version is present in a chain.
type VersionResolutionError struct {
	Version    float64
	Section    string
	Candidates []string
}

func (e *VersionResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s section for eve_h5 version %g: none of %v present",
		e.Section, e.Version, e.Candidates)
}

// SnapshotCardinalityError reports a snapshot column with neither one nor
// two recorded values. Callers typically fall back to the full Measurement
// view when they see it.
type SnapshotCardinalityError struct {
	Column string
	Count  int
}

func (e *SnapshotCardinalityError) Error() string {
	return fmt.Sprintf("snapshot of sensor/motor %q has %d data points, expected 1 or 2",
		e.Column, e.Count)
}
