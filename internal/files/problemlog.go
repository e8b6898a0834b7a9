package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DefaultProblemLogName is the append-only log of unreadable sources,
// created in the user's home directory unless configured otherwise.
const DefaultProblemLogName = ".eve_problematic_files"

// ProblemReporter is the diagnostic side channel for sources that fail
// structurally. Only the source identifier is recorded.
type ProblemReporter interface {
	Report(source string) error
}

// ProblemLog appends problematic source names to a log file, one per line.
type ProblemLog struct {
	mu   sync.Mutex
	path string
}

// NewProblemLog creates a problem log at the given path. An empty path
// selects the default location in the user's home directory.
func NewProblemLog(path string) (*ProblemLog, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		path = filepath.Join(home, DefaultProblemLogName)
	}
	return &ProblemLog{path: path}, nil
}

// Path returns the log file location.
func (p *ProblemLog) Path() string {
	return p.path
}

// Report appends the source identifier to the log. Empty identifiers are
// ignored.
func (p *ProblemLog) Report(source string) error {
	if source == "" {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	file, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open problem log: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintln(file, source); err != nil {
		return fmt.Errorf("failed to write problem log: %w", err)
	}
	return nil
}
