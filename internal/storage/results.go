// Package storage persists scan runs as JSON under the results directory.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/headgrade/headgrade/internal/scanner"
	consts "github.com/headgrade/headgrade/internal/shared/constants"
)

// Run is one persisted scan invocation.
type Run struct {
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt time.Time            `json:"completed_at"`
	Operator    string               `json:"operator,omitempty"`
	Results     []scanner.ScanResult `json:"results"`
}

// ResultsFilename is the canonical results file consumed by report/serve.
const ResultsFilename = "results.json"

// Store reads and writes runs below a single results directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the results directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("results directory cannot be empty")
	}
	if err := os.MkdirAll(dir, consts.DefaultDirPerm); err != nil {
		return nil, fmt.Errorf("create results directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Path returns the absolute path of the canonical results file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, ResultsFilename)
}

// Save writes the run atomically (temp file, then rename).
func (s *Store) Save(run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, data, consts.DefaultFilePerm); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		return fmt.Errorf("replace results: %w", err)
	}
	return nil
}

// Load reads the most recently saved run.
func (s *Store) Load() (*Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return LoadFile(s.Path())
}

// LoadFile reads a run from an arbitrary results file.
func LoadFile(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &run, nil
}
