package progress

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"case-scraper/pkg/models"
	"case-scraper/pkg/utils"
)

// Store persists the progress checkpoint
type Store interface {
	// Load returns the saved state, or the empty state when nothing has been saved yet
	Load() (models.ProgressState, error)
	Save(state models.ProgressState) error
}

// FileStore keeps the checkpoint in a single JSON document
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore for path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the progress file. A missing file yields the empty state;
// an unreadable or corrupt file is an ErrProgressState error, never a silent reset.
func (s *FileStore) Load() (models.ProgressState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.NewProgressState(), nil
		}
		return models.ProgressState{}, fmt.Errorf("%w: reading %s: %w", utils.ErrProgressState, s.path, err)
	}

	var state models.ProgressState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.ProgressState{}, fmt.Errorf("%w: parsing %s: %w", utils.ErrProgressState, s.path, err)
	}
	if state.CompletedYears == nil {
		state.CompletedYears = []int{}
	}
	if state.CompletedMonths == nil {
		state.CompletedMonths = []string{}
	}
	return state, nil
}

// Save writes the state to a temp file in the same directory and renames it
// over the progress file, so a crash mid-write leaves the previous checkpoint intact
func (s *FileStore) Save(state models.ProgressState) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", utils.ErrProgressState, dir, err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", utils.ErrProgressState, err)
	}

	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %w", utils.ErrProgressState, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: writing %s: %w", utils.ErrProgressState, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: closing %s: %w", utils.ErrProgressState, tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replacing %s: %w", utils.ErrProgressState, s.path, err)
	}
	return nil
}

// MemoryStore is an in-process Store for tests and dry runs
type MemoryStore struct {
	mu      sync.Mutex
	state   *models.ProgressState
	SaveErr error // returned by Save when set
	Saves   int
}

// NewMemoryStore creates a MemoryStore, optionally seeded with a state
func NewMemoryStore(initial *models.ProgressState) *MemoryStore {
	m := &MemoryStore{}
	if initial != nil {
		c := initial.Clone()
		m.state = &c
	}
	return m
}

// Load returns a copy of the stored state
func (m *MemoryStore) Load() (models.ProgressState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return models.NewProgressState(), nil
	}
	return m.state.Clone(), nil
}

// Save stores a copy of state unless SaveErr is set
func (m *MemoryStore) Save(state models.ProgressState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return fmt.Errorf("%w: %w", utils.ErrProgressState, m.SaveErr)
	}
	c := state.Clone()
	m.state = &c
	m.Saves++
	return nil
}
