package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"game-trigger-service/internal/domain"
)

// CheckpointStore persists the latest monitoring checkpoint for restart
// recovery. Checkpoints are additionally mirrored to the evidence store by
// the monitor for tamper-evident history.
type CheckpointStore interface {
	Save(cp domain.Checkpoint) error
	Load() (domain.Checkpoint, bool, error)
}

// FSCheckpointStore keeps the latest checkpoint as a single JSON file.
type FSCheckpointStore struct {
	path string
}

// NewFSCheckpointStore constructs a checkpoint store at the given file path.
func NewFSCheckpointStore(path string) *FSCheckpointStore {
	return &FSCheckpointStore{path: path}
}

// Save replaces the stored checkpoint atomically.
func (s *FSCheckpointStore) Save(cp domain.Checkpoint) error {
	if s == nil || s.path == "" {
		return errors.New("checkpoint store not configured")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// Load reads the stored checkpoint. The second return is false when no
// checkpoint has been written yet.
func (s *FSCheckpointStore) Load() (domain.Checkpoint, bool, error) {
	if s == nil || s.path == "" {
		return domain.Checkpoint{}, false, errors.New("checkpoint store not configured")
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Checkpoint{}, false, nil
		}
		return domain.Checkpoint{}, false, err
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return domain.Checkpoint{}, false, fmt.Errorf("decode checkpoint: %w", err)
	}
	return cp, true, nil
}
