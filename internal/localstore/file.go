package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"

	"desksync/internal/models"
)

// LoadFile reads a snapshot persisted by SaveFile (or written by another
// program sharing the state file).
func LoadFile(path string) (*models.Snapshot, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap models.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SaveFile writes the store's current state as JSON, via a temp file and
// rename so a concurrent reader never sees a partial write.
func (s *Store) SaveFile(path string) error {
	b, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return err
	}
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
