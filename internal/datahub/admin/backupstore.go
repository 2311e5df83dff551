package admin

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/threatflux/datahub/internal/datahub/sample"
)

// FileBackupStore implements observation.BackupStore by writing each
// observation's buffer to its own JSON file under a root directory, keyed
// by the observation's absolute path (spec.md §4.3 "Backup", §6
// "Persisted state layout").
type FileBackupStore struct {
	root string
}

// NewFileBackupStore creates a FileBackupStore rooted at dir. dir must
// already exist and be writable.
func NewFileBackupStore(dir string) *FileBackupStore {
	return &FileBackupStore{root: dir}
}

func (s *FileBackupStore) Persist(path string, buf []sample.Sample) error {
	entries := make([]backupEntry, len(buf))
	for i, smp := range buf {
		entries[i] = backupEntry{Type: smp.Type().String(), Value: rawValue(smp)}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling backup for %s: %w", path, err)
	}

	if err := os.WriteFile(s.filePath(path), data, 0o644); err != nil {
		return fmt.Errorf("writing backup for %s: %w", path, err)
	}
	return nil
}

func (s *FileBackupStore) Delete(path string) error {
	if err := os.Remove(s.filePath(path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting backup for %s: %w", path, err)
	}
	return nil
}

func (s *FileBackupStore) filePath(path string) string {
	return filepath.Join(s.root, url.PathEscape(path)+".json")
}

type backupEntry struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

func rawValue(s sample.Sample) interface{} {
	switch s.Type() {
	case sample.Trigger:
		return nil
	case sample.Boolean:
		return s.AsBoolean()
	case sample.Numeric:
		return s.AsNumeric()
	case sample.String:
		return s.AsString()
	case sample.JSON:
		return s.AsJSON()
	default:
		return nil
	}
}
