// Package snapshot persists one day's aggregated calendar feeds so that
// repeated queries on the same date skip refetching ~95 feeds.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Store is the persistence capability the finder depends on. A stale or
// missing snapshot reads as absent; Save replaces the file wholesale.
type Store interface {
	Load(date string) (map[string][]byte, bool)
	Save(date string, docs map[string][]byte) error
}

// record is the on-disk format: the batch of raw ICS texts keyed by
// course ID, tagged with the calendar date it was synced for.
type record struct {
	LastSyncDate string            `json:"last_sync_date"`
	Data         map[string]string `json:"data"`
}

// FileStore keeps the snapshot in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The parent directory is
// created on first save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("snapshot path is empty")
	}
	return &FileStore{path: path}, nil
}

// Load returns the stored feed batch when the snapshot was synced for
// exactly the given date (YYYY-MM-DD in the reference zone). Anything
// else — missing file, unreadable JSON, other date — reads as absent.
func (s *FileStore) Load(date string) (map[string][]byte, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, false
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	if rec.LastSyncDate != date {
		return nil, false
	}

	docs := make(map[string][]byte, len(rec.Data))
	for id, body := range rec.Data {
		docs[id] = []byte(body)
	}
	return docs, true
}

// Save replaces the snapshot with the given batch. The write is atomic
// (temp file + rename) so readers never observe a partial snapshot.
func (s *FileStore) Save(date string, docs map[string][]byte) error {
	rec := record{
		LastSyncDate: date,
		Data:         make(map[string]string, len(docs)),
	}
	for id, body := range docs {
		rec.Data[id] = string(body)
	}

	data, err := json.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".raumcheck-snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, s.path)
}

// Disabled is a Store that never has data and discards writes; used when
// snapshotting is turned off in config.
type Disabled struct{}

func (Disabled) Load(string) (map[string][]byte, bool) { return nil, false }
func (Disabled) Save(string, map[string][]byte) error  { return nil }
