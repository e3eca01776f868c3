package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// SnapshotFile is the file FileStore keeps inside its directory.
const SnapshotFile = "snapshot.json"

// FileStore keeps the snapshot as one JSON file of named documents,
// replaced by write-temp-then-rename so a crash leaves either the old or
// the new snapshot on disk.
type FileStore struct {
	dir  string
	path string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}
	return &FileStore{dir: dir, path: filepath.Join(dir, SnapshotFile)}, nil
}

// Path is the snapshot file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return Decode(nil), nil
	}
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "read snapshot")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		logs.Warnf("store: %s unreadable, starting empty: %+v", s.path, err)
		return Decode(nil), nil
	}
	docs := make(map[string][]byte, len(raw))
	for name, body := range raw {
		docs[name] = body
	}
	return Decode(docs), nil
}

func (s *FileStore) Save(snap Snapshot) error {
	docs, err := Encode(snap)
	if err != nil {
		return err
	}
	raw := make(map[string]json.RawMessage, len(docs))
	for name, body := range docs {
		raw[name] = body
	}
	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encode snapshot")
	}

	tmp, err := os.CreateTemp(s.dir, SnapshotFile+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp snapshot")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "sync temp snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp snapshot")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return errors.Wrap(err, "replace snapshot")
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
