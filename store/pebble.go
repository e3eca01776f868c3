package store

import (
	"github.com/cockroachdb/pebble"
	"github.com/yanun0323/errors"
)

const pebbleKeyPrefix = "doc/"

// PebbleStore keeps the six documents under doc/<name> keys, written in one
// synced batch.
type PebbleStore struct {
	db *pebble.DB
}

func NewPebbleStore(dir string) (*PebbleStore, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open pebble")
	}
	return &PebbleStore{db: db}, nil
}

func (s *PebbleStore) Load() (Snapshot, error) {
	docs := map[string][]byte{}
	for _, name := range Documents {
		val, closer, err := s.db.Get(pebbleKey(name))
		if err == pebble.ErrNotFound {
			continue
		}
		if err != nil {
			return Snapshot{}, errors.Wrap(err, "get "+name)
		}
		body := make([]byte, len(val))
		copy(body, val)
		closer.Close()
		docs[name] = body
	}
	return Decode(docs), nil
}

func (s *PebbleStore) Save(snap Snapshot) error {
	docs, err := Encode(snap)
	if err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()
	for _, name := range Documents {
		if err := b.Set(pebbleKey(name), docs[name], nil); err != nil {
			return errors.Wrap(err, "batch "+name)
		}
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "commit batch")
	}
	return nil
}

func (s *PebbleStore) Close() error {
	return s.db.Close()
}

func pebbleKey(name string) []byte {
	return []byte(pebbleKeyPrefix + name)
}
