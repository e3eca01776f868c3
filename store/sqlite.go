package store

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yanun0323/errors"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	name TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// SQLiteStore keeps the six documents as rows, replaced in one transaction.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load() (Snapshot, error) {
	rows, err := s.db.Query(`SELECT name, body FROM documents`)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "query documents")
	}
	defer rows.Close()

	docs := map[string][]byte{}
	for rows.Next() {
		var (
			name string
			body []byte
		)
		if err := rows.Scan(&name, &body); err != nil {
			return Snapshot{}, errors.Wrap(err, "scan document")
		}
		docs[name] = body
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, errors.Wrap(err, "read documents")
	}
	return Decode(docs), nil
}

func (s *SQLiteStore) Save(snap Snapshot) error {
	docs, err := Encode(snap)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	now := time.Now().UTC()
	for _, name := range Documents {
		_, err := tx.Exec(`
			INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
			name, docs[name], now,
		)
		if err != nil {
			tx.Rollback()
			return errors.Wrap(err, "write "+name)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
