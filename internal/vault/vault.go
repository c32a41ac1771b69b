// Package vault is a durable encrypted key→bytes store backed by SQLite.
// Values are encrypted at rest with a SHA-256 keystream cipher keyed from a
// local key file. PutOnce provides the insert-only discipline the chain log
// relies on: a key written through PutOnce can never be rewritten.
package vault

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("vault: key not found")

// ErrExists is returned by PutOnce when the key is already present.
var ErrExists = errors.New("vault: key already exists")

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS records (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	immutable  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// #endregion schema

// #region vault-struct

// Vault manages encrypted records in SQLite.
type Vault struct {
	db  *sql.DB
	key []byte
}

// #endregion vault-struct

// #region constructor

// Open opens (or creates) the vault database and loads the cipher key.
func Open(dbPath, keyPath string) (*Vault, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	key, err := loadOrCreateKey(keyPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cipher key: %w", err)
	}
	return &Vault{db: db, key: key}, nil
}

// Close closes the underlying database connection.
func (v *Vault) Close() error {
	return v.db.Close()
}

// #endregion constructor

// #region put

// Put writes or overwrites a mutable record.
func (v *Vault) Put(key string, value []byte) error {
	sealed, err := seal(v.key, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = v.db.Exec(
		`INSERT INTO records (key, value, immutable, created_at, updated_at)
		 VALUES (?, ?, 0, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		 WHERE records.immutable = 0`,
		key, sealed, now, now,
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PutOnce writes an immutable record. It fails with ErrExists if the key is
// already present; nothing can overwrite a record written this way.
func (v *Vault) PutOnce(key string, value []byte) error {
	sealed, err := seal(v.key, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := v.db.Exec(
		`INSERT INTO records (key, value, immutable, created_at, updated_at)
		 VALUES (?, ?, 1, ?, ?)
		 ON CONFLICT(key) DO NOTHING`,
		key, sealed, now, now,
	)
	if err != nil {
		return fmt.Errorf("put-once %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("put-once %s: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("put-once %s: %w", key, ErrExists)
	}
	return nil
}

// #endregion put

// #region get

// Get reads and decrypts one record. Returns ErrNotFound for missing keys.
func (v *Vault) Get(key string) ([]byte, error) {
	var sealed []byte
	err := v.db.QueryRow(`SELECT value FROM records WHERE key = ?`, key).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	plain, err := open(v.key, sealed)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return plain, nil
}

// Keys returns all keys with the given prefix in ascending key order.
func (v *Vault) Keys(prefix string) ([]string, error) {
	rows, err := v.db.Query(
		`SELECT key FROM records WHERE key LIKE ? || '%' ORDER BY key ASC`, prefix,
	)
	if err != nil {
		return nil, fmt.Errorf("keys %s: %w", prefix, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// #endregion get
