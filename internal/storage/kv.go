package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/automute/internal/migration"
)

// KV implements the key-value operations on the kv table shared by the SQL backends.
type KV struct {
	db      *sql.DB
	dialect migration.Dialect
	upsert  string
}

// NewKV wraps an open database. upsert must insert or replace (key, value) using "?" placeholders.
func NewKV(db *sql.DB, dialect migration.Dialect, upsert string) *KV {
	return &KV{
		db:      db,
		dialect: dialect,
		upsert:  dialect.Rebind(upsert),
	}
}

func (k *KV) Get(key string) (string, bool, error) {
	if k == nil {
		return "", false, ErrNotLoaded
	}
	var value string
	err := k.db.QueryRow(k.dialect.Rebind("SELECT value FROM kv WHERE key = ?"), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (k *KV) List(prefix string) (map[string]string, error) {
	if k == nil {
		return nil, ErrNotLoaded
	}
	rows, err := k.db.Query(k.dialect.Rebind(`SELECT key, value FROM kv WHERE key LIKE ? ESCAPE '\' ORDER BY key`), escapeLike(prefix)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list %s*: %w", prefix, err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (k *KV) Set(key, value string) error {
	if k == nil {
		return ErrNotLoaded
	}
	if _, err := k.db.Exec(k.upsert, key, value); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (k *KV) Delete(key string) error {
	if k == nil {
		return ErrNotLoaded
	}
	if _, err := k.db.Exec(k.dialect.Rebind("DELETE FROM kv WHERE key = ?"), key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (k *KV) Apply(b Batch) error {
	if k == nil {
		return ErrNotLoaded
	}
	if b.Empty() {
		return nil
	}

	tx, err := k.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if len(b.Sets) > 0 {
		stmt, err := tx.Prepare(k.upsert)
		if err != nil {
			return err
		}
		defer stmt.Close()

		keys := make([]string, 0, len(b.Sets))
		for key := range b.Sets {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, err := stmt.Exec(key, b.Sets[key]); err != nil {
				return fmt.Errorf("failed to write %s: %w", key, err)
			}
		}
	}

	for _, key := range b.Deletes {
		if _, err := tx.Exec(k.dialect.Rebind("DELETE FROM kv WHERE key = ?"), key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	return tx.Commit()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
