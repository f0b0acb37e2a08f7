package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aq2208/gstore-api/internal/usecase"
)

// MySQLKVStore keeps documents in one table keyed by k:
//
//	CREATE TABLE kv_store (
//	  k VARCHAR(191) PRIMARY KEY,
//	  v LONGTEXT NOT NULL,
//	  updated_at DATETIME NOT NULL
//	)
type MySQLKVStore struct{ db *sql.DB }

func NewMySQLKVStore(db *sql.DB) *MySQLKVStore { return &MySQLKVStore{db: db} }

func (s *MySQLKVStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv_store (
  k VARCHAR(191) NOT NULL PRIMARY KEY,
  v LONGTEXT NOT NULL,
  updated_at DATETIME NOT NULL
)`)
	return err
}

func (s *MySQLKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv_store WHERE k=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *MySQLKVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO kv_store (k,v,updated_at) VALUES (?,?,NOW())
ON DUPLICATE KEY UPDATE v=VALUES(v), updated_at=NOW()
`, key, value)
	return err
}

var _ usecase.KVStore = (*MySQLKVStore)(nil)
