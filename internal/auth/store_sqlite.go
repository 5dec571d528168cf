package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bobuk/gtools/internal/logger"
)

// DBFileName is the sqlite database kept in the config dir.
const DBFileName = ".gtools.db"

// SQLiteStore keeps one token per account name in a sqlite database.
type SQLiteStore struct {
	path    string
	account string
}

// NewSQLiteStore creates a store backed by the database file at path.
func NewSQLiteStore(path, account string) *SQLiteStore {
	return &SQLiteStore{path: path, account: account}
}

func (s *SQLiteStore) Location() string {
	return fmt.Sprintf("%s#%s", s.path, s.account)
}

func (s *SQLiteStore) open() (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrate brings the schema up to the current version.
func migrate(db *sql.DB) error {
	var dbVersion int
	err := db.QueryRow("SELECT version FROM db_version WHERE name='gtools'").Scan(&dbVersion)
	if err != nil {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS db_version (
			name TEXT PRIMARY KEY,
			version INTEGER
		)`)
		if err != nil {
			return fmt.Errorf("error creating db_version table: %w", err)
		}
		_, err = db.Exec(`INSERT OR IGNORE INTO db_version (name, version) VALUES ('gtools', 0)`)
		if err != nil {
			return fmt.Errorf("error initializing db_version table: %w", err)
		}
		dbVersion = 0
	}

	if dbVersion == 0 {
		_, err = db.Exec(`CREATE TABLE IF NOT EXISTS tokens (
		account_name TEXT PRIMARY KEY,
		token TEXT)`)
		if err != nil {
			return fmt.Errorf("error creating tokens table: %w", err)
		}
		_, err = db.Exec(`UPDATE db_version SET version = 1 WHERE name = 'gtools'`)
		if err != nil {
			return fmt.Errorf("error updating db_version table: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*StoredToken, string, error) {
	db, err := s.open()
	if err != nil {
		return nil, "", err
	}
	defer db.Close()

	var tokenJSON []byte
	err = db.QueryRowContext(ctx, "SELECT token FROM tokens WHERE account_name = ?", s.account).Scan(&tokenJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrNoToken
	}
	if err != nil {
		return nil, "", fmt.Errorf("error retrieving token from database: %w", err)
	}

	var tok StoredToken
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling token: %w", err)
	}
	return &tok, s.Location(), nil
}

func (s *SQLiteStore) Save(ctx context.Context, tok *StoredToken) (string, error) {
	db, err := s.open()
	if err != nil {
		return "", err
	}
	defer db.Close()

	tokenJSON, err := json.Marshal(tok)
	if err != nil {
		return "", err
	}
	_, err = db.ExecContext(ctx, "INSERT OR REPLACE INTO tokens (account_name, token) VALUES (?, ?)", s.account, string(tokenJSON))
	if err != nil {
		return "", fmt.Errorf("error saving token: %w", err)
	}
	logger.Info("Saved token for account %s to %s", s.account, s.path)
	return s.Location(), nil
}

func (s *SQLiteStore) Remove(ctx context.Context) ([]string, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	res, err := db.ExecContext(ctx, "DELETE FROM tokens WHERE account_name = ?", s.account)
	if err != nil {
		return nil, fmt.Errorf("error deleting token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return []string{}, nil
	}
	return []string{s.Location()}, nil
}
