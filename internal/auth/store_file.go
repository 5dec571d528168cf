package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bobuk/gtools/internal/config"
	"github.com/bobuk/gtools/internal/logger"
)

// TokenPaths returns the token files tried, in order: the configured path,
// the project-local file, the legacy project file, then the global files.
func TokenPaths(cfg *config.Config) []string {
	var paths []string
	if cfg.TokenPath != "" {
		paths = append(paths, cfg.TokenPath)
	}
	paths = append(paths,
		filepath.Join(".gtools", "token.json"),
		"token.json",
	)
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "gtools", "token.json"),
			filepath.Join(home, ".gtools-token.json"),
		)
	}
	return paths
}

// FileStore keeps the token as JSON on disk. Reads walk the fallback chain;
// writes always go to the first path.
type FileStore struct {
	paths []string
}

// NewFileStore creates a store over the given search paths. The first path
// is where tokens are saved.
func NewFileStore(paths []string) *FileStore {
	return &FileStore{paths: paths}
}

func (s *FileStore) Location() string {
	if len(s.paths) == 0 {
		return ""
	}
	return s.paths[0]
}

func (s *FileStore) Load(_ context.Context) (*StoredToken, string, error) {
	for _, path := range s.paths {
		tok, err := readTokenFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return tok, path, nil
	}
	return nil, "", ErrNoToken
}

func (s *FileStore) Save(_ context.Context, tok *StoredToken) (string, error) {
	path := s.Location()
	if path == "" {
		return "", errors.New("no token path configured")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create token directory: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write token file: %w", err)
	}
	logger.Info("Saved token to %s", path)
	return path, nil
}

// Remove deletes every copy in the chain that holds a gtools token. Files
// that do not parse as one are left alone.
func (s *FileStore) Remove(_ context.Context) ([]string, error) {
	removed := []string{}
	for _, path := range s.paths {
		if _, err := readTokenFile(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Debug("Skipping %s: %v", path, err)
			}
			continue
		}
		err := os.Remove(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}

func readTokenFile(path string) (*StoredToken, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok StoredToken
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("error unmarshaling token %s: %w", path, err)
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s has no refresh_token", path)
	}
	return &tok, nil
}
