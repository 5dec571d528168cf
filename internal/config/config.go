// Package config loads the gtools TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the config file searched for in each location.
const FileName = ".gtools.toml"

const (
	// TokenStoreFile keeps the refresh token in a JSON file.
	TokenStoreFile = "file"
	// TokenStoreSQLite keeps the refresh token in the gtools sqlite database.
	TokenStoreSQLite = "sqlite"
)

const (
	defaultAccount      = "default"
	defaultCallbackPort = 3000
	defaultTimeout      = 30 * time.Second
)

type Config struct {
	ClientID          string   `toml:"client_id"`
	ClientSecret      string   `toml:"client_secret"`
	CredentialsPath   string   `toml:"credentials_path"`
	TokenPath         string   `toml:"token_path"`
	TokenStore        string   `toml:"token_store"`
	Account           string   `toml:"account"`
	CallbackPort      int      `toml:"callback_port"`
	VerbosityLevel    int      `toml:"verbosity_level"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
	Timeout           Duration `toml:"timeout"`

	// Dir is the directory the config file was read from. Empty when no file
	// was found and defaults are in use.
	Dir string `toml:"-"`
	// Path is the file the config was read from.
	Path string `toml:"-"`
}

// Duration is a time.Duration that decodes from TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		TokenStore:   TokenStoreFile,
		Account:      defaultAccount,
		CallbackPort: defaultCallbackPort,
		Timeout:      Duration{defaultTimeout},
	}
}

// SearchPaths lists the locations Load tries, in order, when no explicit
// path is given.
func SearchPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "gtools", FileName),
			filepath.Join(home, FileName),
		)
	}
	return paths
}

// Load reads the config file. An explicit path must exist; otherwise the
// search paths are tried in order and defaults are returned when none exist.
func Load(explicit string) (*Config, error) {
	if explicit != "" {
		return Read(explicit)
	}
	for _, path := range SearchPaths() {
		cfg, err := Read(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return Default(), nil
}

// Read parses a single config file and fills in defaults.
func Read(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}

	abs, err := filepath.Abs(filename)
	if err != nil {
		abs = filename
	}
	config.Path = abs
	config.Dir = filepath.Dir(abs)
	return config, nil
}

func (c *Config) validate() error {
	switch c.TokenStore {
	case "":
		c.TokenStore = TokenStoreFile
	case TokenStoreFile, TokenStoreSQLite:
	default:
		return fmt.Errorf("unknown token_store %q (want %q or %q)", c.TokenStore, TokenStoreFile, TokenStoreSQLite)
	}
	if c.Account == "" {
		c.Account = defaultAccount
	}
	if c.CallbackPort == 0 {
		c.CallbackPort = defaultCallbackPort
	}
	if c.CallbackPort < 0 || c.CallbackPort > 65535 {
		return fmt.Errorf("callback_port %d out of range", c.CallbackPort)
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("requests_per_second must not be negative")
	}
	if c.Timeout.Duration <= 0 {
		c.Timeout.Duration = defaultTimeout
	}
	return nil
}

// HasInlineClient reports whether OAuth client credentials are set directly
// in the config file.
func (c *Config) HasInlineClient() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// DataDir is where gtools keeps state that belongs next to the config: the
// config dir when a file was loaded, otherwise $HOME/.config/gtools.
func (c *Config) DataDir() string {
	if c.Dir != "" {
		return c.Dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "gtools")
	}
	return "."
}
