package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every setting read from the environment, e.g.
// CDS_PAGE_SIZE.
const EnvPrefix = "CDS"

const (
	KeySettingsFile      = "settings"
	KeyLogLevel          = "log-level"
	KeyPageSize          = "page-size"
	KeyListLookahead     = "list-lookahead"
	KeyGridLookaheadRows = "grid-lookahead-rows"
	KeyGridColumns       = "grid-columns"
	KeyRecentDays        = "recent-days"
	KeyCachePath         = "cache-path"
	KeyConfigDir         = "config-dir"
	KeyAccount           = "account"
	KeyMasterPassword    = "master-password"
)

// Settings are the non-secret knobs of the client.
type Settings struct {
	LogLevel          string
	PageSize          int
	ListLookahead     int
	GridLookaheadRows int
	GridColumns       int
	RecentDays        int
	CachePath         string
	ConfigDir         string
	Account           string
	// MasterPassword is only ever taken from the environment.
	MasterPassword string
}

// DefaultConfigDir is ~/.config/cloud-drives-search, or the working
// directory when no home is available.
func DefaultConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "cloud-drives-search")
	}
	return "."
}

// RegisterFlags adds the settings flags to fs and binds them, together with
// CDS_* environment variables, to v.
func RegisterFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.String(KeySettingsFile, "", "path to a YAML settings file")
	fs.String(KeyLogLevel, "info", "log level: debug, info, warning, error")
	fs.Int(KeyPageSize, 50, "items requested per page")
	fs.Int(KeyListLookahead, 10, "unrendered list items left before the next page is fetched")
	fs.Int(KeyGridLookaheadRows, 2, "unrendered grid rows left before the next page is fetched")
	fs.Int(KeyGridColumns, 4, "columns of the grid layout")
	fs.Int(KeyRecentDays, 7, "age limit of the recent search, in days")
	fs.String(KeyCachePath, "", "sqlite cache file (default <config-dir>/cache.db)")
	fs.String(KeyConfigDir, DefaultConfigDir(), "directory holding the encrypted config")
	fs.String(KeyAccount, "", "email of the account to search (default main account)")

	for _, name := range []string{
		KeySettingsFile, KeyLogLevel, KeyPageSize, KeyListLookahead, KeyGridLookaheadRows,
		KeyGridColumns, KeyRecentDays, KeyCachePath, KeyConfigDir, KeyAccount,
	} {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindEnv(KeyMasterPassword)
}

// LoadSettings reads the optional settings file and resolves all settings.
func LoadSettings(v *viper.Viper) (Settings, error) {
	if path := strings.TrimSpace(v.GetString(KeySettingsFile)); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read settings file %q: %w", path, err)
		}
	}

	s := Settings{
		LogLevel:          v.GetString(KeyLogLevel),
		PageSize:          v.GetInt(KeyPageSize),
		ListLookahead:     v.GetInt(KeyListLookahead),
		GridLookaheadRows: v.GetInt(KeyGridLookaheadRows),
		GridColumns:       v.GetInt(KeyGridColumns),
		RecentDays:        v.GetInt(KeyRecentDays),
		CachePath:         v.GetString(KeyCachePath),
		ConfigDir:         v.GetString(KeyConfigDir),
		Account:           v.GetString(KeyAccount),
		MasterPassword:    v.GetString(KeyMasterPassword),
	}
	if s.ConfigDir == "" {
		s.ConfigDir = DefaultConfigDir()
	}
	if s.CachePath == "" {
		s.CachePath = filepath.Join(s.ConfigDir, "cache.db")
	}
	return s, s.Validate()
}

// Validate rejects settings the client cannot work with.
func (s Settings) Validate() error {
	switch {
	case s.PageSize < 1 || s.PageSize > 1000:
		return fmt.Errorf("%s must be between 1 and 1000, got %d", KeyPageSize, s.PageSize)
	case s.ListLookahead < 1:
		return fmt.Errorf("%s must be positive, got %d", KeyListLookahead, s.ListLookahead)
	case s.GridLookaheadRows < 1:
		return fmt.Errorf("%s must be positive, got %d", KeyGridLookaheadRows, s.GridLookaheadRows)
	case s.GridColumns < 1:
		return fmt.Errorf("%s must be positive, got %d", KeyGridColumns, s.GridColumns)
	case s.RecentDays < 1:
		return fmt.Errorf("%s must be positive, got %d", KeyRecentDays, s.RecentDays)
	}
	return nil
}

// Store returns the encrypted config store of the settings.
func (s Settings) Store() Store {
	return Store{Dir: s.ConfigDir}
}

// Password returns the master password from the environment, prompting
// when it is not set.
func (s Settings) Password(confirm bool) (string, error) {
	if s.MasterPassword != "" {
		if err := validatePassword(s.MasterPassword); err != nil {
			return "", err
		}
		return s.MasterPassword, nil
	}
	return GetMasterPassword(confirm)
}
