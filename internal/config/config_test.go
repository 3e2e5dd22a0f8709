package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse"

func TestStoreRoundTrip(t *testing.T) {
	store := Store{Dir: filepath.Join(t.TempDir(), "cfg")}
	assert.False(t, store.Exists())

	cfg := &AppConfig{GoogleClient: ClientCredentials{ID: "gid", Secret: "gsecret"}}
	cfg.AddUser(model.User{Provider: model.ProviderGoogle, Email: "me@example.com", RefreshToken: "r1"})
	require.NoError(t, store.Init(testPassword, cfg))
	assert.True(t, store.Exists())

	loaded, err := store.Load(testPassword)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = store.Load("wrong-password")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestLoadBeforeInit(t *testing.T) {
	_, err := Store{Dir: t.TempDir()}.Load(testPassword)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAddAndSelectUser(t *testing.T) {
	cfg := &AppConfig{}
	cfg.AddUser(model.User{Provider: model.ProviderGoogle, Email: "main@example.com", RefreshToken: "a"})
	cfg.AddUser(model.User{Provider: model.ProviderMicrosoft, Email: "work@example.com", RefreshToken: "b"})
	cfg.AddUser(model.User{Provider: model.ProviderGoogle, Email: "MAIN@example.com", RefreshToken: "c"})

	require.Len(t, cfg.Users, 2)
	assert.True(t, cfg.Users[0].IsMain)
	assert.False(t, cfg.Users[1].IsMain)
	assert.Equal(t, "c", cfg.Users[0].RefreshToken)

	u, err := cfg.SelectUser("")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", u.Email)

	u, err = cfg.SelectUser("Work@Example.com")
	require.NoError(t, err)
	assert.Equal(t, model.ProviderMicrosoft, u.Provider)

	_, err = cfg.SelectUser("nobody@example.com")
	assert.ErrorIs(t, err, ErrNoAccounts)
}

func TestClientCredentials(t *testing.T) {
	cfg := &AppConfig{MicrosoftClient: ClientCredentials{ID: "mid"}}

	creds, err := cfg.Client(model.ProviderMicrosoft)
	require.NoError(t, err)
	assert.Equal(t, "mid", creds.ID)

	_, err = cfg.Client(model.ProviderGoogle)
	assert.Error(t, err)
	_, err = cfg.Client(model.ProviderLocal)
	assert.Error(t, err)
}

func newSettings(t *testing.T, args ...string) (Settings, error) {
	t.Helper()
	v := viper.New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	require.NoError(t, RegisterFlags(v, fs))
	require.NoError(t, fs.Parse(args))
	return LoadSettings(v)
}

func TestSettingsDefaults(t *testing.T) {
	dir := t.TempDir()
	s, err := newSettings(t, "--config-dir", dir)
	require.NoError(t, err)

	assert.Equal(t, 50, s.PageSize)
	assert.Equal(t, 10, s.ListLookahead)
	assert.Equal(t, 2, s.GridLookaheadRows)
	assert.Equal(t, 4, s.GridColumns)
	assert.Equal(t, filepath.Join(dir, "cache.db"), s.CachePath)
	assert.Equal(t, dir, s.Store().Dir)
}

func TestSettingsFromEnvAndFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "settings.yaml")
	require.NoError(t, os.WriteFile(file, []byte("grid-columns: 6\nrecent-days: 30\n"), 0600))
	t.Setenv("CDS_PAGE_SIZE", "25")
	t.Setenv("CDS_MASTER_PASSWORD", testPassword)

	s, err := newSettings(t, "--settings", file, "--list-lookahead", "3")
	require.NoError(t, err)

	assert.Equal(t, 25, s.PageSize)
	assert.Equal(t, 3, s.ListLookahead)
	assert.Equal(t, 6, s.GridColumns)
	assert.Equal(t, 30, s.RecentDays)

	password, err := s.Password(false)
	require.NoError(t, err)
	assert.Equal(t, testPassword, password)
}

func TestSettingsValidation(t *testing.T) {
	_, err := newSettings(t, "--page-size", "0")
	assert.Error(t, err)

	_, err = newSettings(t, "--grid-columns", "-1")
	assert.Error(t, err)
}
