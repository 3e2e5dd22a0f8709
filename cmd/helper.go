package cmd

import (
	"context"
	"fmt"

	"github.com/FranLegon/cloud-drives-search/internal/auth"
	"github.com/FranLegon/cloud-drives-search/internal/config"
	"github.com/FranLegon/cloud-drives-search/internal/coordinator"
	"github.com/FranLegon/cloud-drives-search/internal/database"
	"github.com/FranLegon/cloud-drives-search/internal/google"
	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/microsoft"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/FranLegon/cloud-drives-search/internal/search"
	"golang.org/x/oauth2"
)

// session bundles what the search commands run on.
type session struct {
	cfg    *config.AppConfig
	user   model.User
	db     *database.DB
	router *search.Router
}

func (s *session) Close() {
	if err := s.db.Close(); err != nil {
		logger.Warning("Failed to close cache: %v", err)
	}
}

// loadConfig unlocks the encrypted config with the master password.
func loadConfig() (*config.AppConfig, string, error) {
	store := settings.Store()
	if !store.Exists() {
		return nil, "", config.ErrNotInitialized
	}
	password, err := settings.Password(false)
	if err != nil {
		return nil, "", err
	}
	cfg, err := store.Load(password)
	if err != nil {
		return nil, "", err
	}
	return cfg, password, nil
}

// openSession unlocks the config, picks the account and opens the cache.
// A remote client that cannot be built is logged and left out, so local and
// offline searches keep working.
func openSession(ctx context.Context) (*session, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}
	user, err := cfg.SelectUser(settings.Account)
	if err != nil {
		return nil, err
	}

	db, err := database.Open(settings.CachePath, settings.PageSize)
	if err != nil {
		return nil, err
	}

	cache := db.ForAccount(user.Email)
	router := &search.Router{Local: cache, Store: cache}
	remote, err := newRemote(ctx, cfg, user)
	if err != nil {
		logger.WarningTagged([]string{user.Email}, "Remote search unavailable: %v", err)
	} else {
		router.Remote = remote
	}

	logger.Debug("Session opened for %s (%s), cache %s", user.Email, user.Provider, settings.CachePath)
	return &session{cfg: cfg, user: user, db: db, router: router}, nil
}

func oauthConfigFor(cfg *config.AppConfig, provider model.Provider) (*oauth2.Config, error) {
	creds, err := cfg.Client(provider)
	if err != nil {
		return nil, err
	}
	return auth.OAuthConfig(provider, creds.ID, creds.Secret)
}

// newRemote creates the provider client of user.
func newRemote(ctx context.Context, cfg *config.AppConfig, user model.User) (search.Fetcher, error) {
	oc, err := oauthConfigFor(cfg, user.Provider)
	if err != nil {
		return nil, err
	}
	switch user.Provider {
	case model.ProviderGoogle:
		client, err := google.NewClient(ctx, user, oc, google.Options{PageSize: settings.PageSize, RecentDays: settings.RecentDays})
		if err != nil {
			return nil, err
		}
		return client, nil
	case model.ProviderMicrosoft:
		cred := &auth.Credential{TS: auth.TokenSource(ctx, oc, user.RefreshToken)}
		client, err := microsoft.NewClient(ctx, cred, user)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	return nil, fmt.Errorf("unsupported provider: %s", user.Provider)
}

// accountEmail asks the provider who a freshly authorized token belongs to.
func accountEmail(ctx context.Context, provider model.Provider, oc *oauth2.Config, refreshToken string) (string, error) {
	switch provider {
	case model.ProviderGoogle:
		client, err := google.NewClient(ctx, model.User{Provider: provider, RefreshToken: refreshToken}, oc, google.Options{})
		if err != nil {
			return "", err
		}
		return client.Email(ctx)
	case model.ProviderMicrosoft:
		return microsoft.Email(ctx, &auth.Credential{TS: auth.TokenSource(ctx, oc, refreshToken)})
	}
	return "", fmt.Errorf("unsupported provider: %s", provider)
}

func thresholds() coordinator.Thresholds {
	return coordinator.Thresholds{
		ListLookahead:     settings.ListLookahead,
		GridLookaheadRows: settings.GridLookaheadRows,
		GridColumns:       settings.GridColumns,
	}
}
