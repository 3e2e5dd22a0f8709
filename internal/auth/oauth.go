package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/FranLegon/cloud-drives-search/internal/logger"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

const (
	// CallbackAddr is where the local server waits for the OAuth redirect
	CallbackAddr = "localhost:8080"
	RedirectURL  = "http://" + CallbackAddr + "/callback"

	// Read-only scopes are enough to search
	GoogleDriveScope = "https://www.googleapis.com/auth/drive.readonly"
	GoogleEmailScope = "https://www.googleapis.com/auth/userinfo.email"

	MicrosoftFilesScope   = "files.read.all"
	MicrosoftUserScope    = "user.read"
	MicrosoftOfflineScope = "offline_access"

	flowTimeout = 5 * time.Minute
)

// OAuthConfig creates an OAuth2 configuration for a provider
func OAuthConfig(provider model.Provider, clientID, clientSecret string) (*oauth2.Config, error) {
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  RedirectURL,
	}
	switch provider {
	case model.ProviderGoogle:
		cfg.Scopes = []string{GoogleDriveScope, GoogleEmailScope}
		cfg.Endpoint = google.Endpoint
	case model.ProviderMicrosoft:
		cfg.Scopes = []string{MicrosoftFilesScope, MicrosoftUserScope, MicrosoftOfflineScope}
		// "common" accepts both personal and organizational accounts
		cfg.Endpoint = microsoft.AzureADEndpoint("common")
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	return cfg, nil
}

// PerformOAuthFlow prints the consent URL, waits for the browser to hit the
// local callback and exchanges the code. It returns the refresh token.
func PerformOAuthFlow(ctx context.Context, config *oauth2.Config) (string, error) {
	state := uuid.NewString()
	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	logger.Info("Please visit this URL to authorize the application:")
	logger.Info("%s", authURL)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			errChan <- errors.New("state mismatch")
			fmt.Fprint(w, "Error: State mismatch. You can close this window.")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- errors.New("no authorization code received")
			fmt.Fprint(w, "Error: No authorization code received. You can close this window.")
			return
		}
		codeChan <- code
		fmt.Fprint(w, "Authorization successful! You can close this window and return to the terminal.")
	})

	ln, err := net.Listen("tcp", CallbackAddr)
	if err != nil {
		return "", fmt.Errorf("failed to start callback server: %w", err)
	}
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(flowTimeout):
		return "", fmt.Errorf("OAuth flow timed out after %s", flowTimeout)
	}

	token, err := config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code for token: %w", err)
	}
	if token.RefreshToken == "" {
		return "", errors.New("no refresh token received (user may have already authorized)")
	}
	return token.RefreshToken, nil
}
