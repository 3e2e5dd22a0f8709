package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/FranLegon/cloud-drives-search/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestOAuthConfigPerProvider(t *testing.T) {
	g, err := OAuthConfig(model.ProviderGoogle, "id", "secret")
	require.NoError(t, err)
	assert.Contains(t, g.Scopes, GoogleDriveScope)
	assert.Equal(t, RedirectURL, g.RedirectURL)

	m, err := OAuthConfig(model.ProviderMicrosoft, "id", "secret")
	require.NoError(t, err)
	assert.Contains(t, m.Scopes, MicrosoftOfflineScope)
	assert.Contains(t, m.Endpoint.AuthURL, "common")

	_, err = OAuthConfig(model.ProviderLocal, "id", "secret")
	assert.Error(t, err)
}

type staticSource struct {
	token *oauth2.Token
	err   error
}

func (s staticSource) Token() (*oauth2.Token, error) { return s.token, s.err }

func TestCredentialConvertsToken(t *testing.T) {
	expiry := time.Now().Add(time.Hour)
	cred := &Credential{TS: staticSource{token: &oauth2.Token{AccessToken: "abc", Expiry: expiry}}}

	tok, err := cred.GetToken(context.Background(), policy.TokenRequestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.Token)
	assert.Equal(t, expiry, tok.ExpiresOn)

	failing := &Credential{TS: staticSource{err: errors.New("revoked")}}
	_, err = failing.GetToken(context.Background(), policy.TokenRequestOptions{})
	assert.Error(t, err)
}
