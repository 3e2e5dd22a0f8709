package auth

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"golang.org/x/oauth2"
)

// TokenSource returns a caching token source that refreshes from the stored
// refresh token.
func TokenSource(ctx context.Context, config *oauth2.Config, refreshToken string) oauth2.TokenSource {
	return config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

// ValidateToken checks that a refresh token can still be exchanged
func ValidateToken(ctx context.Context, config *oauth2.Config, refreshToken string) error {
	if _, err := TokenSource(ctx, config, refreshToken).Token(); err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	return nil
}

// Credential lets an oauth2 token source authenticate Microsoft Graph
// requests. The requested scopes are ignored; the token carries the scopes
// granted at consent time.
type Credential struct {
	TS oauth2.TokenSource
}

var _ azcore.TokenCredential = (*Credential)(nil)

func (c *Credential) GetToken(ctx context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	token, err := c.TS.Token()
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{
		Token:     token.AccessToken,
		ExpiresOn: token.Expiry,
	}, nil
}
