package dataverse

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// NewTokenSource returns a refreshing token source for the connection.
// Token requests use base as their HTTP client.
func NewTokenSource(ctx context.Context, cs *ConnectionString, base *http.Client) (oauth2.TokenSource, error) {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}

	switch cs.AuthType {
	case AuthClientSecret:
		cfg := &clientcredentials.Config{
			ClientID:     cs.ClientID,
			ClientSecret: cs.ClientSecret,
			TokenURL:     cs.TokenURL(),
			Scopes:       []string{cs.Scope()},
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		return cfg.TokenSource(ctx), nil
	case AuthOAuth:
		cfg := &oauth2.Config{
			ClientID:     cs.ClientID,
			ClientSecret: cs.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cs.TokenURL(),
				AuthStyle: oauth2.AuthStyleInParams,
			},
			Scopes: []string{cs.Scope()},
		}
		token, err := cfg.PasswordCredentialsToken(ctx, cs.Username, cs.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire token: %w", err)
		}
		return cfg.TokenSource(ctx, token), nil
	default:
		return nil, fmt.Errorf("%w: unsupported AuthType %q", ErrInvalidConnectionString, cs.AuthType)
	}
}
