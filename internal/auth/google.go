package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// GoogleProfile is the subset of the Google userinfo response the
// reconciliation flow needs.
type GoogleProfile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// GoogleAuthenticator drives the OAuth consent/exchange flow against
// Google. It is constructed once at bootstrap and injected; there is no
// package-level registration.
type GoogleAuthenticator struct {
	cfg *oauth2.Config
}

func NewGoogleAuthenticator(clientID, clientSecret, redirectURL string) *GoogleAuthenticator {
	if clientID == "" || clientSecret == "" {
		return &GoogleAuthenticator{}
	}
	return &GoogleAuthenticator{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// Enabled reports whether Google credentials were configured.
func (g *GoogleAuthenticator) Enabled() bool {
	return g.cfg != nil
}

// AuthURL returns the consent page URL carrying the given state token.
func (g *GoogleAuthenticator) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the callback code for an access token.
func (g *GoogleAuthenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}
	return token, nil
}

// FetchProfile retrieves the authenticated user's Google profile.
func (g *GoogleAuthenticator) FetchProfile(ctx context.Context, token *oauth2.Token) (GoogleProfile, error) {
	svc, err := googleoauth2.NewService(ctx, option.WithTokenSource(g.cfg.TokenSource(ctx, token)))
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("oauth2 service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}

	return GoogleProfile{
		ID:      info.Id,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
