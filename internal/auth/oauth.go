// StageGate - Stage-Gate Project Portfolio Management
// Copyright 2026 StageGate Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stagegatehq/stagegate

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/stagegatehq/stagegate/internal/config"
)

// OAuth provider names.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
	ProviderEntra  = "entra"
)

// googleIssuer is Google's fixed OIDC issuer.
const googleIssuer = "https://accounts.google.com"

// githubUserEndpoint returns the authenticated user's profile. GitHub
// is plain OAuth2, not OIDC, so identity comes from this API call
// instead of an ID token.
const githubUserEndpoint = "https://api.github.com/user"

// OAuthIdentity is the provider-verified identity extracted at the end
// of an authorization-code flow.
type OAuthIdentity struct {
	// Subject is the provider-scoped stable user identifier.
	Subject string

	// Email is the account email reported by the provider.
	Email string

	// Name is the display name reported by the provider.
	Name string

	// EmailVerified is the provider's verification assertion.
	EmailVerified bool
}

// OAuthProvider is one configured relying-party registration.
type OAuthProvider interface {
	// Name returns the provider identifier used in routes and state.
	Name() string

	// AuthURL returns the provider authorization URL for a flow state.
	AuthURL(state string) string

	// Exchange redeems an authorization code for the user's identity.
	Exchange(ctx context.Context, code string) (*OAuthIdentity, error)
}

// NewProviders builds the configured OAuth providers. Providers without
// credentials are skipped; a deployment may run with any subset.
func NewProviders(ctx context.Context, cfg *config.AuthConfig) (map[string]OAuthProvider, error) {
	providers := make(map[string]OAuthProvider)

	if cfg.Google.Enabled() {
		p, err := newOIDCProvider(ctx, ProviderGoogle, googleIssuer, cfg.Google)
		if err != nil {
			return nil, fmt.Errorf("configure google provider: %w", err)
		}
		providers[ProviderGoogle] = p
	}

	if cfg.GitHub.Enabled() {
		providers[ProviderGitHub] = newGitHubProvider(cfg.GitHub)
	}

	if cfg.Entra.Enabled() {
		p, err := newOIDCProvider(ctx, ProviderEntra, cfg.Entra.Issuer(), config.OAuthProviderConfig{
			ClientID:     cfg.Entra.ClientID,
			ClientSecret: cfg.Entra.ClientSecret,
			RedirectURL:  cfg.Entra.RedirectURL,
			Scopes:       cfg.Entra.Scopes,
		})
		if err != nil {
			return nil, fmt.Errorf("configure entra provider: %w", err)
		}
		providers[ProviderEntra] = p
	}

	return providers, nil
}

// Provider returns the configured OAuth provider by name, or
// ErrUnknownProvider for names no deployment credentials were given for.
func (c *Config) Provider(name string) (OAuthProvider, error) {
	p, ok := c.Providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

// oidcProvider wraps a zitadel/oidc relying party for OIDC-capable
// providers (Google, Entra).
type oidcProvider struct {
	name string
	rp   rp.RelyingParty
}

func newOIDCProvider(ctx context.Context, name, issuer string, cfg config.OAuthProviderConfig) (*oidcProvider, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	party, err := rp.NewRelyingPartyOIDC(ctx,
		issuer,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		cfg.Scopes,
		rp.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", name, err)
	}
	return &oidcProvider{name: name, rp: party}, nil
}

func (p *oidcProvider) Name() string {
	return p.name
}

func (p *oidcProvider) AuthURL(state string) string {
	return rp.AuthURL(state, p.rp)
}

func (p *oidcProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, p.rp)
	if err != nil {
		return nil, fmt.Errorf("code exchange with %s: %w", p.name, err)
	}
	claims := tokens.IDTokenClaims
	if claims == nil {
		return nil, fmt.Errorf("%s returned no id token", p.name)
	}
	return &OAuthIdentity{
		Subject:       claims.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: bool(claims.EmailVerified),
	}, nil
}

// githubProvider speaks plain OAuth2 and fetches identity from the
// GitHub user API.
type githubProvider struct {
	cfg    *oauth2.Config
	client *http.Client
}

func newGitHubProvider(cfg config.OAuthProviderConfig) *githubProvider {
	return &githubProvider{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     githuboauth.Endpoint,
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *githubProvider) Name() string {
	return ProviderGitHub
}

func (p *githubProvider) AuthURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *githubProvider) Exchange(ctx context.Context, code string) (*OAuthIdentity, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange with github: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubUserEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build github user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch github user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github user endpoint returned %d", resp.StatusCode)
	}

	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode github user: %w", err)
	}

	name := payload.Name
	if name == "" {
		name = payload.Login
	}

	return &OAuthIdentity{
		Subject: fmt.Sprintf("%d", payload.ID),
		Email:   payload.Email,
		Name:    name,
		// GitHub's user API only reports emails the account controls.
		EmailVerified: payload.Email != "",
	}, nil
}
