// Package tokencache manages the per-user, per-provider OAuth token
// lifecycle: store, validate, refresh, re-authorize.
//
// A bundle is either absent, valid, refreshable (expired with a refresh
// token), or dead (expired without one). Resolve silently refreshes where
// it can and surfaces ErrAuthorizationRequired where a human must run the
// grant flow — an interactive consent screen cannot run inside a stateless
// request handler, so that outcome is a distinct signal, not an error
// condition to retry.
package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// ErrAuthorizationRequired signals that no usable token exists and the
// caller must initiate the interactive authorization-code flow.
var ErrAuthorizationRequired = errors.New("authorization required")

// ErrMissingClientSecret signals that the user has not supplied an OAuth
// client secret descriptor yet.
var ErrMissingClientSecret = errors.New("oauth client secret not configured")

// RefreshFunc exchanges a refresh token for a fresh bundle. The default
// uses the oauth2 token source; tests inject failures and successes.
type RefreshFunc func(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauth2.Token, error)

// Cache implements interfaces.TokenCache on top of a UserStore.
type Cache struct {
	users       interfaces.UserStore
	logger      *common.Logger
	redirectURL string
	refresh     RefreshFunc
	now         func() time.Time
}

// Option configures the cache
type Option func(*Cache)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithRefreshFunc overrides the refresh implementation. Tests only.
func WithRefreshFunc(refresh RefreshFunc) Option {
	return func(c *Cache) {
		c.refresh = refresh
	}
}

// WithClock overrides the expiry clock. Tests only.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a token cache. redirectURL is the server's external base URL
// used to build per-provider OAuth callback URLs.
func New(users interfaces.UserStore, redirectURL string, opts ...Option) *Cache {
	c := &Cache{
		users:       users,
		logger:      common.NewSilentLogger(),
		redirectURL: redirectURL,
		refresh:     defaultRefresh,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func defaultRefresh(ctx context.Context, conf *oauth2.Config, token *oauth2.Token) (*oauth2.Token, error) {
	return conf.TokenSource(ctx, token).Token()
}

// config builds the oauth2 config from the user's client secret descriptor.
func (c *Cache) config(user *models.User, provider models.TokenProvider) (*oauth2.Config, error) {
	if user.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}
	conf, err := google.ConfigFromJSON([]byte(user.ClientSecret), provider.Scopes()...)
	if err != nil {
		return nil, fmt.Errorf("invalid client secret descriptor: %w", err)
	}
	conf.RedirectURL = fmt.Sprintf("%s/api/oauth/%s/callback", c.redirectURL, provider)
	return conf, nil
}

// valid reports whether the bundle can be used as-is.
func (c *Cache) valid(token *oauth2.Token) bool {
	if token.AccessToken == "" {
		return false
	}
	return token.Expiry.IsZero() || token.Expiry.After(c.now())
}

// Resolve returns a usable token for (user, provider).
//
// Valid bundles return directly. Expired-but-refreshable bundles get
// exactly one refresh attempt: success persists the new bundle; failure
// clears it (dead) and returns ErrAuthorizationRequired — never a silent
// retry. Absent or dead bundles return ErrAuthorizationRequired.
func (c *Cache) Resolve(ctx context.Context, email string, provider models.TokenProvider) (*oauth2.Token, error) {
	user, err := c.users.GetUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	bundle := user.Token(provider)
	if bundle == "" {
		return nil, ErrAuthorizationRequired
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(bundle), &token); err != nil {
		c.logger.Warn().Err(err).Str("provider", string(provider)).Msg("Discarding unreadable token bundle")
		if err := c.users.ClearToken(ctx, email, provider); err != nil {
			return nil, fmt.Errorf("failed to clear token: %w", err)
		}
		return nil, ErrAuthorizationRequired
	}

	if c.valid(&token) {
		return &token, nil
	}

	if token.RefreshToken == "" {
		// Dead: expired with nothing to refresh from.
		if err := c.users.ClearToken(ctx, email, provider); err != nil {
			return nil, fmt.Errorf("failed to clear token: %w", err)
		}
		return nil, ErrAuthorizationRequired
	}

	conf, err := c.config(user, provider)
	if err != nil {
		return nil, err
	}

	fresh, err := c.refresh(ctx, conf, &token)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("user", email).
			Str("provider", string(provider)).
			Msg("Token refresh failed")
		if clearErr := c.users.ClearToken(ctx, email, provider); clearErr != nil {
			return nil, fmt.Errorf("failed to clear token: %w", clearErr)
		}
		return nil, ErrAuthorizationRequired
	}

	// Google omits the refresh token on refresh responses; carry it over.
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = token.RefreshToken
	}

	if err := c.Store(ctx, email, provider, fresh); err != nil {
		return nil, err
	}

	c.logger.Debug().Str("user", email).Str("provider", string(provider)).Msg("Token refreshed")
	return fresh, nil
}

// Store persists a token bundle, transitioning the state to valid.
func (c *Cache) Store(ctx context.Context, email string, provider models.TokenProvider, token *oauth2.Token) error {
	bundle, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}
	if err := c.users.SetToken(ctx, email, provider, string(bundle)); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	return nil
}

// AuthURL builds the authorization-code consent URL for the caller to
// visit. Offline access with forced consent so a refresh token is issued.
func (c *Cache) AuthURL(ctx context.Context, email string, provider models.TokenProvider, state string) (string, error) {
	user, err := c.users.GetUser(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	conf, err := c.config(user, provider)
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades an authorization code for a token bundle and stores it.
func (c *Cache) Exchange(ctx context.Context, email string, provider models.TokenProvider, code string) (*oauth2.Token, error) {
	user, err := c.users.GetUser(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	conf, err := c.config(user, provider)
	if err != nil {
		return nil, err
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := c.Store(ctx, email, provider, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Compile-time check
var _ interfaces.TokenCache = (*Cache)(nil)
