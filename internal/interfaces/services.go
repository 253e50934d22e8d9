package interfaces

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/bobmcallan/dayplan/internal/models"
)

// TokenCache manages the per-user, per-provider OAuth token lifecycle.
// Resolve distinguishes "I can proceed silently" from "a human must run
// the grant flow" — the latter surfaces as ErrAuthorizationRequired from
// the tokencache package, never as a generic failure.
type TokenCache interface {
	Resolve(ctx context.Context, email string, provider models.TokenProvider) (*oauth2.Token, error)
	Store(ctx context.Context, email string, provider models.TokenProvider, token *oauth2.Token) error
	AuthURL(ctx context.Context, email string, provider models.TokenProvider, state string) (string, error)
	Exchange(ctx context.Context, email string, provider models.TokenProvider, code string) (*oauth2.Token, error)
}

// AdviceEngine turns structured data into prose advice via the hosted
// generative model, plus a deterministic decision label for market series.
type AdviceEngine interface {
	// MarketAdvice returns free-text advice and its classified decision.
	// An empty apiKey yields a fixed advisory string, No Decision, and no
	// model call. A model error yields an error-describing string; the
	// classifier then naturally lands on No Decision.
	MarketAdvice(ctx context.Context, apiKey, assetKind, symbol string, series models.PriceSeries) (string, models.Decision)

	// WeatherAdvice returns practical suggestions for current conditions.
	WeatherAdvice(ctx context.Context, apiKey, city string, report *models.WeatherReport) string

	// Horoscope returns today's horoscope for a zodiac sign.
	Horoscope(ctx context.Context, apiKey, sign string) (string, error)

	// SummarizeEmails condenses recent messages into bullet points.
	SummarizeEmails(ctx context.Context, apiKey string, emails []*models.EmailMessage) (string, error)

	// GenerateReplies produces exactly three reply options for a message.
	GenerateReplies(ctx context.Context, apiKey, emailBody string) ([]string, error)
}
