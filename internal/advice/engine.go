// Package advice turns structured planner data into prose suggestions
// via the hosted generative model, plus a deterministic decision label
// for market series. The model client is built per request from the
// user's own API key.
package advice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// MissingKeyAdvice is returned verbatim when the user has no Gemini key.
// No model call is made in that case.
const MissingKeyAdvice = "LLM suggestions unavailable: Missing Gemini API Key."

// ErrMissingKey is returned by the error-returning methods when called
// without a Gemini key. Handlers normally short-circuit before that.
var ErrMissingKey = errors.New("missing gemini api key")

// Engine implements interfaces.AdviceEngine.
type Engine struct {
	factory interfaces.GenAIFactory
	logger  *common.Logger
}

// NewEngine creates an advice engine backed by the given client factory.
func NewEngine(factory interfaces.GenAIFactory, logger *common.Logger) *Engine {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Engine{factory: factory, logger: logger}
}

// generate builds a client for the key and runs one prompt.
func (e *Engine) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	client, err := e.factory(ctx, apiKey)
	if err != nil {
		return "", fmt.Errorf("failed to create model client: %w", err)
	}
	return client.GenerateContent(ctx, prompt)
}

// MarketAdvice returns advice text and its classified decision for a
// price series. Failures degrade to descriptive text rather than errors:
// market responses always carry an advice string.
func (e *Engine) MarketAdvice(ctx context.Context, apiKey, assetKind, symbol string, series models.PriceSeries) (string, models.Decision) {
	if apiKey == "" {
		return MissingKeyAdvice, models.DecisionNone
	}

	text, err := e.generate(ctx, apiKey, buildMarketPrompt(assetKind, symbol, series))
	if err != nil {
		e.logger.Warn().Err(err).Str("symbol", symbol).Msg("Market advice generation failed")
		return fmt.Sprintf("LLM error: %v", err), models.DecisionNone
	}
	return text, Classify(text)
}

// WeatherAdvice returns planning suggestions for current conditions.
func (e *Engine) WeatherAdvice(ctx context.Context, apiKey, city string, report *models.WeatherReport) string {
	if apiKey == "" {
		return MissingKeyAdvice
	}

	text, err := e.generate(ctx, apiKey, buildWeatherPrompt(city, report))
	if err != nil {
		e.logger.Warn().Err(err).Str("city", city).Msg("Weather advice generation failed")
		return fmt.Sprintf("LLM error: %v", err)
	}
	return text
}

// Horoscope returns today's horoscope for a zodiac sign.
func (e *Engine) Horoscope(ctx context.Context, apiKey, sign string) (string, error) {
	if apiKey == "" {
		return "", ErrMissingKey
	}

	text, err := e.generate(ctx, apiKey, buildHoroscopePrompt(sign))
	if err != nil {
		return "", fmt.Errorf("failed to generate horoscope: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// SummarizeEmails condenses recent messages into bullet points.
func (e *Engine) SummarizeEmails(ctx context.Context, apiKey string, emails []*models.EmailMessage) (string, error) {
	if apiKey == "" {
		return "", ErrMissingKey
	}
	if len(emails) == 0 {
		return "No new emails in the last 48 hours.", nil
	}

	text, err := e.generate(ctx, apiKey, buildEmailSummaryPrompt(emails))
	if err != nil {
		return "", fmt.Errorf("failed to summarize emails: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// GenerateReplies produces exactly three reply options for a message.
func (e *Engine) GenerateReplies(ctx context.Context, apiKey, emailBody string) ([]string, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	text, err := e.generate(ctx, apiKey, buildReplyPrompt(emailBody))
	if err != nil {
		return nil, fmt.Errorf("failed to generate replies: %w", err)
	}

	replies := parseReplies(text)
	if len(replies) != 3 {
		return nil, fmt.Errorf("expected 3 numbered replies, could not parse model output")
	}
	return replies, nil
}

// Compile-time check
var _ interfaces.AdviceEngine = (*Engine)(nil)
