package advice

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/dayplan/internal/models"
	testcommon "github.com/bobmcallan/dayplan/test/common"
)

func sampleSeries(values ...float64) models.PriceSeries {
	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	series := make(models.PriceSeries, 0, len(values))
	for i, v := range values {
		series = append(series, models.PricePoint{Date: start.AddDate(0, 0, i), Value: v})
	}
	return series
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.Decision
	}{
		{"strong buy", "Decision: Strong Buy\n1. momentum", models.DecisionStrongBuy},
		{"strong sell", "Decision: Strong Sell", models.DecisionStrongSell},
		{"buy", "Decision: Buy", models.DecisionBuy},
		{"sell", "Decision: Sell", models.DecisionSell},
		{"hold", "Decision: Hold", models.DecisionHold},
		{"no label", "the outlook is unclear", models.DecisionNone},
		{"empty", "", models.DecisionNone},
		{"case insensitive", "decision: strong buy", models.DecisionStrongBuy},
		// Compound labels win over their substrings regardless of position
		{"buy before strong buy", "Consider Buy, or better, Strong Buy here", models.DecisionStrongBuy},
		{"sell before strong sell", "Sell now. In fact: Strong Sell.", models.DecisionStrongSell},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestMarketAdvice_MissingKey(t *testing.T) {
	factory := &testcommon.FakeGenAIFactory{Client: &testcommon.FakeGenAIClient{}}
	engine := NewEngine(factory.Factory(), nil)

	text, decision := engine.MarketAdvice(context.Background(), "", "stock", "AAPL", sampleSeries(100, 110))

	assert.Equal(t, MissingKeyAdvice, text)
	assert.Equal(t, models.DecisionNone, decision)
	assert.Equal(t, 0, factory.Client.Calls)
	assert.Empty(t, factory.Keys)
}

func TestMarketAdvice_ClassifiesResponse(t *testing.T) {
	client := &testcommon.FakeGenAIClient{Responses: []string{"Decision: Strong Buy\n1. up 20%\n2. volume\n3. trend"}}
	factory := &testcommon.FakeGenAIFactory{Client: client}
	engine := NewEngine(factory.Factory(), nil)

	text, decision := engine.MarketAdvice(context.Background(), "key-1", "crypto", "BTC", sampleSeries(100, 105, 120))

	assert.Equal(t, models.DecisionStrongBuy, decision)
	assert.Contains(t, text, "Strong Buy")
	assert.Equal(t, []string{"key-1"}, factory.Keys)
}

func TestMarketAdvice_PromptContents(t *testing.T) {
	client := &testcommon.FakeGenAIClient{Responses: []string{"Decision: Hold"}}
	factory := &testcommon.FakeGenAIFactory{Client: client}
	engine := NewEngine(factory.Factory(), nil)

	series := sampleSeries(100, 102, 120)
	engine.MarketAdvice(context.Background(), "key", "stock", "MSFT", series)

	require.Len(t, client.Prompts, 1)
	prompt := client.Prompts[0]
	assert.Contains(t, prompt, "MSFT")
	assert.Contains(t, prompt, "Last price: 120.00")
	assert.Contains(t, prompt, "30-day change: 20.00%")
	assert.Contains(t, prompt, "Strong Sell")
	assert.Contains(t, prompt, "Decision:")
	assert.Contains(t, prompt, "3 numbered reasons")
}

func TestMarketAdvice_ModelError(t *testing.T) {
	factory := &testcommon.FakeGenAIFactory{Client: &testcommon.FakeGenAIClient{Err: errors.New("quota exhausted")}}
	engine := NewEngine(factory.Factory(), nil)

	text, decision := engine.MarketAdvice(context.Background(), "key", "stock", "AAPL", sampleSeries(100, 101))

	assert.True(t, strings.HasPrefix(text, "LLM error:"), "got %q", text)
	assert.Contains(t, text, "quota exhausted")
	assert.Equal(t, models.DecisionNone, decision)
}

func TestWeatherAdvice(t *testing.T) {
	report := &models.WeatherReport{Temp: 31, FeelsLike: 34, Humidity: 70, Pressure: 1008, Condition: "clear sky", WindSpeed: 2}

	t.Run("missing key", func(t *testing.T) {
		factory := &testcommon.FakeGenAIFactory{Client: &testcommon.FakeGenAIClient{}}
		engine := NewEngine(factory.Factory(), nil)
		text := engine.WeatherAdvice(context.Background(), "", "Delhi", report)
		assert.Equal(t, MissingKeyAdvice, text)
		assert.Equal(t, 0, factory.Client.Calls)
	})

	t.Run("prompt and response", func(t *testing.T) {
		client := &testcommon.FakeGenAIClient{Responses: []string{"- carry water\n- sunscreen\n- light clothes\n- avoid noon"}}
		factory := &testcommon.FakeGenAIFactory{Client: client}
		engine := NewEngine(factory.Factory(), nil)

		text := engine.WeatherAdvice(context.Background(), "key", "Delhi", report)
		assert.Contains(t, text, "carry water")

		require.Len(t, client.Prompts, 1)
		assert.Contains(t, client.Prompts[0], "Delhi")
		assert.Contains(t, client.Prompts[0], "clear sky")
		assert.Contains(t, client.Prompts[0], "exactly 4 bullet points")
	})
}

func TestHoroscope(t *testing.T) {
	client := &testcommon.FakeGenAIClient{Responses: []string{"  A good day for Leo. Focus pays off.  "}}
	factory := &testcommon.FakeGenAIFactory{Client: client}
	engine := NewEngine(factory.Factory(), nil)

	text, err := engine.Horoscope(context.Background(), "key", "Leo")
	require.NoError(t, err)
	assert.Equal(t, "A good day for Leo. Focus pays off.", text)
	assert.Contains(t, client.Prompts[0], "Leo")

	_, err = engine.Horoscope(context.Background(), "", "Leo")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestSummarizeEmails(t *testing.T) {
	emails := []*models.EmailMessage{
		{From: "alice@example.com", Subject: "Standup moved", Body: "Standup is now at 10."},
		{From: "bob@example.com", Subject: "Invoice", Body: "Please approve invoice 42."},
	}

	client := &testcommon.FakeGenAIClient{Responses: []string{"- alice: standup at 10\n- bob: approve invoice 42"}}
	factory := &testcommon.FakeGenAIFactory{Client: client}
	engine := NewEngine(factory.Factory(), nil)

	summary, err := engine.SummarizeEmails(context.Background(), "key", emails)
	require.NoError(t, err)
	assert.Contains(t, summary, "alice")

	prompt := client.Prompts[0]
	assert.Contains(t, prompt, "alice@example.com")
	assert.Contains(t, prompt, "invoice 42")
}

func TestSummarizeEmails_Empty(t *testing.T) {
	factory := &testcommon.FakeGenAIFactory{Client: &testcommon.FakeGenAIClient{}}
	engine := NewEngine(factory.Factory(), nil)

	summary, err := engine.SummarizeEmails(context.Background(), "key", nil)
	require.NoError(t, err)
	assert.Contains(t, summary, "No new emails")
	assert.Equal(t, 0, factory.Client.Calls)
}

func TestGenerateReplies(t *testing.T) {
	response := "Here are options:\n1. Yes, works for me.\n2. Can we do Friday instead?\n3. Declining this one, sorry."
	client := &testcommon.FakeGenAIClient{Responses: []string{response}}
	factory := &testcommon.FakeGenAIFactory{Client: client}
	engine := NewEngine(factory.Factory(), nil)

	replies, err := engine.GenerateReplies(context.Background(), "key", "Can you meet Thursday?")
	require.NoError(t, err)
	require.Len(t, replies, 3)
	assert.Equal(t, "Yes, works for me.", replies[0])
	assert.Equal(t, "Can we do Friday instead?", replies[1])
	assert.Equal(t, "Declining this one, sorry.", replies[2])
}

func TestGenerateReplies_Unparseable(t *testing.T) {
	client := &testcommon.FakeGenAIClient{Responses: []string{"I cannot help with that."}}
	factory := &testcommon.FakeGenAIFactory{Client: client}
	engine := NewEngine(factory.Factory(), nil)

	_, err := engine.GenerateReplies(context.Background(), "key", "hello")
	assert.Error(t, err)
}
