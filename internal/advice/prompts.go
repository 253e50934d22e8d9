package advice

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/dayplan/internal/models"
)

// promptTailSamples is how many recent samples the market prompt embeds.
const promptTailSamples = 10

// buildMarketPrompt creates the advice prompt for a stock or crypto series.
// The threshold table and the fixed output format keep the model's answer
// classifiable by substring.
func buildMarketPrompt(assetKind, symbol string, series models.PriceSeries) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a market analyst. Give short-term advice for the %s %s.\n\n", assetKind, symbol))
	sb.WriteString(fmt.Sprintf("Last price: %.2f\n", series.Last()))
	sb.WriteString(fmt.Sprintf("30-day change: %.2f%%\n", series.PctChange()))
	sb.WriteString(fmt.Sprintf("30-day high: %.2f, low: %.2f\n\n", series.High(), series.Low()))

	sb.WriteString("Recent samples:\n")
	for _, p := range series.Tail(promptTailSamples) {
		sb.WriteString(fmt.Sprintf("%s: %.2f\n", p.Date.Format("2006-01-02"), p.Value))
	}

	sb.WriteString("\nDecide using the 30-day change:\n")
	sb.WriteString("above +15%: Strong Buy\n")
	sb.WriteString("+5% to +15%: Buy\n")
	sb.WriteString("-5% to +5%: Hold\n")
	sb.WriteString("-15% to -5%: Sell\n")
	sb.WriteString("below -15%: Strong Sell\n\n")

	sb.WriteString("Respond in exactly this format:\n")
	sb.WriteString("Decision: <Strong Buy|Buy|Hold|Sell|Strong Sell>\n")
	sb.WriteString("Then exactly 3 numbered reasons, each at most 15 words.\n")

	return sb.String()
}

// buildWeatherPrompt asks for practical suggestions for today's conditions.
func buildWeatherPrompt(city string, report *models.WeatherReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Current weather in %s:\n", city))
	sb.WriteString(fmt.Sprintf("Temperature: %.1f C (feels like %.1f C)\n", report.Temp, report.FeelsLike))
	sb.WriteString(fmt.Sprintf("Condition: %s\n", report.Condition))
	sb.WriteString(fmt.Sprintf("Humidity: %d%%, pressure: %d hPa, wind: %.1f m/s\n\n", report.Humidity, report.Pressure, report.WindSpeed))

	sb.WriteString("Give practical suggestions for planning today around this weather.\n")
	sb.WriteString("Respond with exactly 4 bullet points, each at most 16 words.\n")

	return sb.String()
}

// buildHoroscopePrompt asks for today's horoscope for a zodiac sign.
func buildHoroscopePrompt(sign string) string {
	return fmt.Sprintf(
		"Write today's horoscope for %s in 3 to 4 sentences. "+
			"Cover mood, work and relationships. Plain text, no headings.", sign)
}

// buildEmailSummaryPrompt condenses recent messages into bullets.
func buildEmailSummaryPrompt(emails []*models.EmailMessage) string {
	var sb strings.Builder

	sb.WriteString("Summarize the following emails as concise bullet points, one per email, ")
	sb.WriteString("mentioning the sender and what is being asked or announced.\n\n")

	for i, e := range emails {
		sb.WriteString(fmt.Sprintf("Email %d\nFrom: %s\nSubject: %s\n%s\n\n", i+1, e.From, e.Subject, e.Body))
	}

	return sb.String()
}

// buildReplyPrompt asks for exactly three numbered reply options.
func buildReplyPrompt(emailBody string) string {
	var sb strings.Builder

	sb.WriteString("Draft reply options for this email:\n\n")
	sb.WriteString(emailBody)
	sb.WriteString("\n\nRespond with exactly 3 reply options, numbered \"1.\", \"2.\" and \"3.\", ")
	sb.WriteString("each a complete, ready-to-send reply. No other text.")

	return sb.String()
}

// parseReplies splits model output into the three numbered reply options.
// Markers are searched in order; text before "1." is discarded.
func parseReplies(text string) []string {
	markers := []string{"1.", "2.", "3."}
	positions := make([]int, 0, len(markers))

	offset := 0
	for _, m := range markers {
		idx := strings.Index(text[offset:], m)
		if idx < 0 {
			return nil
		}
		positions = append(positions, offset+idx)
		offset += idx + len(m)
	}

	replies := make([]string, 0, len(markers))
	for i, pos := range positions {
		start := pos + len(markers[i])
		end := len(text)
		if i+1 < len(positions) {
			end = positions[i+1]
		}
		replies = append(replies, strings.TrimSpace(text[start:end]))
	}
	return replies
}
