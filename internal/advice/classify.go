package advice

import (
	"strings"

	"github.com/bobmcallan/dayplan/internal/models"
)

// classifyOrder checks the compound labels before their substrings, so
// "Strong Buy" never degrades to "Buy".
var classifyOrder = []models.Decision{
	models.DecisionStrongBuy,
	models.DecisionStrongSell,
	models.DecisionBuy,
	models.DecisionSell,
	models.DecisionHold,
}

// Classify extracts the trading decision label from free-form advice
// text. Matching is an ordered case-insensitive substring scan; text
// containing no label classifies as No Decision.
func Classify(text string) models.Decision {
	lower := strings.ToLower(text)
	for _, d := range classifyOrder {
		if strings.Contains(lower, strings.ToLower(string(d))) {
			return d
		}
	}
	return models.DecisionNone
}
