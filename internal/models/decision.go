package models

// Decision is the discrete label classified out of model advice text.
type Decision string

const (
	DecisionStrongBuy  Decision = "Strong Buy"
	DecisionBuy        Decision = "Buy"
	DecisionHold       Decision = "Hold"
	DecisionSell       Decision = "Sell"
	DecisionStrongSell Decision = "Strong Sell"
	DecisionNone       Decision = "No Decision"
)
