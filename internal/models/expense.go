package models

// Expense is one spend entry for the report generator. Date is stored as
// "2006-01-02" so range queries compare lexicographically.
type Expense struct {
	Email    string  `json:"email"`
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}
