package surrealdb

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealdb.go"

	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// ExpenseStore persists expense entries for the report generator.
type ExpenseStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewExpenseStore(db *surrealdb.DB, logger *common.Logger) *ExpenseStore {
	return &ExpenseStore{
		db:     db,
		logger: logger,
	}
}

func (s *ExpenseStore) AddExpense(ctx context.Context, expense *models.Expense) error {
	sql := "CREATE expense CONTENT $expense"
	vars := map[string]any{"expense": expense}
	if _, err := surrealdb.Query[[]models.Expense](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to add expense: %w", err)
	}
	return nil
}

func (s *ExpenseStore) ListExpenses(ctx context.Context, email, fromDate, toDate string) ([]*models.Expense, error) {
	sql := "SELECT * FROM expense WHERE email = $email"
	vars := map[string]any{"email": email}

	if fromDate != "" {
		sql += " AND date >= $from"
		vars["from"] = fromDate
	}
	if toDate != "" {
		sql += " AND date <= $to"
		vars["to"] = toDate
	}
	sql += " ORDER BY date ASC"

	results, err := surrealdb.Query[[]models.Expense](ctx, s.db, sql, vars)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	if results != nil && len(*results) > 0 {
		var mapped []*models.Expense
		for i := range (*results)[0].Result {
			mapped = append(mapped, &(*results)[0].Result[i])
		}
		return mapped, nil
	}
	return nil, nil
}

func (s *ExpenseStore) ExpenseDateRange(ctx context.Context, email string) (string, string, error) {
	type dateRange struct {
		MinDate string `json:"min_date"`
		MaxDate string `json:"max_date"`
	}

	sql := "SELECT math::min(date) AS min_date, math::max(date) AS max_date FROM expense WHERE email = $email GROUP ALL"
	vars := map[string]any{"email": email}

	results, err := surrealdb.Query[[]dateRange](ctx, s.db, sql, vars)
	if err != nil {
		return "", "", fmt.Errorf("failed to query expense date range: %w", err)
	}

	if results != nil && len(*results) > 0 && len((*results)[0].Result) > 0 {
		r := (*results)[0].Result[0]
		return r.MinDate, r.MaxDate, nil
	}
	return "", "", nil
}

// Compile-time check
var _ interfaces.ExpenseStore = (*ExpenseStore)(nil)
