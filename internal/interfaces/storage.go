// Package interfaces defines the contracts between dayplan components.
package interfaces

import (
	"context"
	"errors"

	"github.com/bobmcallan/dayplan/internal/models"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("record not found")

// UserStore is keyed access to user records and their credential slots.
// Writes are single-field upserts: concurrent updates to different slots
// of the same user must not clobber each other.
type UserStore interface {
	// GetUser loads a user record by email.
	GetUser(ctx context.Context, email string) (*models.User, error)

	// SaveUser creates or replaces a full user record.
	SaveUser(ctx context.Context, user *models.User) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	// GetCredential reads one credential slot. Absent values read as "".
	GetCredential(ctx context.Context, email string, slot models.Slot) (string, error)

	// SetCredential writes one credential slot. Writing the client secret
	// descriptor cascade-clears both OAuth token bundles in the same
	// operation.
	SetCredential(ctx context.Context, email string, slot models.Slot, value string) error

	// SetToken persists a serialized token bundle for a provider.
	SetToken(ctx context.Context, email string, provider models.TokenProvider, bundle string) error

	// ClearToken removes the token bundle for a provider.
	ClearToken(ctx context.Context, email string, provider models.TokenProvider) error
}

// ExpenseStore persists expense entries for the report generator.
type ExpenseStore interface {
	AddExpense(ctx context.Context, expense *models.Expense) error
	ListExpenses(ctx context.Context, email, fromDate, toDate string) ([]*models.Expense, error)
	ExpenseDateRange(ctx context.Context, email string) (minDate, maxDate string, err error)
}

// StorageManager aggregates the stores backed by one database connection.
// Lifecycle is owned by the process entry point.
type StorageManager interface {
	UserStore() UserStore
	ExpenseStore() ExpenseStore
	Close() error
}
