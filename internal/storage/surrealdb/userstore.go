package surrealdb

import (
	"context"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/bobmcallan/dayplan/internal/common"
	"github.com/bobmcallan/dayplan/internal/interfaces"
	"github.com/bobmcallan/dayplan/internal/models"
)

// UserStore persists user records keyed by email. Credential and token
// writes are single-field updates so concurrent writes to different
// slots of the same user never clobber each other.
type UserStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewUserStore(db *surrealdb.DB, logger *common.Logger) *UserStore {
	return &UserStore{
		db:     db,
		logger: logger,
	}
}

// tokenField maps a provider to its column on the user record.
func tokenField(provider models.TokenProvider) (string, error) {
	switch provider {
	case models.ProviderCalendar:
		return "google_calendar_token", nil
	case models.ProviderGmail:
		return "google_gmail_token", nil
	}
	return "", fmt.Errorf("unknown token provider: %s", provider)
}

func (s *UserStore) GetUser(ctx context.Context, email string) (*models.User, error) {
	user, err := surrealdb.Select[models.User](ctx, s.db, surrealmodels.NewRecordID("user", email))
	if err != nil {
		if isNotFoundError(err) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user: %w", err)
	}
	if user == nil || user.Email == "" {
		return nil, interfaces.ErrNotFound
	}
	return user, nil
}

func (s *UserStore) SaveUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.ModifiedAt = now

	sql := "UPSERT $rid CONTENT $user"
	vars := map[string]any{
		"rid":  surrealmodels.NewRecordID("user", user.Email),
		"user": user,
	}
	if _, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (s *UserStore) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return s.setField(ctx, email, "password_hash", passwordHash)
}

func (s *UserStore) GetCredential(ctx context.Context, email string, slot models.Slot) (string, error) {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Credential(slot), nil
}

// SetCredential writes one credential slot. The client secret slot also
// clears both token bundles in the same statement: every bundle was
// minted under the old application identity.
func (s *UserStore) SetCredential(ctx context.Context, email string, slot models.Slot, value string) error {
	if _, err := models.ParseSlot(string(slot)); err != nil {
		return err
	}

	sql := fmt.Sprintf("UPDATE $rid SET %s = $value, modified_at = $now", slot)
	if slot == models.SlotClientSecret {
		sql = "UPDATE $rid SET client_secret_json = $value, google_calendar_token = NONE, google_gmail_token = NONE, modified_at = $now"
	}
	vars := map[string]any{
		"rid":   surrealmodels.NewRecordID("user", email),
		"value": value,
		"now":   time.Now().UTC(),
	}
	if _, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to set credential %s: %w", slot, err)
	}
	return nil
}

func (s *UserStore) SetToken(ctx context.Context, email string, provider models.TokenProvider, bundle string) error {
	field, err := tokenField(provider)
	if err != nil {
		return err
	}
	return s.setField(ctx, email, field, bundle)
}

func (s *UserStore) ClearToken(ctx context.Context, email string, provider models.TokenProvider) error {
	field, err := tokenField(provider)
	if err != nil {
		return err
	}

	sql := fmt.Sprintf("UPDATE $rid SET %s = NONE, modified_at = $now", field)
	vars := map[string]any{
		"rid": surrealmodels.NewRecordID("user", email),
		"now": time.Now().UTC(),
	}
	if _, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to clear token %s: %w", provider, err)
	}
	return nil
}

func (s *UserStore) setField(ctx context.Context, email, field, value string) error {
	sql := fmt.Sprintf("UPDATE $rid SET %s = $value, modified_at = $now", field)
	vars := map[string]any{
		"rid":   surrealmodels.NewRecordID("user", email),
		"value": value,
		"now":   time.Now().UTC(),
	}
	if _, err := surrealdb.Query[[]models.User](ctx, s.db, sql, vars); err != nil {
		return fmt.Errorf("failed to update %s: %w", field, err)
	}
	return nil
}

// Compile-time check
var _ interfaces.UserStore = (*UserStore)(nil)
