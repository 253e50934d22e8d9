package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlot(t *testing.T) {
	for _, s := range Slots {
		parsed, err := ParseSlot(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSlot("password_hash")
	require.Error(t, err)
	var invalid *InvalidSlotError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "password_hash", invalid.Name)
}

func TestCascadeClears(t *testing.T) {
	assert.Equal(t, []TokenProvider{ProviderCalendar, ProviderGmail}, SlotClientSecret.CascadeClears())
	assert.Nil(t, SlotGeminiKey.CascadeClears())
	assert.Nil(t, SlotZodiacSign.CascadeClears())
}

func TestSetCredentialCascade(t *testing.T) {
	user := &User{
		Email:         "alice@example.com",
		CalendarToken: "cal-bundle",
		GmailToken:    "mail-bundle",
	}

	user.SetCredential(SlotClientSecret, `{"web":{}}`)

	assert.Equal(t, `{"web":{}}`, user.ClientSecret)
	assert.Empty(t, user.CalendarToken)
	assert.Empty(t, user.GmailToken)
}

func TestSetCredentialNoCascadeForOtherSlots(t *testing.T) {
	user := &User{
		CalendarToken: "cal-bundle",
		GmailToken:    "mail-bundle",
	}

	user.SetCredential(SlotWeatherKey, "wk-1")

	assert.Equal(t, "wk-1", user.WeatherKey)
	assert.Equal(t, "cal-bundle", user.CalendarToken)
	assert.Equal(t, "mail-bundle", user.GmailToken)
}

func TestParseTokenProvider(t *testing.T) {
	p, err := ParseTokenProvider("gmail")
	require.NoError(t, err)
	assert.Equal(t, ProviderGmail, p)

	_, err = ParseTokenProvider("dropbox")
	assert.Error(t, err)
}

func TestProviderScopes(t *testing.T) {
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar.events"}, ProviderCalendar.Scopes())
	assert.Len(t, ProviderGmail.Scopes(), 2)
}
