package models

import "time"

// User represents a planner account stored in dayplan-server.
// Credential slots and token bundles live on the user record itself so a
// single keyed read resolves everything a request needs.
type User struct {
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`

	GeminiKey    string `json:"google_gemini_api_key,omitempty"`
	WeatherKey   string `json:"weather_api,omitempty"`
	TMDBKey      string `json:"tmdb_api,omitempty"`
	NewsKey      string `json:"news_api,omitempty"`
	MapsKey      string `json:"google_map_api,omitempty"`
	ClientSecret string `json:"client_secret_json,omitempty"`
	ZodiacSign   string `json:"zodiac_sign,omitempty"`

	// Serialized OAuth token bundles, one per provider.
	CalendarToken string `json:"google_calendar_token,omitempty"`
	GmailToken    string `json:"google_gmail_token,omitempty"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// Credential returns the value stored in the given slot.
func (u *User) Credential(slot Slot) string {
	switch slot {
	case SlotGeminiKey:
		return u.GeminiKey
	case SlotWeatherKey:
		return u.WeatherKey
	case SlotTMDBKey:
		return u.TMDBKey
	case SlotNewsKey:
		return u.NewsKey
	case SlotMapsKey:
		return u.MapsKey
	case SlotClientSecret:
		return u.ClientSecret
	case SlotZodiacSign:
		return u.ZodiacSign
	}
	return ""
}

// SetCredential writes the value into the given slot, applying the
// cascade: replacing the OAuth client secret invalidates any token bundle
// minted under the old application identity.
func (u *User) SetCredential(slot Slot, value string) {
	switch slot {
	case SlotGeminiKey:
		u.GeminiKey = value
	case SlotWeatherKey:
		u.WeatherKey = value
	case SlotTMDBKey:
		u.TMDBKey = value
	case SlotNewsKey:
		u.NewsKey = value
	case SlotMapsKey:
		u.MapsKey = value
	case SlotClientSecret:
		u.ClientSecret = value
		u.CalendarToken = ""
		u.GmailToken = ""
	case SlotZodiacSign:
		u.ZodiacSign = value
	}
}

// Token returns the serialized token bundle for a provider.
func (u *User) Token(provider TokenProvider) string {
	switch provider {
	case ProviderCalendar:
		return u.CalendarToken
	case ProviderGmail:
		return u.GmailToken
	}
	return ""
}

// SetToken stores the serialized token bundle for a provider.
func (u *User) SetToken(provider TokenProvider, bundle string) {
	switch provider {
	case ProviderCalendar:
		u.CalendarToken = bundle
	case ProviderGmail:
		u.GmailToken = bundle
	}
}
