package models

import "fmt"

// Slot is a named credential field on a user record. The set is closed:
// requesting a slot outside this list is an error, never a dynamic field
// access.
type Slot string

const (
	SlotGeminiKey    Slot = "google_gemini_api_key"
	SlotClientSecret Slot = "client_secret_json"
	SlotWeatherKey   Slot = "weather_api"
	SlotTMDBKey      Slot = "tmdb_api"
	SlotNewsKey      Slot = "news_api"
	SlotMapsKey      Slot = "google_map_api"
	SlotZodiacSign   Slot = "zodiac_sign"
)

// Slots lists every valid credential slot.
var Slots = []Slot{
	SlotGeminiKey,
	SlotClientSecret,
	SlotWeatherKey,
	SlotTMDBKey,
	SlotNewsKey,
	SlotMapsKey,
	SlotZodiacSign,
}

// InvalidSlotError reports a credential slot name outside the allow-list.
type InvalidSlotError struct {
	Name string
}

func (e *InvalidSlotError) Error() string {
	return fmt.Sprintf("invalid credential slot %q", e.Name)
}

// ParseSlot validates a slot name against the closed set.
func ParseSlot(name string) (Slot, error) {
	for _, s := range Slots {
		if string(s) == name {
			return s, nil
		}
	}
	return "", &InvalidSlotError{Name: name}
}

// CascadeClears returns the token providers whose bundles are invalidated
// when this slot changes. Only the client secret descriptor cascades: a new
// OAuth app identity makes tokens from the old one worthless.
func (s Slot) CascadeClears() []TokenProvider {
	if s == SlotClientSecret {
		return []TokenProvider{ProviderCalendar, ProviderGmail}
	}
	return nil
}
