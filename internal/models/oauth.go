package models

import "fmt"

// TokenProvider identifies which Google service a token bundle belongs to.
type TokenProvider string

const (
	ProviderCalendar TokenProvider = "calendar"
	ProviderGmail    TokenProvider = "gmail"
)

// TokenProviders lists every supported provider.
var TokenProviders = []TokenProvider{ProviderCalendar, ProviderGmail}

// ParseTokenProvider validates a provider name.
func ParseTokenProvider(name string) (TokenProvider, error) {
	for _, p := range TokenProviders {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown oauth provider %q", name)
}

// Scopes returns the OAuth scopes requested for a provider.
func (p TokenProvider) Scopes() []string {
	switch p {
	case ProviderCalendar:
		return []string{"https://www.googleapis.com/auth/calendar.events"}
	case ProviderGmail:
		return []string{
			"https://www.googleapis.com/auth/gmail.readonly",
			"https://www.googleapis.com/auth/gmail.send",
		}
	}
	return nil
}
