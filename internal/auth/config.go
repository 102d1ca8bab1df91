package auth

import "time"

// Config holds the settings of the auth flow.
type Config struct {
	CookieDays int
	Production bool
	// BaseURL prefixes reset links. Empty means the request's own origin.
	BaseURL string
}

func (c Config) cookieTTL() time.Duration {
	days := c.CookieDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}
