// Package featureflags reads runtime toggles from the environment. The only
// flag currently honored is FLAG_SMTP_DISABLED, which swaps the SMTP mailer
// for a logging stand-in during local development.
package featureflags

import (
	"os"
	"strings"
)

// Enabled reports whether FLAG_<NAME> is set to a truthy value
// (1/true/yes/on, case-insensitive).
func Enabled(name string) bool {
	switch strings.ToLower(os.Getenv("FLAG_" + strings.ToUpper(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
