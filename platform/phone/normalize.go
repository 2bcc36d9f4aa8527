// Package phone normalizes lead phone numbers before they reach the call
// provider, which only accepts E.164.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Region assumed for numbers without a country prefix.
const defaultRegion = "US"

// NormalizeE164 returns the E.164 form of input. Unparseable or invalid
// numbers come back trimmed but otherwise untouched; the caller stores
// whatever the lead source provided rather than dropping the field.
func NormalizeE164(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	parsed, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return trimmed
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
