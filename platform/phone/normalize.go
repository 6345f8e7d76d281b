package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeE164 formats a manually entered phone number to E.164 for the given
// region. Unlike Extract, this path runs the full libphonenumber validation:
// an operator typing a number by hand gets a strict check rather than the
// extraction table. Returns the formatted number and whether it is valid.
func NormalizeE164(input, region string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	number, err := phonenumbers.Parse(trimmed, strings.ToUpper(strings.TrimSpace(region)))
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsValidNumber(number) {
		return "", false
	}

	return phonenumbers.Format(number, phonenumbers.E164), true
}
