package phone

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// NormalizeE164 parses a phone number and returns its E.164 form
// (+15551234567). countryCode is the ISO region used for numbers
// submitted without an international prefix; it defaults to US.
func NormalizeE164(phone, countryCode string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("phone number cannot be empty")
	}
	if countryCode == "" {
		countryCode = "US"
	}

	num, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}

	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// IsMobile reports whether the number can receive SMS (mobile or
// fixed-line-or-mobile).
func IsMobile(phone, countryCode string) bool {
	if countryCode == "" {
		countryCode = "US"
	}

	num, err := phonenumbers.Parse(phone, countryCode)
	if err != nil {
		return false
	}

	switch phonenumbers.GetNumberType(num) {
	case phonenumbers.MOBILE, phonenumbers.FIXED_LINE_OR_MOBILE:
		return true
	default:
		return false
	}
}
