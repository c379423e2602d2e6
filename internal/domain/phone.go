// internal/domain/phone.go
package domain

import "strings"

const (
	countryCode = "254"
	msisdnLen   = 12 // country code + 9 subscriber digits
)

// NormalizePhone canonicalizes a user-supplied phone string into the
// 254-prefixed 12-digit MSISDN the provider expects. Accepts local
// ("07...", "01...", bare "7..."/"1...") and international ("+254...",
// "254...") forms.
func NormalizePhone(input string) (string, error) {
	phone := strings.TrimSpace(input)
	phone = strings.ReplaceAll(phone, " ", "")

	if phone == "" {
		return "", NewValidationError("phoneNumber", "phone number is required")
	}

	phone = strings.TrimPrefix(phone, "+")
	switch {
	case strings.HasPrefix(phone, "0"):
		phone = countryCode + phone[1:]
	case len(phone) == 9 && (phone[0] == '7' || phone[0] == '1'):
		// Subscriber number with the leading zero already dropped.
		phone = countryCode + phone
	}

	if !strings.HasPrefix(phone, countryCode) {
		return "", NewValidationError("phoneNumber", "phone number must start with "+countryCode)
	}
	if len(phone) != msisdnLen {
		return "", NewValidationError("phoneNumber", "phone number must be 12 digits")
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return "", NewValidationError("phoneNumber", "phone number must contain digits only")
		}
	}

	return phone, nil
}
