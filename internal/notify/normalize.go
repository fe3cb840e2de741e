package notify

import (
	"regexp"
	"strings"
)

// localSubscriber matches a bare 10-digit Indian mobile number.
var localSubscriber = regexp.MustCompile(`^[6-9]\d{9}$`)

// Normalize coerces a destination into the provider's expected format.
// Numbers already in international form pass through, bare 10-digit
// local numbers get the default country code, and anything else passes
// through unchanged as a deliberate fallback rather than an error.
func Normalize(number, defaultCountryCode string) string {
	s := strings.Join(strings.Fields(number), "")
	if strings.HasPrefix(s, "+") {
		return s
	}
	if localSubscriber.MatchString(s) {
		return defaultCountryCode + s
	}
	return s
}
