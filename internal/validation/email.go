package validation

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail trims surrounding whitespace, applies Unicode NFC and
// lower-cases the domain. The local part is left as typed.
func NormalizeEmail(email string) string {
	email = norm.NFC.String(strings.TrimSpace(email))
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func (s *Schema) isEmail(email string) bool {
	return s.validate.Var(email, "required,email") == nil
}
