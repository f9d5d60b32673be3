package utils

import "crypto/subtle"

// PasswordsMatch reports whether the supplied delete password exactly equals
// the stored one. Passwords are stored and compared as plain text.
func PasswordsMatch(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}
