package utils

// ValidPassword reports whether a password meets the account policy:
// at least one ASCII letter and at least one ASCII digit.
func ValidPassword(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
			letter = true
		case '0' <= r && r <= '9':
			digit = true
		}
	}
	return letter && digit
}
