package utils

import "testing"

func TestValidPassword(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"abc123", true},
		{"A1", true},
		{"x9y8z7", true},
		{"", false},
		{"onlyletters", false},
		{"12345678", false},
		{"!!!???", false},
		{"pässwörter", false}, // non-ASCII letters alone do not satisfy the policy
		{"pass 1", true},
	}
	for _, tc := range cases {
		if got := ValidPassword(tc.password); got != tc.want {
			t.Fatalf("ValidPassword(%q) = %v, want %v", tc.password, got, tc.want)
		}
	}
}
