package models

import "testing"

func TestDirectKeyForNormalizesOrder(t *testing.T) {
	if DirectKeyFor(7, 3) != "3:7" {
		t.Fatalf("got %q, want 3:7", DirectKeyFor(7, 3))
	}
	if DirectKeyFor(3, 7) != DirectKeyFor(7, 3) {
		t.Fatalf("key must be order independent")
	}
	if DirectKeyFor(5, 5) != "5:5" {
		t.Fatalf("got %q, want 5:5", DirectKeyFor(5, 5))
	}
}
