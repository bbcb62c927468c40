package services

import (
	"strings"
	"testing"
)

func TestPseudonym(t *testing.T) {
	a := Pseudonym("salt", "Someone@Example.com ")
	b := Pseudonym("salt", "someone@example.com")
	if a != b {
		t.Fatalf("pseudonym should ignore case and spaces: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("len=%d, want 16", len(a))
	}
	if a == Pseudonym("other", "someone@example.com") {
		t.Fatalf("different salts produced the same pseudonym")
	}
	if a == Pseudonym("salt", "someone.else@example.com") {
		t.Fatalf("different emails produced the same pseudonym")
	}
	long := strings.Repeat("s", 100)
	if got := Pseudonym(long, "someone@example.com"); len(got) != 16 {
		t.Fatalf("long salt: got %q", got)
	}
}
