package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	got := NormalizeE164ForRegion("+31 6 12345678", "NL")
	if got != "+31612345678" {
		t.Fatalf("expected +31612345678, got %q", got)
	}
}

func TestNormalizeE164KeepsUnparseableInput(t *testing.T) {
	if got := NormalizeE164("  not a number "); got != "not a number" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
	if got := NormalizeE164(""); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestCountDigits(t *testing.T) {
	if n := CountDigits("+260 97-123"); n != 8 {
		t.Fatalf("expected 8, got %d", n)
	}
}
