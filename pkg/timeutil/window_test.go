package timeutil

import (
	"testing"
)

func TestParseDays(t *testing.T) {
	n, label, err := ParseDays("10d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected 10, got %d", n)
	}
	if label != "1w3d" {
		t.Fatalf("expected label 1w3d, got %s", label)
	}
}

func TestParseDaysComposite(t *testing.T) {
	n, label, err := ParseDays("2 weeks 1d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 15 {
		t.Fatalf("expected 15, got %d", n)
	}
	if label != "2w1d" {
		t.Fatalf("unexpected label: %s", label)
	}
}

func TestParseDaysInvalid(t *testing.T) {
	for _, in := range []string{"", "noop", "3h", "0d"} {
		if _, _, err := ParseDays(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(14); got != "2w" {
		t.Fatalf("expected 2w, got %s", got)
	}
	if got := FormatDays(0); got != "0d" {
		t.Fatalf("expected 0d, got %s", got)
	}
}
