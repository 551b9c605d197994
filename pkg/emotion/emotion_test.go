package emotion

import "testing"

func TestParseAliases(t *testing.T) {
	cases := map[string]Emotion{
		"joy":    Joy,
		" Happy": Joy,
		"SAD":    Sadness,
		"scared": Fear,
		"":       "",
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseUnknown(t *testing.T) {
	if _, err := Parse("ennui"); err == nil {
		t.Fatalf("expected error for unknown emotion")
	}
}

func TestDisplayDegradesUnknown(t *testing.T) {
	e := Emotion("melancholy")
	if e.Known() {
		t.Fatalf("expected %q to be unknown", e)
	}
	if e.Display() != Neutral {
		t.Fatalf("expected neutral display, got %q", e.Display())
	}
	if e.String() != "melancholy" {
		t.Fatalf("raw value must be preserved, got %q", e.String())
	}
	if e.Glyph().Emotion != Neutral {
		t.Fatalf("expected neutral glyph for unknown emotion")
	}
}

func TestAllHasSeven(t *testing.T) {
	if n := len(All()); n != 7 {
		t.Fatalf("expected 7 emotions, got %d", n)
	}
}
