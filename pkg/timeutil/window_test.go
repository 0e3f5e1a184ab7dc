package timeutil

import "testing"

func TestParseWindowDefault(t *testing.T) {
	days, label, err := ParseWindow("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 7 {
		t.Fatalf("expected 7 days, got %d", days)
	}
	if label != "1w" {
		t.Fatalf("expected label 1w, got %s", label)
	}
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		in    string
		days  int
		label string
	}{
		{"3d", 3, "3d"},
		{"2w", 14, "2w"},
		{"1w3d", 10, "1w3d"},
		{"10 days", 10, "1w3d"},
		{"1 week 2 days", 9, "1w2d"},
		{"14D", 14, "2w"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			days, label, err := ParseWindow(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if days != tt.days || label != tt.label {
				t.Fatalf("ParseWindow(%q) = %d %q, want %d %q", tt.in, days, label, tt.days, tt.label)
			}
		})
	}
}

func TestParseWindowInvalid(t *testing.T) {
	for _, in := range []string{"noop", "3h", "0d", "1w-"} {
		if _, _, err := ParseWindow(in); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}

func TestFormatWindow(t *testing.T) {
	if got := FormatWindow(0); got != "0d" {
		t.Fatalf("expected 0d, got %s", got)
	}
	if got := FormatWindow(21); got != "3w" {
		t.Fatalf("expected 3w, got %s", got)
	}
}
