package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"national format", "(415) 555-2671", "+14155552671"},
		{"already e164", "+14155552671", "+14155552671"},
		{"international", "+31 20 794 9000", "+31207949000"},
		{"invalid keeps input", "not-a-number", "not-a-number"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.input); got != tt.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
