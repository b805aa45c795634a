package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateStationID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"valid id", "KAZPHOEN1", "KAZPHOEN1", nil},
		{"lowercase is uppercased", "imadrid1", "IMADRID1", nil},
		{"surrounding whitespace trimmed", "  IMADRID1  ", "IMADRID1", nil},
		{"hyphen and underscore allowed", "abc-def_1", "ABC-DEF_1", nil},
		{"empty", "", "", ErrStationIDEmpty},
		{"whitespace only", "   ", "", ErrStationIDEmpty},
		{"too short", "AB", "", ErrStationIDTooShort},
		{"too long", strings.Repeat("A", 33), "", ErrStationIDTooLong},
		{"spaces inside", "IMAD RID1", "", ErrStationIDInvalidChars},
		{"punctuation", "IMADRID1;", "", ErrStationIDInvalidChars},
		{"non-ascii letters", "IMADRÍD1", "", ErrStationIDInvalidChars},
		{"at max length", strings.Repeat("A", 32), strings.Repeat("A", 32), nil},
		{"at min length", "ABC", "ABC", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateStationID(tt.input, 3, 32)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ValidateStationID(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateStationID(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ValidateStationID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateStationID_ZeroBoundsDisableLengthChecks(t *testing.T) {
	got, err := ValidateStationID("AB", 0, 0)
	if err != nil {
		t.Fatalf("ValidateStationID() error = %v", err)
	}
	if got != "AB" {
		t.Errorf("ValidateStationID() = %q, want AB", got)
	}
}
