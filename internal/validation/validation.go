package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ErrStationIDEmpty is returned when the station id is empty or whitespace-only after trim.
var ErrStationIDEmpty = errors.New("station id is required")

// ErrStationIDTooShort is returned when the station id length is below the minimum.
var ErrStationIDTooShort = errors.New("station id too short")

// ErrStationIDTooLong is returned when the station id length exceeds the maximum.
var ErrStationIDTooLong = errors.New("station id too long")

// ErrStationIDInvalidChars is returned when the station id contains disallowed characters.
var ErrStationIDInvalidChars = errors.New("station id contains invalid characters")

// ValidateStationID trims the input, enforces length bounds (minLen,
// maxLen in runes), and restricts to letters, digits, hyphen and
// underscore, the shape of Weather Underground PWS ids (e.g. KAZPHOEN1).
// Returns the trimmed id uppercased, or an error suitable for 400
// INVALID_STATION responses.
func ValidateStationID(input string, minLen, maxLen int) (string, error) {
	s := strings.TrimSpace(input)
	r := []rune(s)
	n := len(r)
	if n == 0 {
		return "", ErrStationIDEmpty
	}
	if minLen > 0 && n < minLen {
		return "", ErrStationIDTooShort
	}
	if maxLen > 0 && n > maxLen {
		return "", ErrStationIDTooLong
	}
	for _, c := range r {
		if !isAllowedStationRune(c) {
			return "", ErrStationIDInvalidChars
		}
	}
	return strings.ToUpper(s), nil
}

// isAllowedStationRune returns true for ASCII letters, digits, hyphen, underscore.
func isAllowedStationRune(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '-', '_':
		return true
	}
	return false
}
