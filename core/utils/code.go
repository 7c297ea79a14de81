package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// MaxCodeLength is the maximum length of a game code.
const MaxCodeLength = 16

// fallbackCode is used when a name contains no ASCII letters or digits.
const fallbackCode = "game"

var codePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ValidateCode checks the game code format: 1-16 ASCII letters or digits.
func ValidateCode(code string) error {
	if code == "" {
		return errors.New("game code is required")
	}
	if len(code) > MaxCodeLength {
		return errors.New("game code must be 16 characters or less")
	}
	if !codePattern.MatchString(code) {
		return errors.New("game code must contain only letters and numbers")
	}
	return nil
}

// ValidateName rejects names holding control characters. Names are written
// on a single CSV comment line, so a line break would split the comment.
func ValidateName(name string) error {
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return errors.New("name must not contain control characters")
	}
	return nil
}

// GenerateCode derives a code from a name: lowercased, ASCII alphanumerics
// only, truncated to MaxCodeLength. The result may be empty.
func GenerateCode(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxCodeLength {
				break
			}
		}
	}
	return b.String()
}

// UniqueCode derives a code from name that taken reports as free.
// On collision a numeric suffix is appended and the base re-truncated so
// the result never exceeds MaxCodeLength.
func UniqueCode(name string, taken func(code string) bool) string {
	base := GenerateCode(name)
	if base == "" {
		base = fallbackCode
	}

	code := base
	for n := 1; taken(code); n++ {
		suffix := strconv.Itoa(n)
		trimmed := base
		if max := MaxCodeLength - len(suffix); len(trimmed) > max {
			trimmed = trimmed[:max]
		}
		code = trimmed + suffix
	}
	return code
}
