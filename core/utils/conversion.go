package utils

import (
	"regexp"
	"strings"
)

// ToHiragana converts Katakana to Hiragana. Other runes pass through.
func ToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		// ァ (U+30A1) .. ヶ (U+30F6) map onto ぁ (U+3041) .. ゖ (U+3096)
		if r >= 0x30A1 && r <= 0x30F6 {
			return r - 0x60
		}
		return r
	}, s)
}

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// Slug replaces anything but ASCII letters, digits, '-' and '_' with '-'
// and lowercases the result, for use in file names.
func Slug(s string) string {
	return strings.ToLower(slugPattern.ReplaceAllString(s, "-"))
}
