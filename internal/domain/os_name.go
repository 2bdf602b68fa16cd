package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// OS name length bounds, in characters
const (
	MinOSNameLength = 2
	MaxOSNameLength = 10
)

// NormalizeOSName trims name and checks it is usable as a public URL key.
// Letters, digits, '-' and '_' are allowed.
func NormalizeOSName(name string) (string, error) {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < MinOSNameLength || length > MaxOSNameLength {
		return "", ErrInvalidOSName
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return "", ErrInvalidOSName
		}
	}
	return name, nil
}
