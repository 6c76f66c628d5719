// Package charset builds practice character sets.
package charset

import (
	"unicode"
)

// Default is used when a session starts without a character set.
const Default = "`1234567890-=[]\\;',./{}|:\"<>?~!@#$%^&*()_+"

// Split breaks text into single-character targets, keeping duplicates so a
// repeated character is drawn more often. Whitespace and control characters
// are dropped.
func Split(text string) []string {
	out := make([]string, 0, len(text))
	for _, r := range text {
		if !keep(r) {
			continue
		}
		out = append(out, string(r))
	}
	return out
}

// Resolve returns Split(text), or the Default set when text has no usable characters.
func Resolve(text string) []string {
	chars := Split(text)
	if len(chars) == 0 {
		return Split(Default)
	}
	return chars
}

func keep(r rune) bool {
	if unicode.IsSpace(r) || unicode.IsControl(r) {
		return false
	}
	return unicode.IsPrint(r)
}
