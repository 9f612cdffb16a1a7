package core

import (
	"regexp"
	"strings"
)

var slugifyRegex1 = regexp.MustCompile(`\(.*\)`)
var slugifyRegex2 = regexp.MustCompile(`[^a-z\d]`)
var slugifyRegex3 = regexp.MustCompile(`-+`)
var slugifyRegex4 = regexp.MustCompile(`^-|-$`)

// SlugifyName gives a loose comparison key for mod names; bracketed parts are dropped.
func SlugifyName(name string) string {
	lower := strings.ToLower(name)
	noBrackets := slugifyRegex1.ReplaceAllString(lower, "")
	limitedChars := slugifyRegex2.ReplaceAllString(noBrackets, "-")
	noDuplicateDashes := slugifyRegex3.ReplaceAllString(limitedChars, "-")
	return slugifyRegex4.ReplaceAllString(noDuplicateDashes, "")
}

// invalidFileNameChars is the set Windows rejects in a file or directory name. The game only
// ships for Windows, so the same set is applied everywhere.
const invalidFileNameChars = "\"<>|:*?\\/"

// SafeName replaces characters that are illegal in a file name with '_' and trims whitespace.
// It names a mod's extraction directory.
func SafeName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(invalidFileNameChars, r) {
			return '_'
		}
		return r
	}, name)
	return strings.TrimSpace(safe)
}
