package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

var spaceReplacer = strings.NewReplacer(
	" ", " ",
	"　", " ",
)

// Normalize collapses runs of whitespace into a single space and trims
// the result. Non-breaking and ideographic spaces count as whitespace.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = spaceReplacer.Replace(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.Trim(s, " ")
}

// FoldKey produces a case-insensitive comparison key.
func FoldKey(s string) string {
	return strings.ToLower(Normalize(s))
}

// StripLabelColon removes one trailing half- or full-width colon.
func StripLabelColon(s string) string {
	s = strings.TrimSuffix(s, "：")
	s = strings.TrimSuffix(s, ":")
	return strings.Trim(s, " ")
}

// HasLabelColon reports whether s ends in a half- or full-width colon.
func HasLabelColon(s string) bool {
	return strings.HasSuffix(s, ":") || strings.HasSuffix(s, "：")
}

// MatchAny reports whether any of the matchers occurs in s,
// case-insensitively and ignoring whitespace.
func MatchAny(s string, matchers []string) bool {
	s = strings.ToLower(whitespaceRegex.ReplaceAllString(s, ""))
	for _, m := range matchers {
		if strings.Contains(s, strings.ToLower(m)) {
			return true
		}
	}
	return false
}
