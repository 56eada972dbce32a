package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// pathSegmentReplacer replaces filesystem-unsafe characters with safe
// alternatives. Separators and colons become dashes; the rest are dropped.
var pathSegmentReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// foldTransformer decomposes accented characters and strips combining marks
// so committee names render as plain path segments.
var foldTransformer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldASCII normalizes a string to its unaccented form. Input that cannot be
// transformed is returned unchanged.
func FoldASCII(value string) string {
	folded, _, err := transform.String(foldTransformer, value)
	if err != nil {
		return value
	}
	return folded
}

// SanitizePathSegment folds accents and replaces filesystem-unsafe
// characters in a single path segment. The result is trimmed of surrounding
// whitespace and dots. Returns "unknown" for input that sanitizes to nothing.
func SanitizePathSegment(value string) string {
	value = strings.TrimSpace(FoldASCII(value))
	if value == "" {
		return "unknown"
	}
	cleaned := strings.Trim(strings.TrimSpace(pathSegmentReplacer.Replace(value)), ".")
	if cleaned == "" {
		return "unknown"
	}
	return cleaned
}

// SanitizeToken converts a string to a lowercase token safe for URLs and
// identifiers. Letters are lowercased, digits and hyphens/underscores kept,
// everything else becomes an underscore.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(FoldASCII(value))
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
