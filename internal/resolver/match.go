package resolver

import (
	"fmt"
	"strings"

	"gavel/internal/meeting"
)

// dateVariants returns the textual forms the archive uses for a meeting date,
// lowercased for case-insensitive matching.
func dateVariants(ref meeting.Ref) []string {
	date := ref.Date()
	return []string{
		ref.DateCode(),
		fmt.Sprintf("%04d-%02d-%02d", ref.Year, ref.Month, ref.Day),
		fmt.Sprintf("%02d/%02d/%04d", ref.Month, ref.Day, ref.Year),
		fmt.Sprintf("%d/%d/%04d", ref.Month, ref.Day, ref.Year),
		strings.ToLower(date.Format("January 2, 2006")),
		strings.ToLower(date.Format("Jan 2, 2006")),
	}
}

// matchesDate reports whether the text contains any written form of the
// meeting date.
func matchesDate(text string, ref meeting.Ref) bool {
	lowered := strings.ToLower(text)
	for _, variant := range dateVariants(ref) {
		if strings.Contains(lowered, variant) {
			return true
		}
	}
	return false
}
