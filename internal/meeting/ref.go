package meeting

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ref identifies one committee meeting recording. The tuple of all six
// fields is the natural key for queue deduplication.
type Ref struct {
	Year      int
	Month     int
	Day       int
	Committee string
	Code      string
	// ScheduledTime is the archive's scheduling token, e.g. "0900AM".
	ScheduledTime string
}

// Validate checks that the reference carries a plausible date and a
// committee identity.
func (r Ref) Validate() error {
	if r.Year < 1990 || r.Year > 2200 {
		return fmt.Errorf("year %d out of range", r.Year)
	}
	if r.Month < 1 || r.Month > 12 {
		return fmt.Errorf("month %d out of range", r.Month)
	}
	if r.Day < 1 || r.Day > 31 {
		return fmt.Errorf("day %d out of range", r.Day)
	}
	if strings.TrimSpace(r.Committee) == "" {
		return errors.New("committee required")
	}
	if strings.TrimSpace(r.Code) == "" {
		return errors.New("committee code required")
	}
	return nil
}

// Date returns the meeting date at midnight UTC.
func (r Ref) Date() time.Time {
	return time.Date(r.Year, time.Month(r.Month), r.Day, 0, 0, 0, 0, time.UTC)
}

// DateCode returns the archive's compact yymmdd date token.
func (r Ref) DateCode() string {
	return fmt.Sprintf("%02d%02d%02d", r.Year%100, r.Month, r.Day)
}

// Label returns the canonical meeting label, e.g. "250108_house_0900AM".
func (r Ref) Label() string {
	parts := []string{r.DateCode(), strings.TrimSpace(r.Code)}
	if t := strings.TrimSpace(r.ScheduledTime); t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, "_")
}

// String renders the reference for logs and error detail.
func (r Ref) String() string {
	return fmt.Sprintf("%04d-%02d-%02d/%s/%s", r.Year, r.Month, r.Day, r.Code, r.ScheduledTime)
}

// Tokens returns the substitution pairs used to expand URL templates.
// Supported placeholders: {yyyy} {yy} {mm} {dd} {code} {committee} {time}.
func (r Ref) Tokens() []string {
	return []string{
		"{yyyy}", fmt.Sprintf("%04d", r.Year),
		"{yy}", fmt.Sprintf("%02d", r.Year%100),
		"{mm}", fmt.Sprintf("%02d", r.Month),
		"{dd}", fmt.Sprintf("%02d", r.Day),
		"{code}", strings.TrimSpace(r.Code),
		"{committee}", strings.TrimSpace(r.Committee),
		"{time}", strings.TrimSpace(r.ScheduledTime),
	}
}

// ExpandTemplate substitutes the reference's tokens into a URL template.
func (r Ref) ExpandTemplate(template string) string {
	if strings.TrimSpace(template) == "" {
		return ""
	}
	return strings.NewReplacer(r.Tokens()...).Replace(template)
}
