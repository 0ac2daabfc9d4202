package contactimport

import (
	"strconv"
	"strings"
	"time"
)

// Single-digit layout fields also accept zero-padded input.
var dateLayouts = []string{"2006-1-2", "2/1/2006", "2-1-2006"}

// NormalizeDigits keeps only the ASCII digits of s, in order.
func NormalizeDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// ParseDate accepts ISO dates and the day-first forms used by Brazilian
// spreadsheets. Blank or unparsable input yields nil.
func ParseDate(s string) *time.Time {
	value := strings.TrimSpace(s)
	if value == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return &parsed
		}
	}
	return nil
}

// ComputeAge returns the number of full years between birth and today,
// never negative.
func ComputeAge(birth *time.Time, today time.Time) *int {
	if birth == nil {
		return nil
	}
	age := today.Year() - birth.Year()
	if today.Month() < birth.Month() || (today.Month() == birth.Month() && today.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return &age
}

// stripFloatSuffix undoes the ".0" a spreadsheet appends when it exported a
// numeric cell as a float.
func stripFloatSuffix(value string) string {
	return strings.TrimSuffix(value, ".0")
}

// parseAge accepts a non-negative integer that fits the int32 age column.
func parseAge(value string) *int {
	cleaned := stripFloatSuffix(strings.TrimSpace(value))
	if cleaned == "" {
		return nil
	}
	parsed, err := strconv.ParseInt(cleaned, 10, 32)
	if err != nil || parsed < 0 {
		return nil
	}
	age := int(parsed)
	return &age
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return dateOnly(*a).Equal(dateOnly(*b))
}
