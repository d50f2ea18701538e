// Package words spells numbers and dates out in English, the way they are
// printed on Indian school certificates (crore/lakh grouping).
package words

import (
	"strconv"
	"strings"
	"time"
)

var (
	ones = []string{
		"", "One ", "Two ", "Three ", "Four ", "Five ", "Six ", "Seven ", "Eight ", "Nine ", "Ten ",
		"Eleven ", "Twelve ", "Thirteen ", "Fourteen ", "Fifteen ", "Sixteen ", "Seventeen ", "Eighteen ", "Nineteen ",
	}
	tens = []string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}

	// crore, lakh, thousand, hundred
	units = []struct {
		from, to int
		name     string
	}{
		{0, 2, "Crore "},
		{2, 4, "Lakh "},
		{4, 6, "Thousand "},
		{6, 7, "Hundred "},
	}

	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
)

const overflow = "overflow"

// NumberToWords spells n using the Indian numbering system:
// 1234567 is "Twelve Lakh Thirty Four Thousand Five Hundred and Sixty Seven".
// Numbers longer than 9 characters yield "overflow"; zero and negative numbers yield "".
func NumberToWords(n int) string {
	s := strconv.Itoa(n)
	if len(s) > 9 {
		return overflow
	}
	if n < 0 {
		return ""
	}
	digits := strings.Repeat("0", 9-len(s)) + s

	var b strings.Builder
	for _, u := range units {
		if group := digits[u.from:u.to]; !isZero(group) {
			b.WriteString(spellGroup(group))
			b.WriteString(u.name)
		}
	}
	if rest := digits[7:]; !isZero(rest) {
		if b.Len() > 0 {
			b.WriteString("and ")
		}
		b.WriteString(spellGroup(rest))
	}
	return strings.TrimSpace(b.String())
}

// spellGroup spells a group of one or two digits.
func spellGroup(group string) string {
	v, _ := strconv.Atoi(group)
	if v < len(ones) {
		return ones[v]
	}
	return tens[group[0]-'0'] + " " + ones[group[1]-'0']
}

func isZero(group string) bool {
	return strings.Trim(group, "0") == ""
}

// DateToWords renders a calendar date as "12th of May, Two Thousand and Fifteen".
// It returns "" when s is empty or is not a valid date.
func DateToWords(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	day := t.Day()
	return strconv.Itoa(day) + OrdinalSuffix(day) + " of " + t.Month().String() + ", " + NumberToWords(t.Year())
}

// OrdinalSuffix returns the English ordinal suffix of day (st, nd, rd or th).
func OrdinalSuffix(day int) string {
	j, k := day%10, day%100
	switch {
	case j == 1 && k != 11:
		return "st"
	case j == 2 && k != 12:
		return "nd"
	case j == 3 && k != 13:
		return "rd"
	}
	return "th"
}

// ParseDate parses the date part of s as written, without time zone conversion.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// FormatDMY turns "2015-05-12" into "12/05/2015".
// Values that do not split into three dash separated parts are returned as is.
func FormatDMY(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return s
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
