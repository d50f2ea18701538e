package school

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode"
)

var randIntn = rand.Intn // mockable

var watermarkStopWords = map[string]bool{
	"GOVT": true, "GOVERNMENT": true, "MIDDLE": true, "PRIMARY": true, "HIGH": true,
	"HIGHER": true, "SECONDARY": true, "SENIOR": true, "PUBLIC": true, "SCHOOL": true,
	"INTERNATIONAL": true, "HR": true, "SEC": true, "BOYS": true, "GIRLS": true,
}

// NewSlug builds the website slug of a school: the lower-cased alphanumerics of its
// name followed by a random number below 1000.
func NewSlug(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String() + strconv.Itoa(randIntn(1000))
}

// Abbreviation joins the upper-cased initial of every word of name, followed by " School".
func Abbreviation(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range words {
		b.WriteRune(unicode.ToUpper([]rune(w)[0]))
	}
	return b.String() + " School"
}

// WatermarkName shortens runs of generic words (GOVT, HIGHER, SCHOOL...) to their initials
// and keeps the distinctive ones: "Govt Higher Secondary School Kupwara" -> "GHSS Kupwara".
func WatermarkName(name string) string {
	var parts []string
	var abbr strings.Builder
	for _, word := range strings.Fields(name) {
		clean := strings.ToUpper(strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
				return r
			}
			return -1
		}, word))
		if watermarkStopWords[clean] {
			abbr.WriteByte(clean[0])
			continue
		}
		if abbr.Len() > 0 {
			parts = append(parts, abbr.String())
			abbr.Reset()
		}
		parts = append(parts, word)
	}
	if abbr.Len() > 0 {
		parts = append(parts, abbr.String())
	}
	if len(parts) == 0 {
		return name
	}
	return strings.Join(parts, " ")
}
