package admission

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/brightloop/brightloop/core"
	"github.com/brightloop/brightloop/core/words"
)

// MinEligibleAgeAtClass10 is the minimum age (in completed years) a student must have
// reached on 1 August of the year they sit in Class 10.
const MinEligibleAgeAtClass10 = 16

var sessionYearRegex = regexp.MustCompile(`^(\d{4})`)

// AgeProjection is a student's age on 1 August of the year they reach Class 10.
type AgeProjection struct {
	AgeYears   int  `json:"ageYears"`
	AgeMonths  int  `json:"ageMonths"`
	AgeDays    int  `json:"ageDays"`
	TargetYear int  `json:"targetYear"`
	IsEligible bool `json:"isEligible"`
}

// ClassNumber maps an admission class label to its grade number:
// Nursery is -2, LKG -1, UKG 0 and "5th" is 5. Unknown labels map to 0.
func ClassNumber(label string) int {
	cls := strings.ToLower(label)
	switch {
	case strings.Contains(cls, "nursery"):
		return -2
	case strings.Contains(cls, "lkg"):
		return -1
	case strings.Contains(cls, "ukg"):
		return 0
	}
	n, err := strconv.Atoi(core.OnlyDigits(cls))
	if err != nil {
		return 0
	}
	return n
}

// SessionYear extracts the starting year of an academic session ("2025-26" is 2025).
func SessionYear(session string) (int, bool) {
	m := sessionYearRegex.FindStringSubmatch(session)
	if m == nil {
		return 0, false
	}
	year, err := strconv.Atoi(m[1])
	return year, err == nil
}

// CalculateNEPAge projects the age of a student born on dob, admitted to class in the
// given session, on 1 August of the year the student reaches Class 10.
// It returns nil when any input is empty, the session has no leading year or dob is not a date.
func CalculateNEPAge(dob, session, class string) *AgeProjection {
	if dob == "" || session == "" || class == "" {
		return nil
	}
	baseYear, ok := SessionYear(session)
	if !ok {
		return nil
	}
	birth, ok := words.ParseDate(dob)
	if !ok {
		return nil
	}

	targetYear := baseYear + (10 - ClassNumber(class))
	target := time.Date(targetYear, time.August, 1, 0, 0, 0, 0, time.UTC)

	years := target.Year() - birth.Year()
	months := int(target.Month()) - int(birth.Month())
	days := target.Day() - birth.Day()

	if days < 0 {
		months--
		// day 0 of the target month is the last day of the previous month
		days += time.Date(target.Year(), target.Month(), 0, 0, 0, 0, 0, time.UTC).Day()
	}
	if months < 0 {
		years--
		months += 12
	}

	return &AgeProjection{
		AgeYears:   years,
		AgeMonths:  months,
		AgeDays:    days,
		TargetYear: targetYear,
		IsEligible: years >= MinEligibleAgeAtClass10,
	}
}
