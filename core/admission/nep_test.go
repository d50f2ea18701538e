package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassNumber(t *testing.T) {
	tests := map[string]int{
		"Nursery":     -2,
		"Pre-Nursery": -2,
		"LKG":         -1,
		"lkg":         -1,
		"UKG":         0,
		"1st":         1,
		"5th":         5,
		"10th":        10,
		"Class 12":    12,
		"":            0,
		"unknown":     0,
	}
	for label, want := range tests {
		assert.Equal(t, want, ClassNumber(label), "label %q", label)
	}
}

func TestCalculateNEPAge(t *testing.T) {
	tests := []struct {
		name    string
		dob     string
		session string
		class   string
		want    *AgeProjection
	}{
		{name: "empty dob", session: "2025-26", class: "5th"},
		{name: "empty session", dob: "2015-05-12", class: "5th"},
		{name: "empty class", dob: "2015-05-12", session: "2025-26"},
		{name: "session without year", dob: "2015-05-12", session: "25-26", class: "5th"},
		{name: "invalid dob", dob: "2015-13-45", session: "2025-26", class: "5th"},
		{
			name: "5th in 2025-26", dob: "2015-05-12", session: "2025-26", class: "5th",
			want: &AgeProjection{AgeYears: 15, AgeMonths: 2, AgeDays: 20, TargetYear: 2030},
		},
		{
			name: "zero difference", dob: "2014-08-01", session: "2025-26", class: "5th",
			want: &AgeProjection{AgeYears: 16, TargetYear: 2030, IsEligible: true},
		},
		{
			name: "nursery", dob: "2021-03-15", session: "2024-25", class: "Nursery",
			want: &AgeProjection{AgeYears: 15, AgeMonths: 4, AgeDays: 17, TargetYear: 2036},
		},
		{
			name: "lkg", dob: "2019-01-31", session: "2024", class: "LKG",
			want: &AgeProjection{AgeYears: 16, AgeMonths: 6, AgeDays: 1, TargetYear: 2035, IsEligible: true},
		},
		{
			name: "ukg", dob: "2019-09-02", session: "2024-25", class: "UKG",
			want: &AgeProjection{AgeYears: 14, AgeMonths: 10, AgeDays: 30, TargetYear: 2034},
		},
		{
			name: "unknown class counts as 0", dob: "2019-09-02", session: "2024-25", class: "Toddlers",
			want: &AgeProjection{AgeYears: 14, AgeMonths: 10, AgeDays: 30, TargetYear: 2034},
		},
		{
			name: "10th", dob: "2009-07-31", session: "2025-26", class: "10th",
			want: &AgeProjection{AgeYears: 16, AgeMonths: 0, AgeDays: 1, TargetYear: 2025, IsEligible: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateNEPAge(tt.dob, tt.session, tt.class)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestCalculateNEPAge_eligibilityIsMonotonic(t *testing.T) {
	// 5th in 2025-26 reaches class 10 in 2030: threshold dob is 2014-08-01.
	threshold := time.Date(2014, time.August, 1, 0, 0, 0, 0, time.UTC)
	for d := -400; d <= 400; d++ {
		dob := threshold.AddDate(0, 0, d)
		got := CalculateNEPAge(dob.Format("2006-01-02"), "2025-26", "5th")
		require.NotNil(t, got)
		assert.Equal(t, d <= 0, got.IsEligible, "dob %s", dob.Format("2006-01-02"))
	}
}

func TestSessionYear(t *testing.T) {
	year, ok := SessionYear("2025-26")
	assert.True(t, ok)
	assert.Equal(t, 2025, year)

	_, ok = SessionYear("Session 2025")
	assert.False(t, ok)
}
