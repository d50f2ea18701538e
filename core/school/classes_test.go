package school

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortClasses(t *testing.T) {
	got := SortClasses([]string{"1st", "Nursery", "10th", "Remedial", "1st", "UKG"})
	assert.Equal(t, []string{"10th", "1st", "UKG", "Nursery", "Remedial"}, got)
}

func TestDefaultRollClasses(t *testing.T) {
	tests := []struct {
		typ  Type
		want []string
	}{
		{typ: TypePrimary, want: []string{"5th", "4th", "3rd", "2nd", "1st", "UKG", "LKG", "Nursery"}},
		{typ: TypeHigherSecondary, want: []string{"12th", "11th", "10th", "9th"}},
		{typ: TypeSecondary, want: []string{"10th", "9th", "8th", "7th", "6th", "5th", "4th"}},
		{typ: Type("Unknown"), want: []string{"5th", "4th", "3rd", "2nd", "1st"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultRollClasses(tt.typ))
		})
	}
}

func TestClassOrder(t *testing.T) {
	ordered := []string{"Pre-Nursery", "Nursery", "LKG", "UKG", "1st", "2nd", "9th", "10th", "12th", "Remedial"}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ClassOrder(ordered[i-1]), ClassOrder(ordered[i]), "%s < %s", ordered[i-1], ordered[i])
	}
}

func TestProfile_RollClasses(t *testing.T) {
	p := Profile{Type: TypeHigherSecondary}
	assert.Equal(t, []string{"12th", "11th", "10th", "9th"}, p.RollClasses())

	p.RollStatementClasses = []string{"9th", "12th"}
	assert.Equal(t, []string{"12th", "9th"}, p.RollClasses())
}
