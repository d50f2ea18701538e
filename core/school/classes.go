package school

import (
	"sort"
	"strconv"

	"github.com/brightloop/brightloop/core"
)

// MasterClassList orders every class label, highest first.
var MasterClassList = []string{
	"12th", "11th", "10th", "9th", "8th", "7th", "6th", "5th", "4th", "3rd", "2nd", "1st",
	"UKG", "LKG", "Nursery", "Pre-Nursery",
}

// AdmissionClasses are the classes a student may be admitted to, lowest first.
var AdmissionClasses = []string{
	"Nursery", "LKG", "UKG", "1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th", "10th", "11th", "12th",
}

var classRank = func() map[string]int {
	m := make(map[string]int, len(MasterClassList))
	for i, c := range MasterClassList {
		m[c] = i
	}
	return m
}()

func IsKnownClass(class string) bool {
	_, ok := classRank[class]
	return ok
}

// SortClasses returns a copy of classes without duplicates, in master-list order.
// Unknown labels go last, in their original order.
func SortClasses(classes []string) []string {
	seen := make(map[string]bool, len(classes))
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

func rank(class string) int {
	if r, ok := classRank[class]; ok {
		return r
	}
	return len(MasterClassList)
}

// DefaultRollClasses lists the classes a school of type t usually reports on.
func DefaultRollClasses(t Type) []string {
	var classes []string
	switch t {
	case TypePrimary:
		classes = []string{"5th", "4th", "3rd", "2nd", "1st", "UKG", "LKG", "Nursery"}
	case TypeMiddle:
		classes = []string{"8th", "7th", "6th", "5th", "4th", "3rd", "2nd", "1st", "UKG", "LKG", "Nursery"}
	case TypeSecondary:
		classes = []string{"10th", "9th", "8th", "7th", "6th", "5th", "4th"}
	case TypeHigherSecondary:
		classes = []string{"12th", "11th", "10th", "9th"}
	default:
		classes = []string{"5th", "4th", "3rd", "2nd", "1st"}
	}
	return SortClasses(classes)
}

// ClassOrder ranks a class label from the lowest class upwards (Nursery < LKG < UKG < 1st ...).
// Unknown labels rank after every known class.
func ClassOrder(class string) int {
	switch class {
	case "Pre-Nursery":
		return -3
	case "Nursery":
		return -2
	case "LKG":
		return -1
	case "UKG":
		return 0
	}
	if n, err := strconv.Atoi(core.OnlyDigits(class)); err == nil && n > 0 {
		return n
	}
	return 99
}
