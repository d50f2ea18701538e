package school

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSlug(t *testing.T) {
	origRandIntn := randIntn
	defer func() { randIntn = origRandIntn }()
	randIntn = func(n int) int { return 42 }

	tests := []struct {
		name string
		want string
	}{
		{name: "Govt. Boys High School, Sopore", want: "govtboyshighschoolsopore42"},
		{name: "St. Joseph's 2", want: "stjosephs242"},
		{name: "   ", want: "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewSlug(tt.name))
		})
	}
}

func TestAbbreviation(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "green valley public school", want: "GVPS School"},
		{name: "Delhi", want: "D School"},
		{name: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Abbreviation(tt.name))
		})
	}
}

func TestWatermarkName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Govt Higher Secondary School Kupwara", want: "GHSS Kupwara"},
		{name: "Govt. Boys High School, Sopore", want: "GBHS Sopore"},
		{name: "Kupwara Public School", want: "Kupwara PS"},
		{name: "Green Valley Academy", want: "Green Valley Academy"},
		{name: "Govt Middle School", want: "GMS"},
		{name: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WatermarkName(tt.name))
		})
	}
}
