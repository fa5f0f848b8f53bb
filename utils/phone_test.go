package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ten digits get country code", input: "(415) 555-0101", expected: "+14155550101"},
		{name: "eleven digits with leading one", input: "1-415-555-0101", expected: "+14155550101"},
		{name: "already normalized", input: "+14155550101", expected: "+14155550101"},
		{name: "international kept as digits", input: "+44 20 7946 0958", expected: "+442079460958"},
		{name: "short number", input: "555-0101", expected: "+5550101"},
		{name: "empty", input: "", expected: ""},
		{name: "no digits", input: "n/a", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.input))
		})
	}
}

func TestFormatDisplayPhone(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "normalized US number", input: "+14155550101", expected: "(415) 555 - 0101"},
		{name: "ten digits", input: "4155550101", expected: "(415) 555 - 0101"},
		{name: "with ext", input: "+1 415 555 0101 ext. 12", expected: "(415) 555 - 0101 ext. 12"},
		{name: "with x", input: "415-555-0101 x7", expected: "(415) 555 - 0101 ext. 7"},
		{name: "with extension word", input: "415-555-0101 extension: 345", expected: "(415) 555 - 0101 ext. 345"},
		{name: "too short returns trimmed raw", input: "  555-0101 ", expected: "555-0101"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDisplayPhone(tt.input))
		})
	}
}

func TestFormatDisplayPhoneKeepsDigits(t *testing.T) {
	stored := NormalizePhone("(212) 555-0199")
	display := FormatDisplayPhone(stored)
	assert.Equal(t, stored, NormalizePhone(display))
}

func TestDialURI(t *testing.T) {
	assert.Equal(t, "tel:+14155550101", DialURI("415.555.0101"))
	assert.Equal(t, "", DialURI(""))
}

func TestIsPhoneQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"(312) 555", true},
		{"+1 415.555-0101", true},
		{"0101", true},
		{"Room 2", false},
		{"ext 12", false},
		{"()-", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPhoneQuery(tt.input))
		})
	}
}
