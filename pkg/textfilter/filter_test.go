package textfilter

import (
	"testing"
)

func TestProfanityFilter_ContainsProfanity(t *testing.T) {
	filter := NewProfanityFilter()

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "clean name", input: "Morticia", expected: false},
		{name: "blocked word", input: "Lord Damn", expected: true},
		{name: "case insensitive", input: "SHIT", expected: true},
		{name: "word boundaries - partial matches allowed", input: "Cassius Shellcock", expected: false},
		{name: "classical", input: "Classical Raven", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := filter.ContainsProfanity(tt.input); got != tt.expected {
				t.Errorf("ContainsProfanity(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{name: "empty falls back", input: "", maxLen: 18, expected: "New Raven"},
		{name: "whitespace only falls back", input: "   \t ", maxLen: 18, expected: "New Raven"},
		{name: "capitalises words", input: "wednesday addams", maxLen: 18, expected: "Wednesday Addams"},
		{name: "keeps inner capitals", input: "mcAllister", maxLen: 18, expected: "McAllister"},
		{name: "collapses spaces", input: "  enid   sinclair ", maxLen: 18, expected: "Enid Sinclair"},
		{name: "drops control characters", input: "ya\x00ra\n", maxLen: 18, expected: "Yara"},
		{name: "truncates to max runes", input: "abcdefghijklmnopqrstuvwxyz", maxLen: 5, expected: "Abcde"},
		{name: "profanity falls back", input: "bullshit", maxLen: 18, expected: "New Raven"},
		{name: "no limit", input: "a very long name that keeps going", maxLen: 0, expected: "A Very Long Name That Keeps Going"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.input, "New Raven", tt.maxLen); got != tt.expected {
				t.Errorf("CleanName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
