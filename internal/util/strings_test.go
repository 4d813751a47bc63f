package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{name: "nil slice returns (none)", items: nil, want: "(none)"},
		{name: "empty slice returns (none)", items: []string{}, want: "(none)"},
		{name: "single item returns item", items: []string{"light"}, want: "light"},
		{name: "multiple items joined with comma", items: []string{"temperature", "humidity"}, want: "temperature, humidity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinOrNone(tt.items))
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	assert.Equal(t, "N/A", JoinOrDefault(nil, "N/A"))
	assert.Equal(t, "a, b", JoinOrDefault([]string{"a", "b"}, "N/A"))
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{count: 0, want: "samples"},
		{count: 1, want: "sample"},
		{count: 2, want: "samples"},
		{count: -1, want: "samples"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.count, "sample", "samples"))
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"test", "tset", 2},
		{"test", "tests", 1},
		{"tests", "test", 1},
		{"test", "Test", 1},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"->"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.a, tt.b))
		})
	}
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"temperature", "humidity", "light", "soil_moisture"}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "missing letter", input: "temprature", expected: []string{"temperature"}},
		{name: "dropped letter", input: "humidty", expected: []string{"humidity"}},
		{name: "swapped letters", input: "lihgt", expected: []string{"light"}},
		{name: "case insensitive", input: "LIGHT", expected: []string{"light"}},
		{name: "no close match returns nil", input: "xyz", expected: nil},
		{name: "empty input returns nil", input: "", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SuggestSimilar(tt.input, candidates, 2))
		})
	}
}

func TestSuggestSimilar_ClosestFirst(t *testing.T) {
	got := SuggestSimilar("tes", []string{"tests", "test"}, 3)
	assert.Equal(t, []string{"test", "tests"}, got)
}

func TestSuggestSimilar_EmptyCandidates(t *testing.T) {
	assert.Nil(t, SuggestSimilar("test", nil, 3))
	assert.Nil(t, SuggestSimilar("test", []string{}, 3))
}
