package emotion

import (
	"testing"

	"github.com/kozaktomas/carecam/internal/config"
)

func testCatalog() *Catalog {
	return NewCatalog([]config.EmotionEntry{
		{Name: "happy", Aliases: []string{"happiness", "joy"}},
		{Name: "surprise", Aliases: []string{"surprised"}},
		{Name: "fear", Aliases: []string{"Fearful"}},
		{Name: "neutral"},
	})
}

func TestRemoveDiacritics(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"happy", "happy"},
		{"Überrascht", "Uberrascht"},
		{"tristesse", "tristesse"},
		{"énervé", "enerve"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := RemoveDiacritics(tt.input)
			if result != tt.expected {
				t.Errorf("RemoveDiacritics(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCatalog_Normalize(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		input    string
		expected string
	}{
		{"happy", "happy"},
		{"HAPPY", "happy"},
		{"  Happiness ", "happy"},
		{"joy", "happy"},
		{"Surprised", "surprise"},
		{"fearful", "fear"},
		{"neutral", "neutral"},
		{"bored", "bored"},
		{"very_bored", "very bored"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := c.Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestCatalog_NilNormalizesWithoutAliases(t *testing.T) {
	var c *Catalog
	if got := c.Normalize("Joy"); got != "joy" {
		t.Errorf("expected 'joy', got %q", got)
	}
}

func TestCatalog_Names(t *testing.T) {
	names := testCatalog().Names()
	want := []string{"happy", "surprise", "fear", "neutral"}
	if len(names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
