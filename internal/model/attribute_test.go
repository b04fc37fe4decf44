package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		label string
		want  AttributeName
		ok    bool
	}{
		{"strength", Strength, true},
		{"  Agility ", Agility, true},
		{"WISDOM", Wisdom, true},
		{"воля", Willpower, true},
		{"Энергия", Energy, true},
		{"luck", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseAttribute(tt.label)
		assert.Equal(t, tt.ok, ok, "label %q", tt.label)
		assert.Equal(t, tt.want, got, "label %q", tt.label)
	}
}

func TestResolveAttributes(t *testing.T) {
	got := ResolveAttributes([]string{"agility", "bogus", "Agility", "energy", "spirit", "wisdom", "strength"}, 4)
	assert.Equal(t, []AttributeName{Agility, Energy, Spirit, Wisdom}, got)
}

func TestAllAttributes_ReturnsCopy(t *testing.T) {
	all := AllAttributes()
	all[0] = "mutated"
	assert.Equal(t, Strength, AllAttributes()[0])
}

func TestLooseInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`3`, 3, true},
		{`3.9`, 3, true},
		{`-2`, -2, true},
		{`"4"`, 4, true},
		{`" 5 xp"`, 5, true},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`true`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		got, ok := LooseInt([]byte(tt.raw))
		assert.Equal(t, tt.ok, ok, "raw %q", tt.raw)
		assert.Equal(t, tt.want, got, "raw %q", tt.raw)
	}
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, FoldName("Running"), FoldName("  running "))
	assert.Equal(t, FoldName("БЕГ"), FoldName("бег"))
	assert.Equal(t, "", FoldName("   "))
}
