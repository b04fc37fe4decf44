// Package aggregate derives attribute levels and the global character level.
package aggregate

import (
	"github.com/roach88/nomadpath/internal/levels"
	"github.com/roach88/nomadpath/internal/model"
)

// ApplyAttributeProgress recomputes every attribute level from its XP and
// returns the sum of positive level changes. Decreases are applied but not
// counted.
func ApplyAttributeProgress(c *model.Character) int {
	if c == nil {
		return 0
	}
	ups := 0
	for name, attr := range c.Attributes {
		level := levels.FromXP(attr.XP)
		if level > attr.Level {
			ups += level - attr.Level
		}
		if level != attr.Level {
			attr.Level = level
			c.Attributes[name] = attr
		}
	}
	return ups
}

// LevelUps lists the attributes whose level would rise on the next
// ApplyAttributeProgress, with the number of levels gained.
func LevelUps(c *model.Character) map[model.AttributeName]int {
	out := make(map[model.AttributeName]int)
	if c == nil {
		return out
	}
	for name, attr := range c.Attributes {
		if gain := levels.FromXP(attr.XP) - attr.Level; gain > 0 {
			out[name] = gain
		}
	}
	return out
}

// ApplyGlobalXP sets the global level from the sum of attribute levels:
// one global level per model.GlobalStep attribute levels.
func ApplyGlobalXP(c *model.Character) {
	if c == nil {
		return
	}
	total := 0
	for _, attr := range c.Attributes {
		total += attr.Level
	}
	c.Level = total / model.GlobalStep
	c.GlobalProgress = total % model.GlobalStep
	c.GlobalRequired = model.GlobalStep
}
