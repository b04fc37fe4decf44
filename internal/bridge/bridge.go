// Package bridge converts skill level-ups into attribute XP, exactly once
// per level per skill.
package bridge

import "github.com/roach88/nomadpath/internal/model"

// Award pays attribute XP for levels the skill gained since it was last
// seen and returns the total XP granted across attributes.
//
// A skill the bridge has never seen (AwardedLevel nil) is only marked at its
// current level: no reward for levels reached before tracking began. A
// tracked skill above its marker grants the level difference to each
// declared attribute and moves the marker up. A skill at or below its
// marker grants nothing and the marker stays put, so decay never claws back
// XP and never causes a level to be paid twice.
func Award(c *model.Character, s *model.Skill) int {
	if c == nil || s == nil {
		return 0
	}
	if s.AwardedLevel == nil {
		s.AwardedLevel = model.IntPtr(s.Level)
		return 0
	}
	diff := s.Level - *s.AwardedLevel
	if diff <= 0 {
		return 0
	}
	if c.Attributes == nil {
		c.Attributes = make(map[model.AttributeName]model.Attribute)
	}
	granted := 0
	for _, a := range s.Attributes {
		attr := c.Attributes[a]
		attr.XP += diff
		c.Attributes[a] = attr
		granted += diff
	}
	*s.AwardedLevel = s.Level
	return granted
}

// AwardAll runs Award over every skill and returns the total granted.
func AwardAll(c *model.Character) int {
	if c == nil {
		return 0
	}
	total := 0
	for _, s := range c.Skills {
		total += Award(c, s)
	}
	return total
}
