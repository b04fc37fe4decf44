// Package levels converts experience points into levels.
//
// The schedule is linear per step: advancing from level L to L+1 costs
// (L+1)*10 XP, so cumulative cost grows quadratically. Every function here is
// pure and total; negative XP is treated as zero.
package levels

// Step is the XP increment added to each successive threshold.
const Step = 10

// Threshold returns the XP needed to advance from level to level+1.
func Threshold(level int) int {
	if level < 0 {
		level = 0
	}
	return (level + 1) * Step
}

// FromXP returns the greatest level whose cumulative thresholds fit in xp.
func FromXP(xp int) int {
	return Details(xp).Level
}

// Progress describes where an XP total sits inside its current level.
type Progress struct {
	Level     int `json:"level"`
	Remainder int `json:"remainder"` // XP left after the last full level
	Needed    int `json:"needed"`    // XP required to reach Level+1
}

// Fraction returns Remainder/Needed in [0, 1).
func (p Progress) Fraction() float64 {
	if p.Needed <= 0 {
		return 0
	}
	return float64(p.Remainder) / float64(p.Needed)
}

// Details walks the threshold schedule and reports level, remainder and the
// cost of the next level.
func Details(xp int) Progress {
	if xp < 0 {
		xp = 0
	}
	level := 0
	needed := Threshold(level)
	for xp >= needed {
		xp -= needed
		level++
		needed = Threshold(level)
	}
	return Progress{Level: level, Remainder: xp, Needed: needed}
}

// TotalBefore returns the cumulative XP spent on thresholds [0, level).
func TotalBefore(level int) int {
	total := 0
	for i := 0; i < level; i++ {
		total += Threshold(i)
	}
	return total
}
