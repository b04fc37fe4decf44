package levels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreshold(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 10},
		{1, 20},
		{2, 30},
		{9, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Threshold(tt.level), "Threshold(%d)", tt.level)
	}
}

func TestFromXP(t *testing.T) {
	tests := []struct {
		name string
		xp   int
		want int
	}{
		{"negative", -5, 0},
		{"zero", 0, 0},
		{"just below first threshold", 9, 0},
		{"first threshold", 10, 1},
		{"between", 15, 1},
		{"second threshold", 30, 2},
		{"just below third", 59, 2},
		{"third threshold", 60, 3},
		{"running scenario", 45, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromXP(tt.xp))
		})
	}
}

func TestFromXP_Monotonic(t *testing.T) {
	for xp := 0; xp < 2000; xp++ {
		require.LessOrEqual(t, FromXP(xp), FromXP(xp+1), "xp=%d", xp)
	}
}

func TestTotalBefore_RoundTrip(t *testing.T) {
	for level := 0; level < 50; level++ {
		total := TotalBefore(level)
		require.Equal(t, level, FromXP(total), "level=%d total=%d", level, total)
		if level >= 1 {
			require.Equal(t, level-1, FromXP(total-1), "level=%d total-1=%d", level, total-1)
		}
	}
}

func TestTotalBefore(t *testing.T) {
	assert.Equal(t, 0, TotalBefore(0))
	assert.Equal(t, 10, TotalBefore(1))
	assert.Equal(t, 30, TotalBefore(2))
	assert.Equal(t, 60, TotalBefore(3))
}

func TestDetails_Consistency(t *testing.T) {
	for xp := 0; xp < 2000; xp++ {
		d := Details(xp)
		require.GreaterOrEqual(t, d.Remainder, 0, "xp=%d", xp)
		require.Less(t, d.Remainder, d.Needed, "xp=%d", xp)
		require.Equal(t, Threshold(d.Level), d.Needed, "xp=%d", xp)
		require.Equal(t, xp, TotalBefore(d.Level)+d.Remainder, "xp=%d", xp)
	}
}

func TestDetails_Negative(t *testing.T) {
	assert.Equal(t, Progress{Level: 0, Remainder: 0, Needed: 10}, Details(-3))
}

func TestProgress_Fraction(t *testing.T) {
	assert.InDelta(t, 0.25, Details(15).Fraction(), 1e-9)
	assert.Equal(t, 0.0, Progress{}.Fraction())
}
