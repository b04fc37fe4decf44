package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nomadpath/internal/model"
)

func setup(level int) (*model.Character, *model.Skill) {
	c := model.NewCharacter("c1", "Ada")
	s := &model.Skill{Name: "Running", Level: level, Attributes: []model.AttributeName{model.Agility, model.Energy}}
	c.Skills = append(c.Skills, s)
	return c, s
}

func TestAward_FirstEncounterIsNotRetroactive(t *testing.T) {
	c, s := setup(3)

	granted := Award(c, s)

	assert.Equal(t, 0, granted)
	require.NotNil(t, s.AwardedLevel)
	assert.Equal(t, 3, *s.AwardedLevel)
	assert.Equal(t, model.Attribute{}, c.Attributes[model.Agility])
	assert.Equal(t, model.Attribute{}, c.Attributes[model.Energy])
}

func TestAward_FirstEncounterAtZero(t *testing.T) {
	c, s := setup(0)
	Award(c, s)
	require.NotNil(t, s.AwardedLevel)
	assert.Equal(t, 0, *s.AwardedLevel)

	s.Level = 1
	assert.Equal(t, 2, Award(c, s))
	assert.Equal(t, 1, c.Attributes[model.Agility].XP)
}

func TestAward_PaysDifference(t *testing.T) {
	c, s := setup(3)
	Award(c, s)

	s.Level = 5
	granted := Award(c, s)

	assert.Equal(t, 4, granted)
	assert.Equal(t, 2, c.Attributes[model.Agility].XP)
	assert.Equal(t, 2, c.Attributes[model.Energy].XP)
	assert.Equal(t, 0, c.Attributes[model.Strength].XP)
	assert.Equal(t, 5, *s.AwardedLevel)
}

func TestAward_Idempotent(t *testing.T) {
	c, s := setup(1)
	Award(c, s)
	s.Level = 2
	Award(c, s)
	before := c.Attributes[model.Agility]

	assert.Equal(t, 0, Award(c, s))
	assert.Equal(t, before, c.Attributes[model.Agility])
}

func TestAward_DecreaseNeverClawsBack(t *testing.T) {
	c, s := setup(4)
	Award(c, s)

	s.Level = 2
	assert.Equal(t, 0, Award(c, s))
	assert.Equal(t, 4, *s.AwardedLevel, "marker is a high-water mark")
	assert.Equal(t, 0, c.Attributes[model.Agility].XP)

	s.Level = 4
	assert.Equal(t, 0, Award(c, s), "levels regained after decay are not paid twice")

	s.Level = 5
	assert.Equal(t, 2, Award(c, s))
}

func TestAward_CreatesMissingAttribute(t *testing.T) {
	c, s := setup(0)
	Award(c, s)
	delete(c.Attributes, model.Energy)

	s.Level = 1
	Award(c, s)
	assert.Equal(t, model.Attribute{XP: 1}, c.Attributes[model.Energy])
}

func TestAward_Nil(t *testing.T) {
	_, s := setup(1)
	assert.Equal(t, 0, Award(nil, s))
	assert.Nil(t, s.AwardedLevel)
	assert.Equal(t, 0, AwardAll(nil))
}

func TestAwardAll(t *testing.T) {
	c, s := setup(1)
	other := &model.Skill{Name: "Chess", Level: 2, AwardedLevel: model.IntPtr(1), Attributes: []model.AttributeName{model.Intellect, model.Wisdom}}
	c.Skills = append(c.Skills, other)

	granted := AwardAll(c)

	assert.Equal(t, 2, granted)
	require.NotNil(t, s.AwardedLevel)
	assert.Equal(t, 1, *s.AwardedLevel)
	assert.Equal(t, 1, c.Attributes[model.Intellect].XP)
	assert.Equal(t, 1, c.Attributes[model.Wisdom].XP)
}
