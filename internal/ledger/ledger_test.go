package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/nomadpath/internal/model"
)

var (
	t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	t1 = t0.Add(2 * time.Hour)
)

func xp(n int) *int { return &n }

func newCharacter() *model.Character {
	return model.NewCharacter("c1", "Ada")
}

func TestUpsert_CreatesSkill(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	res, err := l.Upsert(c, Input{Name: "  Chess ", XP: xp(5), Attributes: []string{"intellect", "wisdom"}, Emoji: "♟"}, t0)
	require.NoError(t, err)

	require.True(t, res.Created)
	require.Len(t, c.Skills, 1)
	s := c.Skills[0]
	assert.Same(t, s, res.Skill)
	assert.Equal(t, "Chess", s.Name)
	assert.Equal(t, 5, s.XP)
	assert.Equal(t, 0, s.Level)
	assert.Equal(t, []model.AttributeName{model.Intellect, model.Wisdom}, s.Attributes)
	assert.Equal(t, "♟", s.Emoji)
	assert.Equal(t, t0, s.LastUsed)
	assert.Nil(t, s.AwardedLevel)
	assert.False(t, res.LeveledUp())
}

func TestUpsert_DefaultXPIsOne(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	res, err := l.Upsert(c, Input{Name: "Chess"}, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skill.XP)
	assert.Equal(t, model.DefaultEmoji, res.Skill.Emoji)
}

func TestUpsert_MergesCaseInsensitive(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	_, err := l.Upsert(c, Input{Name: "Chess", XP: xp(8), Description: "board game", Emoji: "♟"}, t0)
	require.NoError(t, err)
	c.Skills[0].DecayedWeeks = 2

	res, err := l.Upsert(c, Input{Name: "CHESS", XP: xp(4)}, t1)
	require.NoError(t, err)

	require.Len(t, c.Skills, 1)
	assert.False(t, res.Created)
	assert.Equal(t, 0, res.PrevLevel)
	s := res.Skill
	assert.Equal(t, "Chess", s.Name, "stored name is kept")
	assert.Equal(t, 12, s.XP)
	assert.Equal(t, 1, s.Level)
	assert.True(t, res.LeveledUp())
	assert.Equal(t, t1, s.LastUsed)
	assert.Equal(t, 0, s.DecayedWeeks)
	assert.Equal(t, "board game", s.Description, "empty description keeps the old one")
	assert.Equal(t, "♟", s.Emoji, "empty emoji keeps the old one")
}

func TestUpsert_RefreshesNonEmptyFields(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	_, err := l.Upsert(c, Input{Name: "Chess", Description: "old", Emoji: "♟", Attributes: []string{"intellect", "wisdom"}}, t0)
	require.NoError(t, err)
	res, err := l.Upsert(c, Input{Name: "chess", Description: "new", Emoji: "♞", Attributes: []string{"charisma", "spirit", "bogus"}}, t1)
	require.NoError(t, err)

	assert.Equal(t, "new", res.Skill.Description)
	assert.Equal(t, "♞", res.Skill.Emoji)
	assert.Equal(t, []model.AttributeName{model.Charisma, model.Spirit}, res.Skill.Attributes)
}

func TestUpsert_BlankName(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	_, err := l.Upsert(c, Input{Name: "   "}, t0)
	assert.ErrorIs(t, err, ErrBlankName)
	assert.Empty(t, c.Skills)
}

func TestUpsert_NegativeDeltaFloorsAtZero(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	_, err := l.Upsert(c, Input{Name: "Chess", XP: xp(3)}, t0)
	require.NoError(t, err)
	res, err := l.Upsert(c, Input{Name: "Chess", XP: xp(-10)}, t1)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Skill.XP)
}

func TestUpsert_ParentAttribute(t *testing.T) {
	l := New(nil)
	c := newCharacter()

	res, err := l.Upsert(c, Input{Name: "Deadlift", Parent: "Strength training", Attribute: "strength"}, t0)
	require.NoError(t, err)
	assert.Equal(t, "Strength training", res.Skill.Parent)
	assert.Equal(t, "strength", res.Skill.Attribute)

	res, err = l.Upsert(c, Input{Name: "Deadlift", Attribute: "strength"}, t1)
	require.NoError(t, err)
	assert.Empty(t, res.Skill.Parent)
	assert.Empty(t, res.Skill.Attribute, "attribute is only kept with a parent")
}

// The rules table overrides caller attributes for known skill names.
func TestResolveAttributes_TableOverridesCaller(t *testing.T) {
	l := New(nil)

	got := l.ResolveAttributes("бег", []string{"agility", "energy"})
	assert.Equal(t, []model.AttributeName{model.Agility, model.Strength, model.Energy, model.Willpower}, got)

	got = l.ResolveAttributes("Бег", []string{"charisma", "wisdom"})
	assert.Equal(t, []model.AttributeName{model.Agility, model.Strength, model.Energy, model.Willpower}, got)

	got = l.ResolveAttributes("Running", []string{"agility", "energy"})
	assert.Equal(t, []model.AttributeName{model.Agility, model.Energy}, got, "names outside the table keep caller attributes")
}

func TestResolveAttributes_CallerAndDefault(t *testing.T) {
	l := New(nil)

	got := l.ResolveAttributes("Chess", []string{"intellect", "wisdom", "intellect", "spirit", "energy", "charisma"})
	assert.Equal(t, []model.AttributeName{model.Intellect, model.Wisdom, model.Spirit, model.Energy}, got)

	got = l.ResolveAttributes("Chess", []string{"luck"})
	assert.Equal(t, []model.AttributeName{model.Agility, model.Energy}, got)

	got = l.ResolveAttributes("Chess", nil)
	assert.Equal(t, []model.AttributeName{model.Agility, model.Energy}, got)
}

func TestFind(t *testing.T) {
	l := New(nil)
	c := newCharacter()
	_, err := l.Upsert(c, Input{Name: "Push-ups"}, t0)
	require.NoError(t, err)

	assert.NotNil(t, Find(c.Skills, " push-ups "))
	assert.Nil(t, Find(c.Skills, "push"))
	assert.Nil(t, Find(c.Skills, ""))
}

func TestReplace(t *testing.T) {
	l := New(nil)
	c := newCharacter()
	_, err := l.Upsert(c, Input{Name: "Chess", XP: xp(8)}, t0)
	require.NoError(t, err)
	_, err = l.Upsert(c, Input{Name: "Reading", XP: xp(3)}, t0)
	require.NoError(t, err)

	results := l.Replace(c, []Input{
		{Name: "chess", XP: xp(5)},
		{Name: "Drawing", XP: xp(30)},
		{Name: "CHESS", XP: xp(100)},
		{Name: ""},
		{Name: "Painting"},
	}, t1)

	require.Len(t, c.Skills, 3)
	assert.Equal(t, []string{"Chess", "Drawing", "Painting"}, skillNames(c.Skills))
	assert.Nil(t, Find(c.Skills, "Reading"), "unmentioned skills are dropped")

	require.Len(t, results, 3)
	assert.Equal(t, 13, results[0].Skill.XP)
	assert.True(t, results[0].LeveledUp())

	drawing := results[1]
	assert.True(t, drawing.Created)
	assert.Equal(t, 2, drawing.Skill.Level)
	assert.False(t, drawing.LeveledUp(), "created skills are not level-ups")

	assert.Equal(t, 0, results[2].Skill.XP, "bulk set defaults missing xp to zero")
}

func TestClear(t *testing.T) {
	l := New(nil)
	c := newCharacter()
	_, err := l.Upsert(c, Input{Name: "Chess"}, t0)
	require.NoError(t, err)
	c.Attributes[model.Wisdom] = model.Attribute{XP: 5}
	c.SkillGraph.Nodes = append(c.SkillGraph.Nodes, model.Node{ID: "Chess", Type: model.NodeSkill})

	Clear(c)
	assert.Empty(t, c.Skills)
	assert.NotNil(t, c.Skills)
	assert.Equal(t, 5, c.Attributes[model.Wisdom].XP)
	assert.Len(t, c.SkillGraph.Nodes, 1)
}

func skillNames(skills []*model.Skill) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = s.Name
	}
	return out
}
