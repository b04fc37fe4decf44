// Package ledger owns a character's skill collection: lookup, merge-or-create
// of skill mentions, bulk replacement, clearing and weekly decay.
//
// Functions here mutate the character they are given and never persist or
// cascade; the engine decides what follows a level change.
package ledger

import (
	"errors"
	"time"

	"github.com/roach88/nomadpath/internal/levels"
	"github.com/roach88/nomadpath/internal/model"
	"github.com/roach88/nomadpath/internal/rules"
)

// ErrBlankName is returned when a skill mention has no usable name.
var ErrBlankName = errors.New("skill name is blank")

// Input is one skill mention. A nil XP takes the operation's default:
// 1 for Upsert, 0 for Replace.
type Input struct {
	Name        string
	XP          *int
	Description string
	Attributes  []string
	Parent      string
	Attribute   string
	Emoji       string
}

// Result reports what a mention did to a skill.
type Result struct {
	Skill     *model.Skill
	Created   bool
	PrevLevel int
}

// LeveledUp reports whether the mention raised the skill's level.
func (r Result) LeveledUp() bool {
	return r.Skill != nil && r.Skill.Level > r.PrevLevel
}

// Ledger applies skill mentions using a rule set for attribute resolution.
type Ledger struct {
	rules *rules.Rules
}

// New returns a Ledger. A nil rule set means rules.Default().
func New(r *rules.Rules) *Ledger {
	if r == nil {
		r = rules.Default()
	}
	return &Ledger{rules: r}
}

// Rules returns the rule set in use.
func (l *Ledger) Rules() *rules.Rules {
	return l.rules
}

// Find returns the skill whose folded name equals name's, or nil.
func Find(skills []*model.Skill, name string) *model.Skill {
	key := model.FoldName(name)
	if key == "" {
		return nil
	}
	for _, s := range skills {
		if s != nil && s.Key() == key {
			return s
		}
	}
	return nil
}

// ResolveAttributes picks the attribute set for a skill: the rules table
// entry for name when there is one, else the valid caller labels capped at
// model.MaxSkillAttributes, else the default pair.
func (l *Ledger) ResolveAttributes(name string, labels []string) []model.AttributeName {
	if attrs, ok := l.rules.AttributesFor(name); ok {
		return attrs
	}
	if attrs := model.ResolveAttributes(labels, model.MaxSkillAttributes); len(attrs) > 0 {
		return attrs
	}
	return l.rules.Defaults()
}

// Upsert merges one mention into c. An existing skill accumulates the XP
// delta; a new skill starts with the delta as its XP. The level is
// recomputed either way.
func (l *Ledger) Upsert(c *model.Character, in Input, now time.Time) (Result, error) {
	name := model.CleanName(in.Name)
	if name == "" {
		return Result{}, ErrBlankName
	}
	delta := 1
	if in.XP != nil {
		delta = *in.XP
	}

	attrs := l.ResolveAttributes(name, in.Attributes)
	if s := Find(c.Skills, name); s != nil {
		prev := s.Level
		l.merge(s, in, delta, attrs, now)
		return Result{Skill: s, PrevLevel: prev}, nil
	}

	s := l.create(name, in, delta, attrs, now)
	c.Skills = append(c.Skills, s)
	return Result{Skill: s, Created: true}, nil
}

// Replace rebuilds the skill list from mentions. Incoming items are
// de-duplicated by folded name (first wins) and merged into the matching
// existing skill or created. Existing skills not mentioned are dropped.
// Created skills report PrevLevel equal to their level, so they never
// count as level-ups.
func (l *Ledger) Replace(c *model.Character, list []Input, now time.Time) []Result {
	seen := make(map[string]struct{}, len(list))
	skills := make([]*model.Skill, 0, len(list))
	results := make([]Result, 0, len(list))

	for _, in := range list {
		name := model.CleanName(in.Name)
		key := model.FoldName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		delta := 0
		if in.XP != nil {
			delta = *in.XP
		}
		attrs := l.ResolveAttributes(name, in.Attributes)

		if s := Find(c.Skills, name); s != nil {
			prev := s.Level
			l.merge(s, in, delta, attrs, now)
			skills = append(skills, s)
			results = append(results, Result{Skill: s, PrevLevel: prev})
			continue
		}
		s := l.create(name, in, delta, attrs, now)
		skills = append(skills, s)
		results = append(results, Result{Skill: s, Created: true, PrevLevel: s.Level})
	}

	c.Skills = skills
	return results
}

func (l *Ledger) merge(s *model.Skill, in Input, delta int, attrs []model.AttributeName, now time.Time) {
	s.XP = max(s.XP+delta, 0)
	s.Level = levels.FromXP(s.XP)
	s.LastUsed = now
	s.DecayedWeeks = 0
	if in.Emoji != "" {
		s.Emoji = in.Emoji
	}
	if in.Description != "" {
		s.Description = in.Description
	}
	s.Attributes = attrs
	s.Parent = model.CleanName(in.Parent)
	s.Attribute = ""
	if s.Parent != "" {
		s.Attribute = in.Attribute
	}
}

func (l *Ledger) create(name string, in Input, delta int, attrs []model.AttributeName, now time.Time) *model.Skill {
	s := &model.Skill{
		Name:        name,
		Description: in.Description,
		XP:          max(delta, 0),
		Attributes:  attrs,
		Emoji:       in.Emoji,
		LastUsed:    now,
		Parent:      model.CleanName(in.Parent),
	}
	if s.Emoji == "" {
		s.Emoji = model.DefaultEmoji
	}
	if s.Parent != "" {
		s.Attribute = in.Attribute
	}
	s.Level = levels.FromXP(s.XP)
	return s
}

// Clear removes every skill. Attributes and the graph are left alone.
func Clear(c *model.Character) {
	c.Skills = []*model.Skill{}
}
