package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultName is given to characters whose stored name is empty.
const DefaultName = "Nameless"

// GlobalStep is the number of attribute levels per global level.
const GlobalStep = 10

// Character is the aggregate root. Engine code mutates it in place and is
// expected to hold the only live copy while a pass runs.
type Character struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar,omitempty"`
	Description string `json:"generatedDescription,omitempty"`

	// Level is the derived global level; XP is a legacy counter kept for
	// compatibility and never read by the engine.
	Level          int `json:"level"`
	XP             int `json:"xp"`
	GlobalProgress int `json:"globalProgress"`
	GlobalRequired int `json:"globalRequired"`

	Attributes map[AttributeName]Attribute `json:"attributes"`
	Skills     []*Skill                    `json:"skills"`
	SkillGraph SkillGraph                  `json:"skillGraph"`

	// Collaborator-owned lists. The engine preserves them verbatim.
	Habits    []json.RawMessage `json:"habits"`
	Quests    []json.RawMessage `json:"quests"`
	Chronicle []string          `json:"chronicle"`
	Journal   []json.RawMessage `json:"journal"`
}

// NewCharacter returns a fresh character with all eight attributes at zero.
func NewCharacter(id, name string) *Character {
	c := &Character{ID: id, Name: name}
	Normalize(c, time.Time{})
	return c
}

// Attribute returns the record for a, zero when absent.
func (c *Character) Attribute(a AttributeName) Attribute {
	if c == nil || c.Attributes == nil {
		return Attribute{}
	}
	return c.Attributes[a]
}

// AttributeLevels returns the attribute levels in canonical order.
func (c *Character) AttributeLevels() []int {
	out := make([]int, 0, len(allAttributes))
	for _, a := range allAttributes {
		out = append(out, c.Attribute(a).Level)
	}
	return out
}

// Decode parses a stored character document, repairing every field it can.
// Only a document that is not a JSON object is rejected. The returned notes
// describe repairs applied, for logging.
func Decode(data []byte, now time.Time) (*Character, []string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil, fmt.Errorf("decode character: document is not an object")
	}
	var raw struct {
		ID             json.RawMessage            `json:"id"`
		Name           json.RawMessage            `json:"name"`
		Avatar         json.RawMessage            `json:"avatar"`
		Description    json.RawMessage            `json:"generatedDescription"`
		Level          json.RawMessage            `json:"level"`
		XP             json.RawMessage            `json:"xp"`
		GlobalProgress json.RawMessage            `json:"globalProgress"`
		GlobalRequired json.RawMessage            `json:"globalRequired"`
		Attributes     map[string]json.RawMessage `json:"-"`
		AttributesRaw  json.RawMessage            `json:"attributes"`
		Skills         json.RawMessage            `json:"skills"`
		SkillGraph     SkillGraph                 `json:"skillGraph"`
		Habits         json.RawMessage            `json:"habits"`
		Quests         json.RawMessage            `json:"quests"`
		Chronicle      json.RawMessage            `json:"chronicle"`
		Journal        json.RawMessage            `json:"journal"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode character: %w", err)
	}

	var notes []string
	c := &Character{
		ID:          LooseString(raw.ID),
		Name:        LooseString(raw.Name),
		Avatar:      LooseString(raw.Avatar),
		Description: LooseString(raw.Description),
		SkillGraph:  raw.SkillGraph,
		Attributes:  make(map[AttributeName]Attribute, len(allAttributes)),
	}
	c.Level, _ = LooseInt(raw.Level)
	c.XP, _ = LooseInt(raw.XP)
	c.GlobalProgress, _ = LooseInt(raw.GlobalProgress)
	c.GlobalRequired, _ = LooseInt(raw.GlobalRequired)

	if err := json.Unmarshal(raw.AttributesRaw, &raw.Attributes); err != nil && len(raw.AttributesRaw) > 0 {
		notes = append(notes, "attributes: not an object, reset")
	}
	for label, value := range raw.Attributes {
		name, ok := ParseAttribute(label)
		if !ok {
			notes = append(notes, fmt.Sprintf("attributes: dropped unknown %q", label))
			continue
		}
		if _, taken := c.Attributes[name]; taken && AttributeName(label) != name {
			// canonical key wins over an alias
			continue
		}
		var attr Attribute
		if err := json.Unmarshal(value, &attr); err != nil {
			notes = append(notes, fmt.Sprintf("attributes: %s unreadable, reset", name))
		}
		c.Attributes[name] = attr
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw.Skills, &items); err != nil && len(raw.Skills) > 0 {
		notes = append(notes, "skills: not an array, reset")
	}
	c.Skills = make([]*Skill, 0, len(items))
	for i, item := range items {
		var s Skill
		if err := json.Unmarshal(item, &s); err != nil {
			notes = append(notes, fmt.Sprintf("skills[%d]: dropped: %v", i, err))
			continue
		}
		c.Skills = append(c.Skills, &s)
	}

	c.Habits = looseList(raw.Habits)
	c.Quests = looseList(raw.Quests)
	c.Journal = looseList(raw.Journal)
	c.Chronicle, _ = LooseStrings(raw.Chronicle)

	notes = append(notes, Normalize(c, now)...)
	return c, notes, nil
}

func looseList(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []json.RawMessage{}
	}
	return items
}

// Normalize repairs a character in place so that every invariant the engine
// relies on holds: eight attributes present and non-negative, unique named
// skills with 1–4 valid attributes, emoji and timestamps set, non-nil
// lists. now fills missing lastUsed stamps. It returns notes describing the
// repairs made.
func Normalize(c *Character, now time.Time) []string {
	if c == nil {
		return nil
	}
	var notes []string

	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.GlobalRequired <= 0 {
		c.GlobalRequired = GlobalStep
	}
	if c.Attributes == nil {
		c.Attributes = make(map[AttributeName]Attribute, len(allAttributes))
	}
	for name, attr := range c.Attributes {
		if !name.Valid() {
			delete(c.Attributes, name)
			notes = append(notes, fmt.Sprintf("attributes: dropped unknown %q", name))
			continue
		}
		if attr.XP < 0 || attr.Level < 0 {
			c.Attributes[name] = Attribute{XP: max(attr.XP, 0), Level: max(attr.Level, 0)}
		}
	}
	for _, name := range allAttributes {
		if _, ok := c.Attributes[name]; !ok {
			c.Attributes[name] = Attribute{}
		}
	}

	seen := make(map[string]struct{}, len(c.Skills))
	skills := make([]*Skill, 0, len(c.Skills))
	for _, s := range c.Skills {
		if s == nil {
			continue
		}
		notes = append(notes, NormalizeSkill(s, now)...)
		key := s.Key()
		if key == "" {
			notes = append(notes, "skills: dropped unnamed skill")
			continue
		}
		if _, dup := seen[key]; dup {
			notes = append(notes, fmt.Sprintf("skills: dropped duplicate %q", s.Name))
			continue
		}
		seen[key] = struct{}{}
		skills = append(skills, s)
	}
	c.Skills = skills

	if c.SkillGraph.Nodes == nil {
		c.SkillGraph.Nodes = []Node{}
	}
	if c.SkillGraph.Links == nil {
		c.SkillGraph.Links = []Link{}
	}
	if c.Habits == nil {
		c.Habits = []json.RawMessage{}
	}
	if c.Quests == nil {
		c.Quests = []json.RawMessage{}
	}
	if c.Journal == nil {
		c.Journal = []json.RawMessage{}
	}
	if c.Chronicle == nil {
		c.Chronicle = []string{}
	}
	return notes
}

// NormalizeSkill repairs a single skill in place.
func NormalizeSkill(s *Skill, now time.Time) []string {
	var notes []string
	s.Name = CleanName(s.Name)
	if s.XP < 0 {
		s.XP = 0
	}
	if s.Level < 0 {
		s.Level = 0
	}
	if s.DecayedWeeks < 0 {
		s.DecayedWeeks = 0
	}
	if s.AwardedLevel != nil && *s.AwardedLevel < 0 {
		s.AwardedLevel = nil
	}
	labels := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		labels[i] = string(a)
	}
	s.Attributes = ResolveAttributes(labels, MaxSkillAttributes)
	if len(s.Attributes) == 0 {
		s.Attributes = append([]AttributeName(nil), DefaultSkillAttributes...)
		if s.Name != "" {
			notes = append(notes, fmt.Sprintf("skills: %q given default attributes", s.Name))
		}
	}
	if s.Emoji == "" {
		s.Emoji = DefaultEmoji
	}
	if s.LastUsed.IsZero() && !now.IsZero() {
		s.LastUsed = now
	}
	if s.Parent == "" {
		s.Attribute = ""
	}
	return notes
}

// MaxSkillAttributes caps how many attributes a skill may feed.
const MaxSkillAttributes = 4
