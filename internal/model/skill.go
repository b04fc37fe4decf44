package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/nomadpath/internal/levels"
)

// DefaultEmoji is the glyph given to skills that never named one.
const DefaultEmoji = "🌟"

// Skill is a named, leveled capability feeding 2–4 attributes.
type Skill struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	XP          int             `json:"xp"`
	Level       int             `json:"level"`
	Attributes  []AttributeName `json:"attributes"`
	Emoji       string          `json:"emoji"`
	LastUsed    time.Time       `json:"lastUsed"`

	// AwardedLevel is nil until the attribute bridge first sees the skill.
	// After that it is the highest skill level already paid out.
	AwardedLevel *int `json:"awardedLevel,omitempty"`

	// DecayedWeeks counts the idle weeks since LastUsed already charged
	// against XP. Any write that refreshes LastUsed resets it.
	DecayedWeeks int `json:"decayedWeeks,omitempty"`

	// Parent and Attribute describe hierarchical skills. Attribute is only
	// meaningful when Parent is set.
	Parent    string `json:"parent,omitempty"`
	Attribute string `json:"attribute,omitempty"`
}

// Key returns the folded lookup key of the skill name.
func (s *Skill) Key() string {
	return FoldName(s.Name)
}

// HasAttribute reports whether the skill feeds a.
func (s *Skill) HasAttribute(a AttributeName) bool {
	for _, have := range s.Attributes {
		if have == a {
			return true
		}
	}
	return false
}

// Tracked reports whether the bridge has initialized the award marker.
func (s *Skill) Tracked() bool {
	return s.AwardedLevel != nil
}

// Clone returns a deep copy of the skill.
func (s *Skill) Clone() *Skill {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Attributes = append([]AttributeName(nil), s.Attributes...)
	if s.AwardedLevel != nil {
		v := *s.AwardedLevel
		cp.AwardedLevel = &v
	}
	return &cp
}

// IntPtr is a small helper for optional int fields.
func IntPtr(v int) *int {
	return &v
}

// UnmarshalJSON decodes a stored skill, tolerating wrong types on every
// field. A missing level is derived from xp; a missing or unparsable
// lastUsed stays zero and is filled in by Normalize.
func (s *Skill) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return fmt.Errorf("skill must be an object")
	}
	var raw struct {
		Name         json.RawMessage `json:"name"`
		Description  json.RawMessage `json:"description"`
		XP           json.RawMessage `json:"xp"`
		Level        json.RawMessage `json:"level"`
		Attributes   json.RawMessage `json:"attributes"`
		Emoji        json.RawMessage `json:"emoji"`
		LastUsed     json.RawMessage `json:"lastUsed"`
		AwardedLevel json.RawMessage `json:"awardedLevel"`
		DecayedWeeks json.RawMessage `json:"decayedWeeks"`
		Parent       json.RawMessage `json:"parent"`
		Attribute    json.RawMessage `json:"attribute"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := Skill{
		Name:        LooseString(raw.Name),
		Description: LooseString(raw.Description),
		Emoji:       LooseString(raw.Emoji),
		Parent:      LooseString(raw.Parent),
		Attribute:   LooseString(raw.Attribute),
	}
	out.XP, _ = LooseInt(raw.XP)
	if level, ok := LooseInt(raw.Level); ok {
		out.Level = level
	} else {
		out.Level = levels.FromXP(out.XP)
	}
	if labels, ok := LooseStrings(raw.Attributes); ok {
		out.Attributes = ResolveAttributes(labels, 0)
	}
	if awarded, ok := LooseInt(raw.AwardedLevel); ok {
		out.AwardedLevel = IntPtr(awarded)
	}
	out.DecayedWeeks, _ = LooseInt(raw.DecayedWeeks)
	if stamp := LooseString(raw.LastUsed); stamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
			out.LastUsed = t
		}
	}

	*s = out
	return nil
}
