package model

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/nomadpath/internal/levels"
)

// AttributeName is one of the eight fixed character stats.
type AttributeName string

const (
	Strength  AttributeName = "strength"
	Agility   AttributeName = "agility"
	Intellect AttributeName = "intellect"
	Charisma  AttributeName = "charisma"
	Willpower AttributeName = "willpower"
	Spirit    AttributeName = "spirit"
	Wisdom    AttributeName = "wisdom"
	Energy    AttributeName = "energy"
)

var allAttributes = []AttributeName{
	Strength, Agility, Intellect, Charisma, Willpower, Spirit, Wisdom, Energy,
}

// DefaultSkillAttributes is the pair used when a skill resolves to no valid
// attribute at all.
var DefaultSkillAttributes = []AttributeName{Agility, Energy}

// AllAttributes returns the fixed attribute list in canonical order.
// The returned slice is a copy.
func AllAttributes() []AttributeName {
	out := make([]AttributeName, len(allAttributes))
	copy(out, allAttributes)
	return out
}

// Valid reports whether a is one of the eight fixed names.
func (a AttributeName) Valid() bool {
	switch a {
	case Strength, Agility, Intellect, Charisma, Willpower, Spirit, Wisdom, Energy:
		return true
	default:
		return false
	}
}

// attributeAliases maps the names used by early saves onto canonical names.
var attributeAliases = map[string]AttributeName{
	"сила":      Strength,
	"ловкость":  Agility,
	"интеллект": Intellect,
	"харизма":   Charisma,
	"воля":      Willpower,
	"дух":       Spirit,
	"мудрость":  Wisdom,
	"энергия":   Energy,
	"will":      Willpower,
	"int":       Intellect,
	"str":       Strength,
	"agi":       Agility,
	"cha":       Charisma,
	"wis":       Wisdom,
}

// ParseAttribute resolves a user or stored label to a canonical name.
// Matching is trimmed and case-insensitive and accepts legacy aliases.
func ParseAttribute(label string) (AttributeName, bool) {
	key := FoldName(label)
	if key == "" {
		return "", false
	}
	if a := AttributeName(key); a.Valid() {
		return a, true
	}
	if a, ok := attributeAliases[key]; ok {
		return a, true
	}
	return "", false
}

// ResolveAttributes filters labels down to valid, de-duplicated names,
// keeping at most limit entries (limit <= 0 means no cap).
func ResolveAttributes(labels []string, limit int) []AttributeName {
	out := make([]AttributeName, 0, len(labels))
	seen := make(map[AttributeName]struct{}, len(labels))
	for _, label := range labels {
		a, ok := ParseAttribute(label)
		if !ok {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Attribute is the progress record of one stat.
type Attribute struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

// UnmarshalJSON accepts the canonical {xp, level} object as well as the
// legacy bare-number form, which is upgraded with a derived level.
func (a *Attribute) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = Attribute{}
		return nil
	}
	if data[0] != '{' {
		xp, _ := LooseInt(data)
		*a = Attribute{XP: max(xp, 0), Level: levels.FromXP(xp)}
		return nil
	}
	var raw struct {
		XP    json.RawMessage `json:"xp"`
		Level json.RawMessage `json:"level"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	xp, _ := LooseInt(raw.XP)
	level, ok := LooseInt(raw.Level)
	if !ok {
		level = levels.FromXP(xp)
	}
	*a = Attribute{XP: max(xp, 0), Level: max(level, 0)}
	return nil
}
