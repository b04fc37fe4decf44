package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/nomadpath/internal/model"
)

// CharacterView is the character summary printed by init, show and
// recompute.
type CharacterView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Level          int             `json:"level"`
	GlobalProgress int             `json:"global_progress"`
	GlobalRequired int             `json:"global_required"`
	Attributes     []AttributeView `json:"attributes"`
	Skills         int             `json:"skills"`
	Chronicle      int             `json:"chronicle"`
}

// AttributeView is one attribute row.
type AttributeView struct {
	Name  string `json:"name"`
	XP    int    `json:"xp"`
	Level int    `json:"level"`
}

// SkillView is one skill row.
type SkillView struct {
	Name       string   `json:"name"`
	Emoji      string   `json:"emoji"`
	XP         int      `json:"xp"`
	Level      int      `json:"level"`
	Attributes []string `json:"attributes"`
	Parent     string   `json:"parent,omitempty"`
	LastUsed   string   `json:"last_used"`
}

func characterView(c *model.Character) CharacterView {
	v := CharacterView{
		ID:             c.ID,
		Name:           c.Name,
		Level:          c.Level,
		GlobalProgress: c.GlobalProgress,
		GlobalRequired: c.GlobalRequired,
		Attributes:     make([]AttributeView, 0, len(model.AllAttributes())),
		Skills:         len(c.Skills),
		Chronicle:      len(c.Chronicle),
	}
	for _, name := range model.AllAttributes() {
		a := c.Attribute(name)
		v.Attributes = append(v.Attributes, AttributeView{Name: string(name), XP: a.XP, Level: a.Level})
	}
	return v
}

func skillView(s *model.Skill) SkillView {
	attrs := make([]string, len(s.Attributes))
	for i, a := range s.Attributes {
		attrs[i] = string(a)
	}
	return SkillView{
		Name:       s.Name,
		Emoji:      s.Emoji,
		XP:         s.XP,
		Level:      s.Level,
		Attributes: attrs,
		Parent:     s.Parent,
		LastUsed:   s.LastUsed.UTC().Format(time.RFC3339),
	}
}

func skillViews(skills []*model.Skill) []SkillView {
	out := make([]SkillView, 0, len(skills))
	for _, s := range skills {
		out = append(out, skillView(s))
	}
	return out
}

func printCharacter(w io.Writer, v CharacterView) {
	fmt.Fprintf(w, "%s (%s)\n", v.Name, v.ID)
	fmt.Fprintf(w, "Level %d  [%d/%d]\n", v.Level, v.GlobalProgress, v.GlobalRequired)
	fmt.Fprintln(w)
	for _, a := range v.Attributes {
		fmt.Fprintf(w, "  %-10s lvl %-3d xp %d\n", a.Name, a.Level, a.XP)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Skills: %d  Chronicle entries: %d\n", v.Skills, v.Chronicle)
}

func printSkill(w io.Writer, s SkillView) {
	fmt.Fprintf(w, "%s %-20s lvl %-3d xp %-5d %s\n", s.Emoji, s.Name, s.Level, s.XP, strings.Join(s.Attributes, ", "))
}
