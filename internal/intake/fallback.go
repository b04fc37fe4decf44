package intake

import (
	"strings"
	"unicode"

	"github.com/roach88/nomadpath/internal/model"
)

// Fallback matches text against the rule set's keywords. A keyword
// matches when some word of the text starts with it, so "run" matches
// "running" but not "brunch". Each rule yields at most one candidate, in
// rule order.
func (v *Validator) Fallback(text string) []Candidate {
	words := strings.FieldsFunc(model.FoldName(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	out := []Candidate{}
	for _, rule := range v.rules.Fallback {
		if !matchesAny(words, rule.Keywords) {
			continue
		}
		s := rule.Skill
		c := Candidate{
			Name:        s.Name,
			Description: s.Description,
			XP:          s.XP,
			Attributes:  append([]model.AttributeName(nil), s.Attributes...),
			Emoji:       s.Emoji,
		}
		if c.Description == "" {
			c.Description = c.Name
		}
		if c.Emoji == "" {
			c.Emoji = model.DefaultEmoji
		}
		out = append(out, c)
	}
	return out
}

func matchesAny(words, keywords []string) bool {
	for _, kw := range keywords {
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}
