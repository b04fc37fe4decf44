package harness

import "github.com/roach88/nomadpath/internal/model"

// BuildState flattens c into the tables final_state assertions query.
// Values are plain ints, strings and lists so YAML expectations compare
// directly. A nil character yields an empty state.
func BuildState(c *model.Character) map[string]interface{} {
	state := make(map[string]interface{})
	if c == nil {
		return state
	}

	state["character"] = map[string]interface{}{
		"id":             c.ID,
		"name":           c.Name,
		"level":          c.Level,
		"globalProgress": c.GlobalProgress,
		"globalRequired": c.GlobalRequired,
		"skills":         len(c.Skills),
		"chronicle":      len(c.Chronicle),
	}

	skills := make([]interface{}, 0, len(c.Skills))
	for _, s := range c.Skills {
		attrs := make([]interface{}, len(s.Attributes))
		for i, a := range s.Attributes {
			attrs[i] = string(a)
		}
		var awarded interface{}
		if s.AwardedLevel != nil {
			awarded = *s.AwardedLevel
		}
		skills = append(skills, map[string]interface{}{
			"name":         s.Name,
			"xp":           s.XP,
			"level":        s.Level,
			"awardedLevel": awarded,
			"attributes":   attrs,
			"emoji":        s.Emoji,
			"decayedWeeks": s.DecayedWeeks,
		})
	}
	state["skills"] = skills

	attributes := make([]interface{}, 0, len(model.AllAttributes()))
	for _, name := range model.AllAttributes() {
		a := c.Attribute(name)
		attributes = append(attributes, map[string]interface{}{
			"name":  string(name),
			"xp":    a.XP,
			"level": a.Level,
		})
	}
	state["attributes"] = attributes

	state["graph"] = map[string]interface{}{
		"nodes": len(c.SkillGraph.Nodes),
		"links": len(c.SkillGraph.Links),
	}

	return state
}
